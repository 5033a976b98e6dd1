// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sceneforge manages persisted scene projects: inspecting,
// clearing and copying the scoped record collections.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sceneforge/config"
	"sceneforge/gateway"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "sceneforge",
	Short:         "manage sceneforge projects",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		return err
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sceneforge:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "sceneforge.toml", "configuration file")
	rootCmd.AddCommand(listCmd, clearCmd, copyCmd)
}

// openGateway opens the configured persistence backend.
func openGateway() (gateway.Gateway, error) {
	if cfg.Store == config.BackendMemory {
		// a fresh memory store is always empty; only useful for dry runs
		return gateway.NewMemory(), nil
	}
	return gateway.NewSQLite(cfg.Path)
}

func scope() gateway.Scope {
	return gateway.Scope{OwnerID: cfg.Owner, ProjectID: cfg.Project}
}
