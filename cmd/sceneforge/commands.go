// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sceneforge/gateway"
	"sceneforge/syncer"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list the persisted records of the configured project",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := openGateway()
		if err != nil {
			return err
		}
		defer gw.Close()
		for _, coll := range gateway.Collections {
			recs, err := gw.List(cmd.Context(), scope(), coll)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", coll, len(recs))
			for _, rec := range recs {
				name, _ := rec.Doc["name"].(string)
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s  %s\n",
					rec.ID, rec.CreatedAt.Format("2006-01-02 15:04:05"), name)
			}
		}
		return nil
	},
}

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "delete every persisted record of the configured project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to clear project %q without --yes", cfg.Project)
		}
		gw, err := openGateway()
		if err != nil {
			return err
		}
		defer gw.Close()
		if err := syncer.ClearProject(cmd.Context(), gw, scope()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared project %s/%s\n", cfg.Owner, cfg.Project)
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <dest-project>",
	Short: "copy the configured project's records into another project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst := gateway.Scope{OwnerID: cfg.Owner, ProjectID: args[0]}
		if dst == scope() {
			return fmt.Errorf("destination project %q is the source", args[0])
		}
		gw, err := openGateway()
		if err != nil {
			return err
		}
		defer gw.Close()
		if err := syncer.CopyProject(cmd.Context(), gw, scope(), dst); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %s/%s -> %s/%s\n",
			cfg.Owner, cfg.Project, dst.OwnerID, dst.ProjectID)
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion")
}
