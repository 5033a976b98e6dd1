// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syncer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sceneforge/gateway"
)

// ClearProject deletes every persisted record in the scope, all
// collections in parallel.  Each record's delete is attempted even
// when a sibling fails; the first error is returned after all
// attempts finish.
func ClearProject(ctx context.Context, gw gateway.Gateway, sc gateway.Scope) error {
	grp, ctx := errgroup.WithContext(ctx)
	for _, coll := range gateway.Collections {
		coll := coll
		grp.Go(func() error {
			recs, err := gw.List(ctx, sc, coll)
			if err != nil {
				return fmt.Errorf("list %s: %w", coll, err)
			}
			var firstErr error
			for _, rec := range recs {
				if err := gw.Delete(ctx, sc, coll, rec.ID); err != nil && firstErr == nil {
					firstErr = fmt.Errorf("delete %s/%s: %w", coll, rec.ID, err)
				}
			}
			return firstErr
		})
	}
	return grp.Wait()
}

// CopyProject copies every persisted record from one scope into
// another.  Copies are fresh records: the destination gateway assigns
// new ids and timestamps, and scoping fields are rewritten.  The
// destination is not cleared first.
func CopyProject(ctx context.Context, gw gateway.Gateway, src, dst gateway.Scope) error {
	grp, ctx := errgroup.WithContext(ctx)
	for _, coll := range gateway.Collections {
		coll := coll
		grp.Go(func() error {
			recs, err := gw.List(ctx, src, coll)
			if err != nil {
				return fmt.Errorf("list %s: %w", coll, err)
			}
			// List is newest-first; create oldest-first so the copy
			// preserves relative creation order.
			for i := len(recs) - 1; i >= 0; i-- {
				doc := recs[i].Doc.Clone()
				doc["ownerId"] = dst.OwnerID
				doc["projectId"] = dst.ProjectID
				if _, err := gw.Create(ctx, dst, coll, doc); err != nil {
					return fmt.Errorf("copy %s/%s: %w", coll, recs[i].ID, err)
				}
			}
			return nil
		})
	}
	return grp.Wait()
}
