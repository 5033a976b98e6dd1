// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT NOT NULL PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	project_id TEXT NOT NULL,
	collection TEXT NOT NULL,
	doc        TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_scope
	ON records(owner_id, project_id, collection, created_at);
`

// SQLite is a [Gateway] storing records as JSON docs in a single
// SQLite table.  Change notification is in-process: subscribers see
// writes made through this store, not external writers.
type SQLite struct {
	db    *sql.DB
	mu    sync.Mutex
	newID func() string
	nowFn func() time.Time

	notifier
}

// SQLiteOption configures a [SQLite] store.
type SQLiteOption func(s *SQLite)

// WithSQLiteIDSource sets the record id generator.
func WithSQLiteIDSource(fn func() string) SQLiteOption {
	return func(s *SQLite) {
		s.newID = fn
	}
}

// WithSQLiteClock sets the timestamp source.
func WithSQLiteClock(fn func() time.Time) SQLiteOption {
	return func(s *SQLite) {
		s.nowFn = fn
	}
}

// NewSQLite opens (creating if needed) the database at path and
// ensures the schema.  Use ":memory:" for a throwaway store.
func NewSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &SQLite{db: db, newID: uuid.NewString, nowFn: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create stores a new record and returns its assigned id.
func (s *SQLite) Create(ctx context.Context, sc Scope, coll Collection, doc Doc) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode doc: %w", err)
	}
	s.mu.Lock()
	id := s.newID()
	now := s.nowFn().UnixNano()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, owner_id, project_id, collection, doc, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, sc.OwnerID, sc.ProjectID, string(coll), string(data), now, now)
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", coll, err)
	}
	s.publishCurrent(ctx, sc, coll)
	return id, nil
}

// Update merges the given fields into an existing record's doc.
func (s *SQLite) Update(ctx context.Context, sc Scope, coll Collection, id string, fields Doc) error {
	s.mu.Lock()
	err := s.update(ctx, sc, coll, id, fields)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publishCurrent(ctx, sc, coll)
	return nil
}

func (s *SQLite) update(ctx context.Context, sc Scope, coll Collection, id string, fields Doc) error {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM records
		 WHERE id = ? AND owner_id = ? AND project_id = ? AND collection = ?`,
		id, sc.OwnerID, sc.ProjectID, string(coll)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update %s/%s: %w", coll, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("select %s/%s: %w", coll, id, err)
	}
	doc := Doc{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("decode %s/%s: %w", coll, id, err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode doc: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE records SET doc = ?, updated_at = ? WHERE id = ?`,
		string(data), s.nowFn().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", coll, id, err)
	}
	return nil
}

// Delete removes a record.
func (s *SQLite) Delete(ctx context.Context, sc Scope, coll Collection, id string) error {
	s.mu.Lock()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records
		 WHERE id = ? AND owner_id = ? AND project_id = ? AND collection = ?`,
		id, sc.OwnerID, sc.ProjectID, string(coll))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s/%s: %w", coll, id, ErrNotFound)
	}
	s.publishCurrent(ctx, sc, coll)
	return nil
}

// List returns the scoped collection sorted by creation time
// descending.
func (s *SQLite) List(ctx context.Context, sc Scope, coll Collection) ([]Stored, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc, created_at, updated_at FROM records
		 WHERE owner_id = ? AND project_id = ? AND collection = ?
		 ORDER BY created_at DESC, id DESC`,
		sc.OwnerID, sc.ProjectID, string(coll))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	defer func() { _ = rows.Close() }()
	var recs []Stored
	for rows.Next() {
		var rec Stored
		var raw string
		var ct, ut int64
		if err := rows.Scan(&rec.ID, &raw, &ct, &ut); err != nil {
			return nil, fmt.Errorf("scan %s: %w", coll, err)
		}
		rec.Doc = Doc{}
		if err := json.Unmarshal([]byte(raw), &rec.Doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", coll, rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, ct)
		rec.UpdatedAt = time.Unix(0, ut)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	// re-sort in memory with the same comparator as the memory backend,
	// so both backends order identically regardless of what the query
	// returned
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
	return recs, nil
}

// Subscribe delivers the current snapshot immediately, then after
// every write made through this store to the scoped collection.
func (s *SQLite) Subscribe(ctx context.Context, sc Scope, coll Collection, fn SnapshotFunc) (func(), error) {
	recs, err := s.List(ctx, sc, coll)
	if err != nil {
		return nil, err
	}
	off := s.subscribe(scopeKey{sc: sc, coll: coll}, fn)
	fn(recs)
	return off, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// publishCurrent pushes the fresh collection state to subscribers.
// A list failure here only costs a notification, not the write.
func (s *SQLite) publishCurrent(ctx context.Context, sc Scope, coll Collection) {
	recs, err := s.List(ctx, sc, coll)
	if err != nil {
		return
	}
	s.publish(scopeKey{sc: sc, coll: coll}, recs)
}
