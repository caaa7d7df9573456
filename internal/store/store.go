// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package store persists rendered scene exports in BadgerDB.
//
// Each export is stored as a metadata record, the PNG bytes and a
// session index key, all written in one transaction with the same TTL so
// expired exports disappear together.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/decorum/internal/logging"
)

// ErrNotFound is returned for a missing or expired export.
var ErrNotFound = errors.New("export not found")

// Key prefixes for BadgerDB storage
const (
	metaKeyPrefix    = "export:meta:"
	pngKeyPrefix     = "export:png:"
	sessionKeyPrefix = "export:session:"
)

// Config configures the store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory; used for development and tests.
	InMemory bool
	// TTL is how long an export is kept. Zero keeps exports forever.
	TTL time.Duration
	// GCInterval is the value log GC cadence used by Serve.
	GCInterval time.Duration
}

// Export describes a stored render.
type Export struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"sessionId"`
	PixelRatio float64         `json:"pixelRatio"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Bytes      int             `json:"bytes"`
	CreatedAt  time.Time       `json:"createdAt"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty"`
	Scene      json.RawMessage `json:"scene,omitempty"`
}

// Store is a BadgerDB-backed export store.
type Store struct {
	db  *badger.DB
	cfg Config
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store path is required unless in-memory")
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB internal logs
	opts.ValueLogFileSize = 64 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for exports: %w", err)
	}
	return &Store{db: db, cfg: cfg}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores an export and its PNG. A missing ID is generated; CreatedAt
// and Bytes are filled in.
func (s *Store) Put(_ context.Context, exp *Export, png []byte) error {
	if exp == nil {
		return errors.New("export cannot be nil")
	}
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	exp.CreatedAt = time.Now().UTC()
	exp.Bytes = len(png)
	if s.cfg.TTL > 0 {
		expires := exp.CreatedAt.Add(s.cfg.TTL)
		exp.ExpiresAt = &expires
	}

	meta, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entries := []*badger.Entry{
			badger.NewEntry([]byte(metaKeyPrefix+exp.ID), meta),
			badger.NewEntry([]byte(pngKeyPrefix+exp.ID), png),
			badger.NewEntry([]byte(sessionKeyPrefix+exp.SessionID+":"+exp.ID), []byte(exp.ID)),
		}
		for _, e := range entries {
			if s.cfg.TTL > 0 {
				e = e.WithTTL(s.cfg.TTL)
			}
			if err := txn.SetEntry(e); err != nil {
				return fmt.Errorf("set export entry: %w", err)
			}
		}
		return nil
	})
}

// Get returns export metadata.
func (s *Store) Get(_ context.Context, id string) (*Export, error) {
	var exp Export
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get export: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &exp)
		})
	})
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// PNG returns the stored image bytes.
func (s *Store) PNG(_ context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pngKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get export png: %w", err)
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ListBySession returns the exports of one session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]*Export, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix + sessionID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list session exports: %w", err)
	}

	out := make([]*Export, 0, len(ids))
	for _, id := range ids {
		exp, err := s.Get(ctx, id)
		if err != nil {
			continue // Expired between index scan and lookup
		}
		out = append(out, exp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Delete removes an export. Deleting a missing export is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	exp, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range []string{metaKeyPrefix + id, pngKeyPrefix + id, sessionKeyPrefix + exp.SessionID + ":" + id} {
			if err := txn.Delete([]byte(k)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete export: %w", err)
			}
		}
		return nil
	})
}

// Serve runs value log GC until ctx is canceled. It implements
// suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	if s.cfg.InMemory {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logging.Warn().Err(err).Msg("Export store GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Store) String() string { return "export-store" }
