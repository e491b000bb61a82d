// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/models"
)

// SchemaVersion tags every record this build writes
const SchemaVersion = "1.0"

// Durable keys
const (
	KeyPrefix    = "wedding_gift_"
	SelectionKey = KeyPrefix + "selection"
	PreviousKey  = KeyPrefix + "selection_previous"
)

// Record is the persisted state of a guest's selection
type Record struct {
	Selection       models.Selection    `json:"selection"`
	ProductSnapshot models.SelectedItem `json:"productSnapshot"`
	SavedAt         time.Time           `json:"savedAt"`
	SubmittedAt     *time.Time          `json:"submittedAt"`
	IsSubmitted     bool                `json:"isSubmitted"`
	SchemaVersion   string              `json:"schemaVersion"`
}

// Previous caches the remote application seen at the last status check
type Previous struct {
	Application   models.Application `json:"application"`
	SavedAt       time.Time          `json:"savedAt"`
	SchemaVersion string             `json:"schemaVersion"`
}

type Stats struct {
	HasSelection bool       `json:"hasSelection"`
	IsSubmitted  bool       `json:"isSubmitted"`
	SavedAt      time.Time  `json:"savedAt"`
	SubmittedAt  *time.Time `json:"submittedAt"`
	Version      string     `json:"version"`
}

// SelectionStore persists the guest's selection in a kvstore namespace.
// Storage failures never panic: reads degrade to "absent" and writes
// return an error the caller may ignore.
type SelectionStore struct {
	kv      kvstore.Store
	version string
	now     func() time.Time
}

type Option func(*SelectionStore)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *SelectionStore) { s.now = now }
}

// WithSchemaVersion overrides SchemaVersion
func WithSchemaVersion(v string) Option {
	return func(s *SelectionStore) { s.version = v }
}

func New(kv kvstore.Store, opts ...Option) *SelectionStore {
	s := &SelectionStore{kv: kv, version: SchemaVersion, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save writes the selection. A submitted flag on the current record is kept.
func (s *SelectionStore) Save(ctx context.Context, sel models.Selection, snapshot models.SelectedItem) error {
	rec := Record{
		Selection:       sel,
		ProductSnapshot: snapshot,
		SavedAt:         s.now().UTC(),
		SchemaVersion:   s.version,
	}
	if existing := s.Load(ctx); existing != nil && existing.IsSubmitted {
		rec.IsSubmitted = true
		rec.SubmittedAt = existing.SubmittedAt
	}
	return s.write(ctx, SelectionKey, rec)
}

// MarkSubmitted writes the selection as submitted now
func (s *SelectionStore) MarkSubmitted(ctx context.Context, sel models.Selection, snapshot models.SelectedItem) error {
	now := s.now().UTC()
	rec := Record{
		Selection:       sel,
		ProductSnapshot: snapshot,
		SavedAt:         now,
		SubmittedAt:     &now,
		IsSubmitted:     true,
		SchemaVersion:   s.version,
	}
	// drop a stale record first so nothing of it survives
	s.Load(ctx)
	return s.write(ctx, SelectionKey, rec)
}

// Load returns the stored record, or nil when it is absent, unreadable or
// written under another schema version. Unreadable and stale records are
// deleted.
func (s *SelectionStore) Load(ctx context.Context) *Record {
	var rec Record
	if !s.read(ctx, SelectionKey, &rec, func() string { return rec.SchemaVersion }) {
		return nil
	}
	return &rec
}

func (s *SelectionStore) IsSubmitted(ctx context.Context) bool {
	rec := s.Load(ctx)
	return rec != nil && rec.IsSubmitted
}

// IsChanged reports whether sel differs from the stored selection.
// Nothing stored counts as changed.
func (s *SelectionStore) IsChanged(ctx context.Context, sel models.Selection) bool {
	rec := s.Load(ctx)
	if rec == nil {
		return true
	}
	return !rec.Selection.Same(sel)
}

// Clear removes the selection record
func (s *SelectionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SelectionKey); err != nil {
		slog.Error("failed to clear selection", "error", err)
		return err
	}
	return nil
}

func (s *SelectionStore) Stats(ctx context.Context) *Stats {
	rec := s.Load(ctx)
	if rec == nil {
		return nil
	}
	return &Stats{
		HasSelection: rec.Selection.ProductID != "",
		IsSubmitted:  rec.IsSubmitted,
		SavedAt:      rec.SavedAt,
		SubmittedAt:  rec.SubmittedAt,
		Version:      rec.SchemaVersion,
	}
}

// SavePrevious caches the application reported by the endpoint
func (s *SelectionStore) SavePrevious(ctx context.Context, app models.Application) error {
	// drop a stale record first so nothing of it survives
	s.LoadPrevious(ctx)
	return s.write(ctx, PreviousKey, Previous{
		Application:   app,
		SavedAt:       s.now().UTC(),
		SchemaVersion: s.version,
	})
}

func (s *SelectionStore) LoadPrevious(ctx context.Context) *Previous {
	var prev Previous
	if !s.read(ctx, PreviousKey, &prev, func() string { return prev.SchemaVersion }) {
		return nil
	}
	return &prev
}

func (s *SelectionStore) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		slog.Error("failed to persist", "key", key, "error", err)
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// read decodes key into v and checks its schema version
func (s *SelectionStore) read(ctx context.Context, key string, v any, version func() string) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		slog.Error("failed to read", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		slog.Warn("dropping unreadable record", "key", key, "error", err)
		s.drop(ctx, key)
		return false
	}
	if got := version(); got != s.version {
		slog.Warn("dropping record with stale schema", "key", key, "version", got, "want", s.version)
		s.drop(ctx, key)
		return false
	}
	return true
}

func (s *SelectionStore) drop(ctx context.Context, key string) {
	if err := s.kv.Delete(ctx, key); err != nil {
		slog.Error("failed to delete record", "key", key, "error", err)
	}
}
