// Package store implements the generic entity store: one instance owns one
// collection of a domain entity, loads it once from the key-value layer at
// startup, mutates it in response to commands and persists every mutation as
// a whole-collection overwrite.
//
// The error-handling split of the application lives here: reads are
// data-loss-tolerant (corrupted storage degrades to the seed collection with
// a silent report), and persistence failures are reported but never fail the
// mutation. Business-critical side effects that must fail loud — transfer
// notifications — are layered on top in their own packages.
//
// The original runtime this design comes from was single-threaded; an HTTP
// server is not, so each store serializes its mutations behind a mutex,
// preserving the per-store strict mutation ordering.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/kv"
	"github.com/edumunicipal/school-backend/internal/report"
	"github.com/edumunicipal/school-backend/internal/sanitize"
)

// Entity is satisfied by pointers to any struct embedding domain.Meta.
type Entity interface {
	Record() *domain.Meta
}

// Config describes one store instantiation.
type Config[T Entity] struct {
	// Key is the durable slot this store owns.
	Key kv.Key
	// Schema sanitizes raw persisted data before it becomes typed records.
	Schema sanitize.Schema
	// Seed is the initial collection used on first start and as the
	// fallback when stored data cannot be recovered.
	Seed []T
	// New allocates an empty record. Required.
	New func() T
	// Release is called for a record just removed by Delete, to free any
	// external resource it references (e.g. attachment blobs). Optional.
	Release func(ctx context.Context, rec T)
	// Now and NewID override the clock and identifier source in tests.
	Now   func() time.Time
	NewID func() string
}

// Store owns one entity collection. All methods are safe for concurrent use;
// mutations are strictly ordered per store. Records handed out by Add, Find,
// All and Filter are detached copies: callers may read or marshal them at
// any time without observing a concurrent Update. The only live references
// are the ones passed into the Add/Update/Release callbacks, which run under
// the store lock and must not be retained.
type Store[T Entity] struct {
	cfg Config[T]
	kv  kv.Store
	rep report.Reporter

	mu    sync.RWMutex
	items []T
}

// New builds a store. Call Load once before serving traffic.
func New[T Entity](kvs kv.Store, rep report.Reporter, cfg Config[T]) *Store[T] {
	if cfg.New == nil {
		panic("store: Config.New is required")
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if rep == nil {
		rep = report.Nop{}
	}
	return &Store[T]{cfg: cfg, kv: kvs, rep: rep}
}

// Load initializes the in-memory collection from durable storage. It runs
// once at startup and never fails the boot path:
//
//   - absent key → seed the collection and persist it immediately;
//   - present → JSON-decode, sanitize, decode each record into its type;
//   - an unreadable or unparsable value → report silently (no toast) and
//     fall back to the seed, leaving the stored value untouched;
//   - a single record that fails typed decoding → report and substitute the
//     schema-default stub, keeping the rest of the batch.
func (s *Store[T]) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok, err := s.kv.Get(ctx, s.cfg.Key)
	if err != nil {
		s.report(err, "load")
		s.items = s.seedCopy()
		return
	}
	if !ok {
		s.items = s.seedCopy()
		s.persistLocked(ctx)
		return
	}

	var raw any
	if err := json.Unmarshal(buf, &raw); err != nil {
		s.report(err, "parse")
		s.items = s.seedCopy()
		return
	}

	records := sanitize.Collection(raw, s.cfg.Schema)
	items := make([]T, 0, len(records))
	for _, r := range records {
		rec, err := sanitize.DecodeOne[T](r)
		if err != nil {
			// One mistyped record degrades to the schema stub; its
			// neighbours are kept.
			s.report(err, "decode")
			rec, err = sanitize.DecodeOne[T](s.stub())
			if err != nil {
				continue
			}
		}
		items = append(items, rec)
	}
	s.items = items
}

// stub builds the schema-default record used when a stored item cannot be
// decoded into the entity type.
func (s *Store[T]) stub() map[string]any {
	return sanitize.Single(map[string]any{}, s.cfg.Schema)
}

// Add synthesizes identity and timestamps for a new record, lets mutate fill
// the entity-specific fields, appends it and persists. It never fails at
// this layer; persistence problems are reported, not returned. The returned
// record is a detached copy.
func (s *Store[T]) Add(ctx context.Context, mutate func(rec T)) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.cfg.New()
	m := rec.Record()
	m.ID = s.cfg.NewID()
	now := s.cfg.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if mutate != nil {
		mutate(rec)
	}

	s.items = append(s.items, rec)
	s.persistLocked(ctx)
	return s.clone(rec)
}

// Update applies a patch to the record with the given id and refreshes its
// UpdatedAt. A missing id is a silent no-op (returns false); unrelated
// records are never touched.
func (s *Store[T]) Update(ctx context.Context, id string, apply func(rec T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.items {
		if rec.Record().ID != id {
			continue
		}
		if apply != nil {
			apply(rec)
		}
		rec.Record().UpdatedAt = s.cfg.Now()
		s.persistLocked(ctx)
		return true
	}
	return false
}

// Delete removes the record with the given id unconditionally, releasing any
// external resource through the configured hook. A missing id is a silent
// no-op.
func (s *Store[T]) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.items {
		if rec.Record().ID != id {
			continue
		}
		if s.cfg.Release != nil {
			s.cfg.Release(ctx, rec)
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.persistLocked(ctx)
		return true
	}
	return false
}

// All returns a detached snapshot of the collection in insertion order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	for i, rec := range s.items {
		out[i] = s.clone(rec)
	}
	return out
}

// Filter returns detached copies of the records matching pred, in insertion
// order.
func (s *Store[T]) Filter(pred func(rec T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0)
	for _, rec := range s.items {
		if pred(rec) {
			out = append(out, s.clone(rec))
		}
	}
	return out
}

// Find returns a detached copy of the record with the given id, if present.
func (s *Store[T]) Find(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.items {
		if rec.Record().ID == id {
			return s.clone(rec), true
		}
	}
	var zero T
	return zero, false
}

// Count returns the number of records matching pred; a nil pred counts all.
func (s *Store[T]) Count(pred func(rec T) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pred == nil {
		return len(s.items)
	}
	n := 0
	for _, rec := range s.items {
		if pred(rec) {
			n++
		}
	}
	return n
}

// Key returns the durable key this store owns.
func (s *Store[T]) Key() kv.Key { return s.cfg.Key }

// persistLocked serializes the whole collection back to the durable key.
// Caller holds the write lock. Failures are reported, never returned: the
// in-memory state is the source of truth for the rest of the process.
func (s *Store[T]) persistLocked(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []T{}
	}
	buf, err := json.Marshal(items)
	if err != nil {
		s.report(err, "marshal")
		return
	}
	if err := s.kv.Set(ctx, s.cfg.Key, buf); err != nil {
		s.report(err, "persist")
	}
}

// clone detaches a record from store-owned memory through the same JSON
// representation the collection persists in, so no caller ever aliases a
// struct the next Update will mutate.
func (s *Store[T]) clone(rec T) T {
	out := s.cfg.New()
	buf, err := json.Marshal(rec)
	if err != nil {
		s.report(err, "clone")
		return rec
	}
	if err := json.Unmarshal(buf, out); err != nil {
		s.report(err, "clone")
		return rec
	}
	return out
}

func (s *Store[T]) seedCopy() []T {
	out := make([]T, len(s.cfg.Seed))
	for i, rec := range s.cfg.Seed {
		out[i] = s.clone(rec)
	}
	return out
}

func (s *Store[T]) report(err error, op string) {
	s.rep.Report(fmt.Errorf("store %s: %s: %w", s.cfg.Key, op, err), report.Options{
		ShowToast: false,
		Context: map[string]any{
			"store": string(s.cfg.Key),
			"op":    op,
		},
	})
}
