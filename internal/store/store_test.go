package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/kv"
	"github.com/edumunicipal/school-backend/internal/report"
	"github.com/edumunicipal/school-backend/internal/sanitize"
)

// memKV is an in-memory kv.Store for tests.
type memKV struct {
	mu   sync.Mutex
	data map[kv.Key][]byte
}

func newMemKV() *memKV { return &memKV{data: map[kv.Key][]byte{}} }

func (m *memKV) Get(_ context.Context, key kv.Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.data[key]
	return buf, ok, nil
}

func (m *memKV) Set(_ context.Context, key kv.Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key kv.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// countingReporter records every report it receives.
type countingReporter struct {
	mu    sync.Mutex
	calls []report.Options
}

func (r *countingReporter) Report(_ error, opts report.Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, opts)
}

func newStudentStore(kvs kv.Store, rep report.Reporter) *Store[*domain.Student] {
	return New(kvs, rep, Config[*domain.Student]{
		Key: kv.KeyStudents,
		Schema: sanitize.Schema{
			Defaults:    map[string]any{"status": "active"},
			ArrayFields: []string{"specialNeeds"},
		},
		New: func() *domain.Student { return &domain.Student{} },
	})
}

func TestLoad_EmptyStorage_SeedsAndPersists(t *testing.T) {
	kvs := newMemKV()
	s := New(kvs, nil, Config[*domain.Student]{
		Key:  kv.KeyStudents,
		Seed: []*domain.Student{{Name: "Seeded"}},
		New:  func() *domain.Student { return &domain.Student{} },
	})

	s.Load(context.Background())

	if got := len(s.All()); got != 1 {
		t.Fatalf("expected seed collection, got %d records", got)
	}
	// Post-condition: the durable key now holds the seed, not absent.
	buf, ok, _ := kvs.Get(context.Background(), kv.KeyStudents)
	if !ok {
		t.Fatalf("seed was not persisted")
	}
	var persisted []domain.Student
	if err := json.Unmarshal(buf, &persisted); err != nil {
		t.Fatalf("persisted seed not valid JSON: %v", err)
	}
	if len(persisted) != 1 || persisted[0].Name != "Seeded" {
		t.Fatalf("persisted seed mismatch: %+v", persisted)
	}
}

func TestLoad_CorruptedValue_FallsBackAndReportsOnce(t *testing.T) {
	kvs := newMemKV()
	kvs.Set(context.Background(), kv.KeyStudents, []byte("{not json"))
	rep := &countingReporter{}
	s := newStudentStore(kvs, rep)

	s.Load(context.Background())

	if got := len(s.All()); got != 0 {
		t.Fatalf("expected empty fallback collection, got %d", got)
	}
	if len(rep.calls) != 1 {
		t.Fatalf("reporter invoked %d times, want 1", len(rep.calls))
	}
	if rep.calls[0].ShowToast {
		t.Fatalf("load failure must not request a toast")
	}
}

func TestLoad_SanitizesStoredRecords(t *testing.T) {
	kvs := newMemKV()
	// specialNeeds is corrupt and status is missing: both must be repaired.
	kvs.Set(context.Background(), kv.KeyStudents,
		[]byte(`[{"id":"s1","name":"Ana","specialNeeds":"oops"}]`))
	s := newStudentStore(kvs, &countingReporter{})

	s.Load(context.Background())

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
	if all[0].Status != "active" {
		t.Fatalf("default not applied: %+v", all[0])
	}
	if all[0].SpecialNeeds == nil || len(all[0].SpecialNeeds) != 0 {
		t.Fatalf("array field not coerced: %+v", all[0].SpecialNeeds)
	}
}

func TestLoad_MistypedRecord_KeepsNeighbours(t *testing.T) {
	kvs := newMemKV()
	// "name" must be a string; the middle record is mistyped and degrades to
	// the schema stub while its neighbours survive.
	kvs.Set(context.Background(), kv.KeyStudents,
		[]byte(`[{"id":"a","name":"Ana"},{"id":"b","name":123},{"id":"c","name":"Caio"}]`))
	rep := &countingReporter{}
	s := newStudentStore(kvs, rep)

	s.Load(context.Background())

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].Name != "Ana" || all[2].Name != "Caio" {
		t.Fatalf("good records were dropped or reordered: %+v", all)
	}
	if all[1].ID != "" || all[1].Name != "" || all[1].Status != "active" {
		t.Fatalf("mistyped record did not degrade to the stub: %+v", all[1])
	}
	if len(rep.calls) != 1 {
		t.Fatalf("reporter invoked %d times, want 1", len(rep.calls))
	}
}

func TestReadPaths_ReturnDetachedRecords(t *testing.T) {
	s := newStudentStore(newMemKV(), nil)
	s.Load(context.Background())
	ctx := context.Background()

	added := s.Add(ctx, func(st *domain.Student) { st.Name = "Ana" })
	found, _ := s.Find(added.ID)
	all := s.All()

	s.Update(ctx, added.ID, func(st *domain.Student) { st.Name = "Beatriz" })

	if added.Name != "Ana" || found.Name != "Ana" || all[0].Name != "Ana" {
		t.Fatalf("update leaked into previously returned records: %q %q %q",
			added.Name, found.Name, all[0].Name)
	}

	// The reverse direction must hold too: writing through a returned
	// record never reaches the collection.
	found.Name = "scribble"
	fresh, _ := s.Find(added.ID)
	if fresh.Name != "Beatriz" {
		t.Fatalf("caller write reached the collection: %q", fresh.Name)
	}
}

func TestConcurrentUpdatesAndReads(t *testing.T) {
	s := newStudentStore(newMemKV(), nil)
	s.Load(context.Background())
	ctx := context.Background()
	rec := s.Add(ctx, func(st *domain.Student) { st.Name = "Ana" })

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Update(ctx, rec.ID, func(st *domain.Student) { st.Name = "Beatriz" })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if got, ok := s.Find(rec.ID); ok {
				_ = got.Name
			}
			for _, st := range s.All() {
				_ = st.Name
			}
		}
	}()
	wg.Wait()
}

func TestAdd_AssignsUniqueIdentity(t *testing.T) {
	s := newStudentStore(newMemKV(), nil)
	s.Load(context.Background())
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec := s.Add(ctx, func(st *domain.Student) { st.Name = "x" })
		if rec.ID == "" {
			t.Fatalf("empty id assigned")
		}
		if seen[rec.ID] {
			t.Fatalf("id reused: %s", rec.ID)
		}
		seen[rec.ID] = true
		if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
			t.Fatalf("timestamps not assigned: %+v", rec.Meta)
		}
	}
	if s.Count(nil) != 50 {
		t.Fatalf("collection size %d, want 50", s.Count(nil))
	}
}

func TestUpdate_MissingID_IsNoOp(t *testing.T) {
	kvs := newMemKV()
	s := newStudentStore(kvs, nil)
	s.Load(context.Background())
	ctx := context.Background()

	a := s.Add(ctx, func(st *domain.Student) { st.Name = "a" })
	before := a.UpdatedAt

	if ok := s.Update(ctx, "no-such-id", func(st *domain.Student) { st.Name = "mutated" }); ok {
		t.Fatalf("update of unknown id reported success")
	}
	got, _ := s.Find(a.ID)
	if got.Name != "a" || !got.UpdatedAt.Equal(before) {
		t.Fatalf("unrelated record touched: %+v", got)
	}
}

func TestUpdate_RefreshesUpdatedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := New(newMemKV(), nil, Config[*domain.Student]{
		Key: kv.KeyStudents,
		New: func() *domain.Student { return &domain.Student{} },
		Now: clock,
	})
	s.Load(context.Background())
	ctx := context.Background()

	rec := s.Add(ctx, nil)
	now = now.Add(time.Hour)

	if ok := s.Update(ctx, rec.ID, func(st *domain.Student) { st.Name = "renamed" }); !ok {
		t.Fatalf("update failed")
	}
	got, _ := s.Find(rec.ID)
	if got.Name != "renamed" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if !got.UpdatedAt.Equal(got.CreatedAt.Add(time.Hour)) {
		t.Fatalf("UpdatedAt not refreshed: %+v", got.Meta)
	}
}

func TestDelete_RemovesAndReleases(t *testing.T) {
	released := []string{}
	s := New(newMemKV(), nil, Config[*domain.Student]{
		Key: kv.KeyStudents,
		New: func() *domain.Student { return &domain.Student{} },
		Release: func(_ context.Context, rec *domain.Student) {
			released = append(released, rec.ID)
		},
	})
	s.Load(context.Background())
	ctx := context.Background()

	rec := s.Add(ctx, nil)
	if ok := s.Delete(ctx, rec.ID); !ok {
		t.Fatalf("delete failed")
	}
	if len(released) != 1 || released[0] != rec.ID {
		t.Fatalf("release hook not called: %v", released)
	}
	if ok := s.Delete(ctx, rec.ID); ok {
		t.Fatalf("second delete reported success")
	}
	if len(released) != 1 {
		t.Fatalf("release hook called for absent record")
	}
}

func TestMutations_PersistWholeCollection(t *testing.T) {
	kvs := newMemKV()
	s := newStudentStore(kvs, nil)
	s.Load(context.Background())
	ctx := context.Background()

	a := s.Add(ctx, func(st *domain.Student) { st.Name = "a" })
	s.Add(ctx, func(st *domain.Student) { st.Name = "b" })
	s.Delete(ctx, a.ID)

	buf, ok, _ := kvs.Get(ctx, kv.KeyStudents)
	if !ok {
		t.Fatalf("nothing persisted")
	}
	var persisted []domain.Student
	if err := json.Unmarshal(buf, &persisted); err != nil {
		t.Fatalf("persisted value invalid: %v", err)
	}
	if len(persisted) != 1 || persisted[0].Name != "b" {
		t.Fatalf("persisted collection mismatch: %+v", persisted)
	}
}

func TestFilter_IsPure(t *testing.T) {
	s := newStudentStore(newMemKV(), nil)
	s.Load(context.Background())
	ctx := context.Background()

	s.Add(ctx, func(st *domain.Student) { st.SchoolID = "sch1" })
	s.Add(ctx, func(st *domain.Student) { st.SchoolID = "sch2" })

	got := s.Filter(func(st *domain.Student) bool { return st.SchoolID == "sch1" })
	if len(got) != 1 {
		t.Fatalf("filter returned %d records, want 1", len(got))
	}
	if s.Count(nil) != 2 {
		t.Fatalf("filter mutated the collection")
	}
}
