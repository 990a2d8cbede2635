// Package queue implements the service-desk queue: ticket issuance scoped
// per (location, calendar day) and the call-next selection that orders
// pending entries by priority class, then arrival time.
//
// Entry lifecycle: waiting → calling → attending → done, with cancelled
// reachable from waiting or calling. No transition removes an entry from the
// collection; finished and cancelled entries stay behind for reporting.
package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/sequence"
	"github.com/edumunicipal/school-backend/internal/store"
)

var (
	// ErrQueueEmpty signals that no entry is pending at the location.
	ErrQueueEmpty = errors.New("no pending queue entry")
	// ErrNotFound signals an unknown entry identifier.
	ErrNotFound = errors.New("queue entry not found")
	// ErrBadTransition signals a status change that would move an entry
	// backwards (e.g. attending → waiting).
	ErrBadTransition = errors.New("invalid queue status transition")
)

// Queue owns the service-queue collection. The mutex serializes ticket
// issuance so two same-instant requests cannot compute the same ordinal.
type Queue struct {
	store *store.Store[*domain.QueueEntry]
	now   func() time.Time
	mu    sync.Mutex
}

// New wraps a queue-entry store. now defaults to time.Now in UTC.
func New(s *store.Store[*domain.QueueEntry], now func() time.Time) *Queue {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Queue{store: s, now: now}
}

// Store exposes the underlying entity store for read queries and reporting.
func (q *Queue) Store() *store.Store[*domain.QueueEntry] { return q.store }

// Issue creates a waiting entry with a ticket number scoped to
// (locationID, today): ordinal = entries already created there today + 1.
func (q *Queue) Issue(ctx context.Context, locationID, citizenName, serviceType, priority string) *domain.QueueEntry {
	switch priority {
	case domain.PriorityUrgent, domain.PriorityPreferential, domain.PriorityNormal:
	default:
		priority = domain.PriorityNormal
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	day := sequence.Day(q.now())
	ordinal := q.store.Count(func(e *domain.QueueEntry) bool {
		return e.LocationID == locationID && sequence.Day(e.CreatedAt) == day
	}) + 1

	return q.store.Add(ctx, func(e *domain.QueueEntry) {
		e.LocationID = locationID
		e.CitizenName = citizenName
		e.ServiceType = serviceType
		e.Priority = priority
		e.Status = domain.QueueWaiting
		e.TicketNumber = sequence.TicketNumber(priority, ordinal)
	})
}

// priorityRank orders urgent < preferential < normal.
func priorityRank(p string) int {
	switch p {
	case domain.PriorityUrgent:
		return 0
	case domain.PriorityPreferential:
		return 1
	default:
		return 2
	}
}

// Pending returns the location's waiting and calling entries in call order:
// priority rank ascending, ties broken by arrival time.
func (q *Queue) Pending(locationID string) []*domain.QueueEntry {
	entries := q.store.Filter(func(e *domain.QueueEntry) bool {
		return e.LocationID == locationID &&
			(e.Status == domain.QueueWaiting || e.Status == domain.QueueCalling)
	})
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := priorityRank(entries[i].Priority), priorityRank(entries[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

// CallNext selects the head of the pending order, transitions it to calling
// and stamps the call time. Calling again before the head is attended
// re-selects the same entry (repeat announcement). Exactly one entry's state
// advances per invocation; an empty queue yields ErrQueueEmpty.
func (q *Queue) CallNext(ctx context.Context, locationID string) (*domain.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.Pending(locationID)
	if len(pending) == 0 {
		return nil, ErrQueueEmpty
	}
	head := pending[0]
	called := q.now()
	q.store.Update(ctx, head.ID, func(e *domain.QueueEntry) {
		e.Status = domain.QueueCalling
		e.CalledAt = &called
	})
	entry, _ := q.store.Find(head.ID)
	return entry, nil
}

// Start moves a called entry to attending.
func (q *Queue) Start(ctx context.Context, id string) error {
	return q.transition(ctx, id, domain.QueueAttending, func(e *domain.QueueEntry, now time.Time) {
		e.StartedAt = &now
	}, domain.QueueCalling)
}

// Finish moves an attended entry to done.
func (q *Queue) Finish(ctx context.Context, id string) error {
	return q.transition(ctx, id, domain.QueueDone, func(e *domain.QueueEntry, now time.Time) {
		e.FinishedAt = &now
	}, domain.QueueAttending)
}

// Cancel abandons an entry that has not been attended yet.
func (q *Queue) Cancel(ctx context.Context, id string) error {
	return q.transition(ctx, id, domain.QueueCancelled, nil,
		domain.QueueWaiting, domain.QueueCalling)
}

func (q *Queue) transition(ctx context.Context, id, to string, stamp func(*domain.QueueEntry, time.Time), from ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.store.Find(id)
	if !ok {
		return ErrNotFound
	}
	allowed := false
	for _, f := range from {
		if entry.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrBadTransition
	}
	now := q.now()
	q.store.Update(ctx, id, func(e *domain.QueueEntry) {
		e.Status = to
		if stamp != nil {
			stamp(e, now)
		}
	})
	return nil
}
