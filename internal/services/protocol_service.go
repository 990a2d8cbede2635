// Package services – ProtocolService
//
// This file implements the protocol workflow: opening a numbered protocol
// for a requester at a school and driving it through its statuses. The
// service owns number generation: ordinal = highest ordinal recorded for
// (school, year) + 1, serialized behind a mutex so two simultaneous
// openings cannot compute the same ordinal in this process. Deleting a
// protocol leaves a gap; its number is never issued again.
package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/sequence"
	"github.com/edumunicipal/school-backend/internal/store"
)

// ProtocolService opens and advances service protocols.
type ProtocolService struct {
	store *store.Store[*domain.Protocol]
	now   func() time.Time
	mu    sync.Mutex
}

// NewProtocolService wraps a protocol store. now defaults to time.Now UTC.
func NewProtocolService(s *store.Store[*domain.Protocol], now func() time.Time) *ProtocolService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ProtocolService{store: s, now: now}
}

// Store exposes the underlying entity store for read queries.
func (s *ProtocolService) Store() *store.Store[*domain.Protocol] { return s.store }

// Open records a new protocol with the next number for (schoolID, current
// year) and status "open". The next ordinal is the highest ordinal recorded
// in the scope plus one — equal to count+1 while nothing is deleted, but
// immune to handing a deleted record's successor number out twice.
func (s *ProtocolService) Open(ctx context.Context, schoolID, requesterID, subject, description string) (*domain.Protocol, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrEmptySubject
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	year := sequence.Year(s.now())
	ordinal := 1
	for _, p := range s.store.Filter(func(p *domain.Protocol) bool {
		return p.SchoolID == schoolID && p.Year == year
	}) {
		if p.Ordinal >= ordinal {
			ordinal = p.Ordinal + 1
		}
	}

	rec := s.store.Add(ctx, func(p *domain.Protocol) {
		p.SchoolID = schoolID
		p.RequesterID = requesterID
		p.Subject = subject
		p.Description = description
		p.Status = "open"
		p.Year = year
		p.Ordinal = ordinal
		p.Number = sequence.ProtocolNumber(schoolID, year, ordinal)
	})
	return rec, nil
}

// SetStatus advances a protocol to the given status.
func (s *ProtocolService) SetStatus(ctx context.Context, id, status string) (*domain.Protocol, error) {
	if ok := s.store.Update(ctx, id, func(p *domain.Protocol) { p.Status = status }); !ok {
		return nil, ErrProtocolNotFound
	}
	rec, _ := s.store.Find(id)
	return rec, nil
}

// BySchool lists the school's protocols, newest first left to the caller;
// the store preserves insertion order.
func (s *ProtocolService) BySchool(schoolID string) []*domain.Protocol {
	return s.store.Filter(func(p *domain.Protocol) bool { return p.SchoolID == schoolID })
}
