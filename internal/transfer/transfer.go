// Package transfer implements the student-transfer workflow: request
// creation, the approval/rejection/completion transitions, and the
// notification side effect owed to the destination school.
//
// Notifications are the one fail-loud spot of the application: a dispatch
// failure propagates to the caller instead of being absorbed, because the
// initiating workflow must know the destination school was not informed.
// Dispatch is idempotent per record — NotificationSent flips false→true at
// most once, no matter how often the triggering transitions are retried.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/notify"
	"github.com/edumunicipal/school-backend/internal/store"
)

var (
	// ErrNotFound signals an unknown transfer identifier.
	ErrNotFound = errors.New("transfer not found")
	// ErrBadStatus signals a transition from the wrong current status.
	ErrBadStatus = errors.New("transfer is not in a valid status for this operation")
)

// CreateInput carries the caller-supplied fields of a new transfer request.
type CreateInput struct {
	StudentID      string
	Kind           string // internal|external
	OriginSchoolID string
	DestSchoolID   string
	Reason         string
}

// Service owns the transfer collection and its notification side effects.
// The mutex serializes the check-then-set around NotificationSent so a
// notification is dispatched at most once per record.
type Service struct {
	store    *store.Store[*domain.Transfer]
	notifier notify.Notifier
	// DestAddress resolves the destination school's mailbox. Kept as a
	// function so the school register can live anywhere.
	destAddress func(schoolID string) string
	now         func() time.Time
	mu          sync.Mutex
}

// New wires the workflow. destAddress may be nil, in which case a
// conventional address is derived from the school id.
func New(s *store.Store[*domain.Transfer], n notify.Notifier, destAddress func(string) string, now func() time.Time) *Service {
	if destAddress == nil {
		destAddress = func(schoolID string) string {
			return schoolID + "@edu.municipal.gov.br"
		}
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{store: s, notifier: n, destAddress: destAddress, now: now}
}

// Store exposes the underlying entity store for read queries.
func (s *Service) Store() *store.Store[*domain.Transfer] { return s.store }

// Create records a pending transfer request. An internal transfer that
// already names a destination school notifies it immediately; the dispatch
// error, if any, is returned alongside the created record (the request
// itself is never rolled back — the caller retries the notification).
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Transfer, error) {
	rec := s.store.Add(ctx, func(tr *domain.Transfer) {
		tr.StudentID = in.StudentID
		tr.Kind = in.Kind
		tr.OriginSchoolID = in.OriginSchoolID
		tr.DestSchoolID = in.DestSchoolID
		tr.Reason = in.Reason
		tr.Status = domain.TransferPending
	})

	if in.Kind == domain.TransferInternal && in.DestSchoolID != "" {
		if err := s.SendNotification(ctx, rec.ID); err != nil {
			return rec, err
		}
		rec, _ = s.store.Find(rec.ID)
	}
	return rec, nil
}

// Approve moves a pending transfer to approved and notifies the destination
// school. The dispatch error, if any, propagates; the approval itself stands
// and the caller may retry the notification alone.
func (s *Service) Approve(ctx context.Context, id string) (*domain.Transfer, error) {
	rec, err := s.setStatus(ctx, id, domain.TransferApproved, domain.TransferPending)
	if err != nil {
		return nil, err
	}
	if err := s.SendNotification(ctx, id); err != nil {
		return rec, err
	}
	rec, _ = s.store.Find(id)
	return rec, nil
}

// Reject moves a pending transfer to rejected. No notification fires.
func (s *Service) Reject(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.setStatus(ctx, id, domain.TransferRejected, domain.TransferPending)
}

// Complete closes an approved transfer once the student is enrolled at the
// destination.
func (s *Service) Complete(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.setStatus(ctx, id, domain.TransferCompleted, domain.TransferApproved)
}

// SendNotification dispatches the destination-school notification for the
// given transfer. It is idempotent: when NotificationSent is already true it
// returns nil without dispatching. On successful dispatch it marks the
// record and stamps the dispatch time; on failure the error is returned and
// the record stays unmarked so a retry can dispatch again.
func (s *Service) SendNotification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Find(id)
	if !ok {
		return ErrNotFound
	}
	if rec.NotificationSent {
		return nil
	}
	if rec.DestSchoolID == "" {
		return nil // nothing to notify yet; approval of an external transfer
	}

	msg := notify.Message{
		To:      s.destAddress(rec.DestSchoolID),
		Subject: fmt.Sprintf("Transferência de aluno — %s", rec.StudentID),
		Body: fmt.Sprintf(
			"Transferência %s: aluno %s, escola de origem %s, situação %s.",
			rec.ID, rec.StudentID, rec.OriginSchoolID, rec.Status),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return err
	}

	sent := s.now()
	s.store.Update(ctx, id, func(tr *domain.Transfer) {
		tr.NotificationSent = true
		tr.NotifiedAt = &sent
	})
	return nil
}

func (s *Service) setStatus(ctx context.Context, id, to, from string) (*domain.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Find(id)
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Status != from {
		return nil, ErrBadStatus
	}
	s.store.Update(ctx, id, func(tr *domain.Transfer) { tr.Status = to })
	rec, _ = s.store.Find(id)
	return rec, nil
}
