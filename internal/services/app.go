// Package services – application wiring
//
// App is the composition root for the application layer: it builds every
// entity store with its sanitization schema and seed collection, binds the
// workflow services (protocols, queue, transfers) on top of them, and owns
// the GORM-backed services (documents, settings). The HTTP layer receives a
// fully wired *App and never constructs stores itself.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/kv"
	"github.com/edumunicipal/school-backend/internal/notify"
	"github.com/edumunicipal/school-backend/internal/queue"
	"github.com/edumunicipal/school-backend/internal/report"
	"github.com/edumunicipal/school-backend/internal/sanitize"
	"github.com/edumunicipal/school-backend/internal/store"
	"github.com/edumunicipal/school-backend/internal/transfer"
)

// App aggregates every store and service of the application layer.
type App struct {
	Students    *store.Store[*domain.Student]
	Enrollments *store.Store[*domain.Enrollment]
	Attendance  *store.Store[*domain.AttendanceRecord]
	LessonPlans *store.Store[*domain.LessonPlan]
	Occurrences *store.Store[*domain.Occurrence]
	News        *store.Store[*domain.NewsPost]
	Calendar    *store.Store[*domain.CalendarEvent]
	Attachments *store.Store[*domain.Attachment]

	// Blobs holds attachment binary content, addressed by Attachment.BlobKey.
	Blobs kv.Store

	Protocols *ProtocolService
	Documents *DocumentService
	Settings  *SettingService
	Reports   *ReportService
	Queue     *queue.Queue
	Transfers *transfer.Service
}

// NewApp wires stores and services. kvs backs the entity collections and the
// attachment blobs, db backs documents/settings/idempotency, rep receives
// store failure reports and n dispatches transfer notifications. now may be
// nil outside tests.
func NewApp(kvs kv.Store, db *gorm.DB, rep report.Reporter, n notify.Notifier, now func() time.Time) *App {
	a := &App{Blobs: kvs}

	a.Students = store.New(kvs, rep, store.Config[*domain.Student]{
		Key: kv.KeyStudents,
		Schema: sanitize.Schema{
			Defaults:    map[string]any{"name": "", "status": "active"},
			ArrayFields: []string{"specialNeeds"},
		},
		New: func() *domain.Student { return &domain.Student{} },
		Now: now,
	})

	a.Enrollments = store.New(kvs, rep, store.Config[*domain.Enrollment]{
		Key: kv.KeyEnrollments,
		Schema: sanitize.Schema{
			Defaults: map[string]any{"status": "active"},
		},
		New: func() *domain.Enrollment { return &domain.Enrollment{} },
		Now: now,
	})

	a.Attendance = store.New(kvs, rep, store.Config[*domain.AttendanceRecord]{
		Key: kv.KeyAttendance,
		Schema: sanitize.Schema{
			ArrayFields: []string{"absences"},
		},
		New: func() *domain.AttendanceRecord { return &domain.AttendanceRecord{} },
		Now: now,
	})

	a.LessonPlans = store.New(kvs, rep, store.Config[*domain.LessonPlan]{
		Key: kv.KeyLessonPlans,
		Schema: sanitize.Schema{
			Defaults:    map[string]any{"status": "draft"},
			ArrayFields: []string{"objectives", "contents"},
		},
		New: func() *domain.LessonPlan { return &domain.LessonPlan{} },
		Now: now,
	})

	a.Occurrences = store.New(kvs, rep, store.Config[*domain.Occurrence]{
		Key: kv.KeyOccurrences,
		Schema: sanitize.Schema{
			Defaults: map[string]any{"severity": "low", "resolved": false},
		},
		New: func() *domain.Occurrence { return &domain.Occurrence{} },
		Now: now,
	})

	a.News = store.New(kvs, rep, store.Config[*domain.NewsPost]{
		Key: kv.KeyNews,
		Schema: sanitize.Schema{
			Defaults: map[string]any{"published": false},
		},
		New: func() *domain.NewsPost { return &domain.NewsPost{} },
		Now: now,
	})

	a.Calendar = store.New(kvs, rep, store.Config[*domain.CalendarEvent]{
		Key: kv.KeyCalendar,
		Schema: sanitize.Schema{
			Defaults: map[string]any{"audience": "all"},
		},
		New: func() *domain.CalendarEvent { return &domain.CalendarEvent{} },
		Now: now,
	})

	a.Attachments = store.New(kvs, rep, store.Config[*domain.Attachment]{
		Key: kv.KeyAttachments,
		New: func() *domain.Attachment { return &domain.Attachment{} },
		Now: now,
		// Deleting an attachment releases its blob. A failing blob delete
		// is reported by the store, not surfaced: the record is gone and a
		// stale blob is recoverable garbage, not data loss.
		Release: func(ctx context.Context, rec *domain.Attachment) {
			if rec.BlobKey != "" {
				_ = kvs.Delete(ctx, kv.Key(rec.BlobKey))
			}
		},
	})

	protocols := store.New(kvs, rep, store.Config[*domain.Protocol]{
		Key: kv.KeyProtocols,
		Schema: sanitize.Schema{
			Defaults: map[string]any{"status": "open"},
		},
		New: func() *domain.Protocol { return &domain.Protocol{} },
		Now: now,
	})
	a.Protocols = NewProtocolService(protocols, now)

	entries := store.New(kvs, rep, store.Config[*domain.QueueEntry]{
		Key: kv.KeyQueue,
		Schema: sanitize.Schema{
			Defaults: map[string]any{
				"status":   domain.QueueWaiting,
				"priority": domain.PriorityNormal,
			},
		},
		New: func() *domain.QueueEntry { return &domain.QueueEntry{} },
		Now: now,
	})
	a.Queue = queue.New(entries, now)

	transfers := store.New(kvs, rep, store.Config[*domain.Transfer]{
		Key: kv.KeyTransfers,
		Schema: sanitize.Schema{
			Defaults: map[string]any{
				"status":           domain.TransferPending,
				"notificationSent": false,
			},
		},
		New: func() *domain.Transfer { return &domain.Transfer{} },
		Now: now,
	})

	a.Documents = &DocumentService{DB: db}
	a.Settings = &SettingService{DB: db}
	a.Reports = &ReportService{Attendance: a.Attendance, Occurrences: a.Occurrences}

	// Destination addresses resolve through settings ("notify.school.<id>")
	// so each school can register its secretariat mailbox. Schools without a
	// registered mailbox get the conventional address.
	a.Transfers = transfer.New(transfers, n, func(schoolID string) string {
		if db != nil {
			if set, err := a.Settings.Get(context.Background(), "notify.school."+schoolID); err == nil && set.Value != "" {
				return set.Value
			}
		}
		return schoolID + "@edu.municipal.gov.br"
	}, now)

	return a
}

// Load hydrates every store from the key-value layer. Call once before
// serving traffic; corrupted or missing data degrades to seeds and is
// reported, never fatal.
func (a *App) Load(ctx context.Context) {
	a.Students.Load(ctx)
	a.Enrollments.Load(ctx)
	a.Attendance.Load(ctx)
	a.LessonPlans.Load(ctx)
	a.Occurrences.Load(ctx)
	a.News.Load(ctx)
	a.Calendar.Load(ctx)
	a.Attachments.Load(ctx)
	a.Protocols.Store().Load(ctx)
	a.Queue.Store().Load(ctx)
	a.Transfers.Store().Load(ctx)
}
