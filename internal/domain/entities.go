// Package domain defines the data model of the school-management backend.
//
// This file declares the locally-managed entities: collections owned by the
// in-process entity stores and persisted as whole JSON documents through the
// key-value layer. Remote-backed models mapped with GORM live in models.go.
//
// Every store-managed entity embeds Meta, which carries the identity and
// timestamp fields assigned by the owning store. Cross-entity references are
// always identifier lookups (e.g. Attachment.EntityID), never embedded object
// graphs.
package domain

import "time"

// Meta carries the record fields common to every store-managed entity.
// The owning store assigns ID and CreatedAt on Add and refreshes UpdatedAt
// on every Update; callers never set these fields themselves.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Record returns the embedded metadata, satisfying store.Entity.
func (m *Meta) Record() *Meta { return m }

// Student is a pupil registered with the municipal network.
type Student struct {
	Meta
	Name             string   `json:"name"`
	BirthDate        string   `json:"birthDate"` // ISO date, no time component
	RegistrationCode string   `json:"registrationCode"`
	GuardianName     string   `json:"guardianName"`
	GuardianPhone    string   `json:"guardianPhone"`
	SchoolID         string   `json:"schoolId"`
	Status           string   `json:"status"` // active|transferred|inactive
	SpecialNeeds     []string `json:"specialNeeds"`
}

// Enrollment binds a student to a school, grade and class for one school year.
type Enrollment struct {
	Meta
	StudentID  string `json:"studentId"`
	SchoolID   string `json:"schoolId"`
	Grade      string `json:"grade"`
	ClassGroup string `json:"classGroup"`
	SchoolYear int    `json:"schoolYear"`
	Status     string `json:"status"` // active|closed|cancelled
}

// AbsenceEntry records one student's absence inside an attendance sheet.
type AbsenceEntry struct {
	StudentID string `json:"studentId"`
	Justified bool   `json:"justified"`
}

// AttendanceRecord is the attendance sheet of one class on one date.
type AttendanceRecord struct {
	Meta
	SchoolID   string         `json:"schoolId"`
	ClassGroup string         `json:"classGroup"`
	Date       string         `json:"date"` // ISO date
	Absences   []AbsenceEntry `json:"absences"`
	Total      int            `json:"total"` // students expected in class
}

// LessonPlan is a teacher's plan for a class over a period.
type LessonPlan struct {
	Meta
	TeacherID  string   `json:"teacherId"`
	SchoolID   string   `json:"schoolId"`
	ClassGroup string   `json:"classGroup"`
	Subject    string   `json:"subject"`
	Period     string   `json:"period"` // e.g. "2026-03" or "2026-Q1"
	Objectives []string `json:"objectives"`
	Contents   []string `json:"contents"`
	Status     string   `json:"status"` // draft|submitted|approved
}

// Occurrence is a disciplinary or pedagogical occurrence involving a student.
type Occurrence struct {
	Meta
	StudentID   string `json:"studentId"`
	SchoolID    string `json:"schoolId"`
	Category    string `json:"category"`
	Severity    string `json:"severity"` // low|medium|high
	Description string `json:"description"`
	Resolved    bool   `json:"resolved"`
	ResolvedAt  string `json:"resolvedAt,omitempty"`
}

// Protocol is a sequenced service protocol opened at a school or at the
// education department. Number is generated by the protocol service from
// (SchoolID, calendar year, ordinal) and is never reused, even after the
// record itself is deleted.
type Protocol struct {
	Meta
	Number string `json:"number"`
	// Ordinal is the numeric component of Number, kept so that issuance
	// after deletions can stay monotonic instead of reusing a number.
	Ordinal     int    `json:"ordinal"`
	Year        int    `json:"year"`
	SchoolID    string `json:"schoolId"`
	RequesterID string `json:"requesterId"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Status      string `json:"status"` // open|in_progress|closed
}

// Queue entry status values. Transitions only move forward:
// waiting → calling → attending → done, with cancelled reachable from
// waiting or calling. Entries stay in the collection for reporting.
const (
	QueueWaiting   = "waiting"
	QueueCalling   = "calling"
	QueueAttending = "attending"
	QueueDone      = "done"
	QueueCancelled = "cancelled"
)

// Queue priority classes, ordered urgent < preferential < normal for the
// call-next selection.
const (
	PriorityUrgent       = "urgent"
	PriorityPreferential = "preferential"
	PriorityNormal       = "normal"
)

// QueueEntry is one service request waiting at a location's counter.
// TicketNumber is scoped per (LocationID, calendar day).
type QueueEntry struct {
	Meta
	LocationID   string     `json:"locationId"`
	TicketNumber string     `json:"ticketNumber"`
	CitizenName  string     `json:"citizenName"`
	ServiceType  string     `json:"serviceType"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	CalledAt     *time.Time `json:"calledAt,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

// Transfer status values.
const (
	TransferPending   = "pending"
	TransferApproved  = "approved"
	TransferRejected  = "rejected"
	TransferCompleted = "completed"
)

// Transfer kinds. Internal transfers move a student between schools of the
// same network and carry a destination school.
const (
	TransferInternal = "internal"
	TransferExternal = "external"
)

// Transfer is a student transfer request. NotificationSent flips false→true
// at most once per record; the dispatch itself is owned by transfer.Service.
type Transfer struct {
	Meta
	StudentID        string     `json:"studentId"`
	Kind             string     `json:"kind"`
	OriginSchoolID   string     `json:"originSchoolId"`
	DestSchoolID     string     `json:"destSchoolId"`
	Reason           string     `json:"reason"`
	Status           string     `json:"status"`
	NotificationSent bool       `json:"notificationSent"`
	NotifiedAt       *time.Time `json:"notifiedAt,omitempty"`
}

// Attachment links an uploaded file to another entity by (EntityType,
// EntityID). BlobKey points at the binary content held by the key-value
// layer; deleting the attachment releases the blob.
type Attachment struct {
	Meta
	EntityType  string `json:"entityType"`
	EntityID    string `json:"entityId"`
	Category    string `json:"category"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	BlobKey     string `json:"blobKey"`
}

// NewsPost is an announcement shown on the public portal.
type NewsPost struct {
	Meta
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

// CalendarEvent is an entry of the public school calendar.
type CalendarEvent struct {
	Meta
	Title     string `json:"title"`
	StartDate string `json:"startDate"` // ISO date
	EndDate   string `json:"endDate"`   // ISO date
	Audience  string `json:"audience"`  // all|students|teachers
}
