// Package domain defines the data model of the school-management backend.
// This file declares the remote-backed models mapped with GORM: issued school
// documents, application settings and idempotency records. These are the only
// entities that live in the relational backend; everything else is owned by
// the in-process entity stores (see entities.go).
package domain

import (
	"time"

	"gorm.io/gorm"
)

// SchoolDocument is an officially issued document (declaração de matrícula,
// histórico escolar, etc.). Number is a sequence number scoped per
// (SchoolID, calendar year) and derived from a COUNT query inside the
// issuing transaction.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - SchoolID / StudentID: owning school and subject student; indexed.
//   - DocType: short machine code of the document kind (e.g. "declaracao").
//   - Number: human-readable sequence number, unique per school and year.
//   - Title: display title shown on the issued document.
//   - Year: calendar year the number is scoped to.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (cancelled documents stay auditable).
type SchoolDocument struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	SchoolID  string         `json:"school_id"  gorm:"type:varchar(64);not null;index:idx_school_docs,priority:1"`
	StudentID string         `json:"student_id" gorm:"type:varchar(64);not null;index"`
	DocType   string         `json:"doc_type"   gorm:"type:varchar(32);not null"`
	Number    string         `json:"number"     gorm:"type:varchar(32);not null;uniqueIndex:ux_doc_number"`
	Title     string         `json:"title"      gorm:"type:varchar(255);not null"`
	Year      int            `json:"year"       gorm:"not null;index:idx_school_docs,priority:2"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for SchoolDocument.
func (SchoolDocument) TableName() string { return "school_documents" }

// Setting is a key/value application setting kept in the relational backend
// so that every process sees the same configuration.
type Setting struct {
	Key       string    `json:"key"   gorm:"type:varchar(128);primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Setting.
func (Setting) TableName() string { return "settings" }

// Idempotency represents a recorded result of a previously processed request,
// keyed by (user_id, scope, key). It enables safe retries for POST/PUT
// operations by letting handlers serve the originally produced response
// without re-executing side effects. Scope is the resource identifier the
// mutation targeted (e.g. the transfer or queue-entry id).
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:3"`
	ResourceID string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Blob is a raw keyed value used by the GORM-backed key-value store. The
// entity stores serialize whole collections into a single row each; the
// attachment blobs share the table under a "blob/" key prefix.
type Blob struct {
	Key       string    `gorm:"type:varchar(255);primaryKey"`
	Value     []byte    `gorm:"type:blob;not null"`
	UpdatedAt time.Time
}

// TableName implements the GORM tabler interface.
func (Blob) TableName() string { return "blobs" }
