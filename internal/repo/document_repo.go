// Package repo implements the relational persistence layer, backed by GORM.
// This file provides repository functions for the SchoolDocument model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the thin-repository
// approach: CRUD persistence and query composition only; number generation
// policy lives in services.DocumentService.
//
// Error semantics:
//   - When a document is not found, functions return ErrNotFound (an alias
//     of gorm.ErrRecordNotFound).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumunicipal/school-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for convenience across services and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CountDocumentsInScope returns how many documents were ever issued for
// (schoolID, year), including soft-deleted ones. Cancelled documents keep
// their place in the sequence, so numbers are never reused.
func CountDocumentsInScope(ctx context.Context, db *gorm.DB, schoolID string, year int) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Unscoped().
		Model(&domain.SchoolDocument{}).
		Where("school_id = ? AND year = ?", schoolID, year).
		Count(&total).Error
	return total, err
}

// CreateDocument inserts a new issued document with the given, already
// formatted sequence number. The ID is a random UUID and CreatedAt is UTC.
func CreateDocument(ctx context.Context, db *gorm.DB, schoolID, studentID, docType, title, number string, year int) (*domain.SchoolDocument, error) {
	doc := &domain.SchoolDocument{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		StudentID: studentID,
		DocType:   docType,
		Number:    number,
		Title:     title,
		Year:      year,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument fetches a single document by id, or ErrNotFound.
func GetDocument(ctx context.Context, db *gorm.DB, id string) (*domain.SchoolDocument, error) {
	var doc domain.SchoolDocument
	if err := db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// CountDocuments returns the number of visible documents for schoolID,
// optionally restricted to one student (empty studentID means all).
func CountDocuments(ctx context.Context, db *gorm.DB, schoolID, studentID string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.SchoolDocument{}).
		Where("school_id = ?", schoolID)
	if studentID != "" {
		q = q.Where("student_id = ?", studentID)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListDocumentsPage returns a page of documents for schoolID ordered by
// creation time descending. Use CountDocuments for pagination metadata.
func ListDocumentsPage(ctx context.Context, db *gorm.DB, schoolID, studentID string, offset, limit int) ([]domain.SchoolDocument, error) {
	q := db.WithContext(ctx).
		Where("school_id = ?", schoolID)
	if studentID != "" {
		q = q.Where("student_id = ?", studentID)
	}
	var out []domain.SchoolDocument
	err := q.Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CancelDocument soft-deletes a document. The row stays behind (and keeps
// its place in the numbering sequence); ErrNotFound when no row matched.
func CancelDocument(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.SchoolDocument{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DocumentsStats returns aggregate metadata for a school's documents: the
// total number of visible rows and the greatest UpdatedAt among them. Used
// by the reporting endpoint. When the school has no documents, count is 0
// and maxUpdatedAt is nil.
func DocumentsStats(ctx context.Context, db *gorm.DB, schoolID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.SchoolDocument{}).Where("school_id = ?", schoolID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
