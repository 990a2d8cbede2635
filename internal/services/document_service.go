// Package services – DocumentService and SettingService
//
// DocumentService issues officially numbered school documents against the
// relational backend. Unlike the store-backed protocols, issuance here runs
// inside a database transaction: the (school, year) scope count and the
// insert are atomic, and the unique index on the number column turns a
// concurrent collision into a retryable error instead of a duplicate.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/repo"
	"github.com/edumunicipal/school-backend/internal/sequence"
)

// DocumentService implements the use-cases around issued documents.
type DocumentService struct {
	// DB is the database handle used for all document operations. It may
	// be a plain *gorm.DB or a transaction-bound handle.
	DB *gorm.DB
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s *DocumentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Issue creates a numbered document for (schoolID, studentID). The sequence
// number is derived from the count of documents ever issued in the
// (school, current year) scope — soft-deleted rows included, so a cancelled
// document never frees its number.
func (s *DocumentService) Issue(ctx context.Context, schoolID, studentID, docType, title string) (*domain.SchoolDocument, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	var doc *domain.SchoolDocument
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := sequence.Year(s.now())
		n, err := repo.CountDocumentsInScope(ctx, tx, schoolID, year)
		if err != nil {
			return err
		}
		number := sequence.ProtocolNumber(schoolID, year, int(n)+1)

		doc, err = repo.CreateDocument(ctx, tx, schoolID, studentID, docType, title, number, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Get fetches one issued document.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.SchoolDocument, error) {
	doc, err := repo.GetDocument(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrDocumentNotFound
	}
	return doc, err
}

// ListPage returns a page of a school's documents and the total count.
func (s *DocumentService) ListPage(ctx context.Context, schoolID, studentID string, page, pageSize int) ([]domain.SchoolDocument, int64, error) {
	total, err := repo.CountDocuments(ctx, s.DB, schoolID, studentID)
	if err != nil {
		return nil, 0, err
	}
	docs, err := repo.ListDocumentsPage(ctx, s.DB, schoolID, studentID, (page-1)*pageSize, pageSize)
	return docs, total, err
}

// Cancel soft-deletes an issued document. Its number stays burned.
func (s *DocumentService) Cancel(ctx context.Context, id string) error {
	err := repo.CancelDocument(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrDocumentNotFound
	}
	return err
}

// Stats returns the count and latest update time of a school's documents.
func (s *DocumentService) Stats(ctx context.Context, schoolID string) (int64, *time.Time, error) {
	return repo.DocumentsStats(ctx, s.DB, schoolID)
}

// SettingService reads and writes shared application settings.
type SettingService struct {
	DB *gorm.DB
}

// Get returns the value for key or ErrSettingNotFound.
func (s *SettingService) Get(ctx context.Context, key string) (*domain.Setting, error) {
	set, err := repo.GetSetting(ctx, s.DB, key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSettingNotFound
	}
	return set, err
}

// Put inserts or overwrites the value for key.
func (s *SettingService) Put(ctx context.Context, key, value string) error {
	return repo.PutSetting(ctx, s.DB, key, value)
}

// List returns all settings.
func (s *SettingService) List(ctx context.Context) ([]domain.Setting, error) {
	return repo.ListSettings(ctx, s.DB)
}

// Delete removes the setting for key; absent keys are a no-op.
func (s *SettingService) Delete(ctx context.Context, key string) error {
	return repo.DeleteSetting(ctx, s.DB, key)
}
