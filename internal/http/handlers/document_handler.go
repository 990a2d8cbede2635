// Issued-document and settings HTTP handlers.
//
// Documents live in the relational backend (issuance is transactional, see
// services.DocumentService); these endpoints mirror the store-backed CRUD
// shape with an ETag on the list route derived from the scope's stats.
//
//   - POST   /documents               (issue)
//   - GET    /documents               (list, paginated, ETag support)
//   - GET    /documents/{id}          (fetch)
//   - DELETE /documents/{id}          (cancel; number stays burned)
//   - GET    /settings, PUT /settings/{key}, DELETE /settings/{key}
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/services"
)

// IssueDocumentRequest is the JSON payload for issuing a document.
type IssueDocumentRequest struct {
	SchoolID  string `json:"schoolId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
	DocType   string `json:"docType" binding:"required"`
	Title     string `json:"title" binding:"required,min=1,max=255"`
}

// ListDocumentsResponse wraps a page of documents and pagination information.
type ListDocumentsResponse struct {
	Documents  []domain.SchoolDocument `json:"documents"`
	Pagination Pagination              `json:"pagination"`
}

// PutSettingRequest is the JSON payload for writing a setting.
type PutSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// IssueDocument issues a numbered school document.
func (h *Handlers) IssueDocument(c *gin.Context) {
	var req IssueDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "schoolId, studentId, docType and title are required")
		return
	}

	// A retried request replays the previously issued document instead of
	// burning another number.
	if id, replay := h.replayedResourceID(c); replay {
		if doc, err := h.app.Documents.Get(c.Request.Context(), id); err == nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, doc)
			return
		}
	}

	doc, err := h.app.Documents.Issue(c.Request.Context(), req.SchoolID, req.StudentID, req.DocType, req.Title)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	h.recordIdempotency(c, doc.ID, http.StatusCreated)
	ok(c, http.StatusCreated, doc)
}

// ListDocuments returns a page of documents for school_id/student_id.
// Supports weak ETag via If-None-Match and may return 304.
func (h *Handlers) ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)
	schoolID := c.Query("school_id")
	studentID := c.Query("student_id")

	// ETag pre-check (best effort).
	if schoolID != "" {
		if count, maxTS, err := h.app.Documents.Stats(ctx, schoolID); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"documents:%s:%d:%d"`, schoolID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	docs, total, err := h.app.Documents.ListPage(ctx, schoolID, studentID, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListDocumentsResponse{
		Documents: docs,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetDocument fetches one issued document.
func (h *Handlers) GetDocument(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id must be a UUID")
		return
	}
	doc, err := h.app.Documents.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
		return
	}
	ok(c, http.StatusOK, doc)
}

// CancelDocument cancels an issued document. The number is not freed.
func (h *Handlers) CancelDocument(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id must be a UUID")
		return
	}
	if err := h.app.Documents.Cancel(c.Request.Context(), id); err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
		return
	}
	noContent(c)
}

// ListSettings returns all application settings.
func (h *Handlers) ListSettings(c *gin.Context) {
	settings, err := h.app.Settings.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"settings": settings})
}

// GetSetting returns one setting by key.
func (h *Handlers) GetSetting(c *gin.Context) {
	set, err := h.app.Settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "setting not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, set)
}

// PutSetting inserts or overwrites a setting.
func (h *Handlers) PutSetting(c *gin.Context) {
	var req PutSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "value is required")
		return
	}
	if err := h.app.Settings.Put(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// DeleteSetting removes a setting; absent keys are a no-op.
func (h *Handlers) DeleteSetting(c *gin.Context) {
	if err := h.app.Settings.Delete(c.Request.Context(), c.Param("key")); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
