// Handler wiring and shared helpers.
//
// Handlers is bound to the application layer's composition root and exposes
// one method per endpoint, spread over the *_handler.go files of this
// package. Handlers are transport-thin: they validate input, call stores and
// services, and translate results into HTTP responses.
package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/http/middleware"
	"github.com/edumunicipal/school-backend/internal/repo"
	"github.com/edumunicipal/school-backend/internal/services"
	"github.com/edumunicipal/school-backend/internal/utils"
)

// Handlers groups the HTTP endpoints of the school-management API.
type Handlers struct {
	app *services.App
}

// New constructs a Handlers instance bound to the given application.
func New(app *services.App) *Handlers {
	return &Handlers{app: app}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// idempotencyTTL bounds how long a persisted Idempotency-Key shields its
// operation from being re-executed.
const idempotencyTTL = 24 * time.Hour

// recordIdempotency persists the (user, route, key) → resource mapping after
// a successful mutation so the validator middleware flags the retry as a
// replay. Best effort: a write failure never undoes the mutation.
func (h *Handlers) recordIdempotency(c *gin.Context, resourceID string, status int) {
	key, hasKey := middleware.GetIdempotencyKey(c)
	if !hasKey {
		return
	}
	db := h.app.Documents.DB
	if db == nil {
		return
	}
	_, _ = repo.CreateIdempotency(c.Request.Context(), db, userID(c),
		c.FullPath(), key, resourceID, status, idempotencyTTL)
}

// replayedResourceID resolves the resource created by a previous request
// carrying the same idempotency key, when the validator flagged this one as
// a replay. The caller serves that resource instead of mutating again.
func (h *Handlers) replayedResourceID(c *gin.Context) (string, bool) {
	if !middleware.IsReplay(c) {
		return "", false
	}
	key, hasKey := middleware.GetIdempotencyKey(c)
	if !hasKey {
		return "", false
	}
	db := h.app.Documents.DB
	if db == nil {
		return "", false
	}
	rec, err := repo.GetIdempotency(c.Request.Context(), db, userID(c),
		c.FullPath(), key, time.Now().UTC())
	if err != nil || rec == nil {
		return "", false
	}
	return rec.ResourceID, true
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginate cuts one page out of an in-memory collection and returns it with
// the filled metadata. Store-backed collections are read as full snapshots,
// so paging happens here rather than in a query.
func paginate[T any](items []T, page, pageSize int) ([]T, Pagination) {
	total := int64(len(items))
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
