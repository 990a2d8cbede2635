// Public-content HTTP handlers: news posts and calendar events.
//
// Admin routes manage the content; the public routes only expose published
// news and the full calendar, and are served gzip-compressed by the router.
//
//   - POST   /news, PATCH /news/{id}, DELETE /news/{id}
//   - POST   /calendar, DELETE /calendar/{id}
//   - GET    /public/news        (published only)
//   - GET    /public/calendar
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/domain"
)

// CreateNewsRequest is the JSON payload for publishing a news post.
type CreateNewsRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=255"`
	Body      string `json:"body" binding:"required"`
	Published bool   `json:"published"`
}

// UpdateNewsRequest carries a partial news update. Nil fields are untouched.
type UpdateNewsRequest struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	Published *bool   `json:"published"`
}

// CreateCalendarEventRequest is the JSON payload for a calendar entry.
type CreateCalendarEventRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=255"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate"`
	Audience  string `json:"audience" binding:"omitempty,oneof=all students teachers"`
}

// CreateNews registers a news post.
func (h *Handlers) CreateNews(c *gin.Context) {
	var req CreateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	post := h.app.News.Add(c.Request.Context(), func(n *domain.NewsPost) {
		n.Title = req.Title
		n.Body = req.Body
		n.Published = req.Published
	})
	ok(c, http.StatusCreated, post)
}

// UpdateNews applies a partial update to a news post.
func (h *Handlers) UpdateNews(c *gin.Context) {
	var req UpdateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id := c.Param("id")
	updated := h.app.News.Update(c.Request.Context(), id, func(n *domain.NewsPost) {
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Body != nil {
			n.Body = *req.Body
		}
		if req.Published != nil {
			n.Published = *req.Published
		}
	})
	if !updated {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "news post not found")
		return
	}
	post, _ := h.app.News.Find(id)
	ok(c, http.StatusOK, post)
}

// DeleteNews removes a news post.
func (h *Handlers) DeleteNews(c *gin.Context) {
	if !h.app.News.Delete(c.Request.Context(), c.Param("id")) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "news post not found")
		return
	}
	noContent(c)
}

// PublicNews lists published news posts, newest first.
func (h *Handlers) PublicNews(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items := h.app.News.Filter(func(n *domain.NewsPost) bool { return n.Published })

	// Newest first for the portal.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, gin.H{"news": pageItems, "pagination": meta})
}

// CreateCalendarEvent registers a school-calendar entry.
func (h *Handlers) CreateCalendarEvent(c *gin.Context) {
	var req CreateCalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "startDate must be YYYY-MM-DD")
		return
	}
	if req.EndDate == "" {
		req.EndDate = req.StartDate
	}
	if req.Audience == "" {
		req.Audience = "all"
	}

	ev := h.app.Calendar.Add(c.Request.Context(), func(e *domain.CalendarEvent) {
		e.Title = req.Title
		e.StartDate = req.StartDate
		e.EndDate = req.EndDate
		e.Audience = req.Audience
	})
	ok(c, http.StatusCreated, ev)
}

// DeleteCalendarEvent removes a calendar entry.
func (h *Handlers) DeleteCalendarEvent(c *gin.Context) {
	if !h.app.Calendar.Delete(c.Request.Context(), c.Param("id")) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "calendar event not found")
		return
	}
	noContent(c)
}

// PublicCalendar lists calendar events, optionally scoped to a month
// (month=YYYY-MM query param, matched against the start date).
func (h *Handlers) PublicCalendar(c *gin.Context) {
	month := c.Query("month")
	items := h.app.Calendar.Filter(func(e *domain.CalendarEvent) bool {
		if month != "" && (len(e.StartDate) < 7 || e.StartDate[:7] != month) {
			return false
		}
		return true
	})
	ok(c, http.StatusOK, gin.H{"events": items})
}
