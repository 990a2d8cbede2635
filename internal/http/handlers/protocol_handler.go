// Protocol HTTP handlers.
//
//   - POST /protocols               (open, returns the assigned number)
//   - GET  /protocols               (list by school)
//   - GET  /protocols/{id}          (fetch)
//   - PUT  /protocols/{id}/status   (advance)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/services"
)

// OpenProtocolRequest is the JSON payload for opening a protocol.
type OpenProtocolRequest struct {
	SchoolID    string `json:"schoolId" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description"`
}

// UpdateProtocolStatusRequest advances a protocol's status.
type UpdateProtocolStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in_progress closed"`
}

// OpenProtocol opens a numbered protocol for the requesting user.
func (h *Handlers) OpenProtocol(c *gin.Context) {
	var req OpenProtocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// A retried request replays the protocol opened the first time instead
	// of burning another number.
	if id, replay := h.replayedResourceID(c); replay {
		if prev, found := h.app.Protocols.Store().Find(id); found {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, prev)
			return
		}
	}

	p, err := h.app.Protocols.Open(c.Request.Context(), req.SchoolID, userID(c), req.Subject, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrEmptySubject) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subject is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	h.recordIdempotency(c, p.ID, http.StatusCreated)
	ok(c, http.StatusCreated, p)
}

// ListProtocols lists protocols, filtered by school_id and status.
func (h *Handlers) ListProtocols(c *gin.Context) {
	page, pageSize := clampPagination(c)
	schoolID := c.Query("school_id")
	status := c.Query("status")

	items := h.app.Protocols.Store().Filter(func(p *domain.Protocol) bool {
		if schoolID != "" && p.SchoolID != schoolID {
			return false
		}
		if status != "" && p.Status != status {
			return false
		}
		return true
	})

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, gin.H{"protocols": pageItems, "pagination": meta})
}

// GetProtocol fetches a protocol by id.
func (h *Handlers) GetProtocol(c *gin.Context) {
	p, found := h.app.Protocols.Store().Find(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "protocol not found")
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProtocolStatus advances a protocol to the given status.
func (h *Handlers) UpdateProtocolStatus(c *gin.Context) {
	var req UpdateProtocolStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of open, in_progress, closed")
		return
	}

	p, err := h.app.Protocols.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "protocol not found")
		return
	}
	ok(c, http.StatusOK, p)
}
