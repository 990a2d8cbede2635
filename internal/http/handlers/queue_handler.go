// Service-queue HTTP handlers.
//
//   - POST /queue/locations/{location}            (take a ticket)
//   - GET  /queue/locations/{location}            (pending entries, call order)
//   - POST /queue/locations/{location}/call-next  (call the next to the counter)
//   - PUT  /queue/entries/{id}/start    (counter starts attending)
//   - PUT  /queue/entries/{id}/finish   (attendance done)
//   - PUT  /queue/entries/{id}/cancel   (citizen left / gave up)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/queue"
)

// JoinQueueRequest is the JSON payload for taking a ticket at a location.
type JoinQueueRequest struct {
	CitizenName string `json:"citizenName" binding:"required"`
	ServiceType string `json:"serviceType" binding:"required"`
	Priority    string `json:"priority" binding:"omitempty,oneof=urgent preferential normal"`
}

// JoinQueue issues a ticket for a citizen at the location's counter.
func (h *Handlers) JoinQueue(c *gin.Context) {
	var req JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// A retried request replays the ticket issued the first time.
	if id, replay := h.replayedResourceID(c); replay {
		if prev, found := h.app.Queue.Store().Find(id); found {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, prev)
			return
		}
	}

	entry := h.app.Queue.Issue(c.Request.Context(), c.Param("location"), req.CitizenName, req.ServiceType, req.Priority)
	h.recordIdempotency(c, entry.ID, http.StatusCreated)
	ok(c, http.StatusCreated, entry)
}

// ListQueue returns the location's pending entries in call order.
func (h *Handlers) ListQueue(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"entries": h.app.Queue.Pending(c.Param("location"))})
}

// CallNext moves the highest-priority waiting entry to "calling" and returns
// it. An empty queue yields 404 with the queue_empty code.
func (h *Handlers) CallNext(c *gin.Context) {
	entry, err := h.app.Queue.CallNext(c.Request.Context(), c.Param("location"))
	if err != nil {
		if errors.Is(err, queue.ErrQueueEmpty) {
			fail(c, http.StatusNotFound, ErrCodeQueueEmpty, "no one is waiting at this location")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, entry)
}

// StartEntry marks a called entry as being attended.
func (h *Handlers) StartEntry(c *gin.Context) {
	h.queueTransition(c, h.app.Queue.Start)
}

// FinishEntry marks an attended entry as done.
func (h *Handlers) FinishEntry(c *gin.Context) {
	h.queueTransition(c, h.app.Queue.Finish)
}

// CancelEntry cancels a waiting or called entry.
func (h *Handlers) CancelEntry(c *gin.Context) {
	h.queueTransition(c, h.app.Queue.Cancel)
}

// queueTransition applies one of the queue's status transitions and maps its
// errors onto the response envelope.
func (h *Handlers) queueTransition(c *gin.Context, apply func(ctx context.Context, id string) error) {
	id := c.Param("id")
	if err := apply(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, queue.ErrNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "queue entry not found")
		case errors.Is(err, queue.ErrBadTransition):
			fail(c, http.StatusConflict, ErrCodeBadTransition, "entry is not in a status that allows this move")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	entry, _ := h.app.Queue.Store().Find(id)
	ok(c, http.StatusOK, entry)
}
