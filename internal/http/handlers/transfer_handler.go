// Transfer HTTP handlers.
//
//   - POST /transfers                  (request a transfer)
//   - GET  /transfers                  (list, filterable)
//   - GET  /transfers/{id}             (fetch)
//   - POST /transfers/{id}/approve
//   - POST /transfers/{id}/reject
//   - POST /transfers/{id}/complete
//   - POST /transfers/{id}/notify     (manual re-dispatch; idempotent)
//
// Notification dispatch failures are surfaced to the caller: the transfer
// record itself is saved, but the response carries a notification_failed code
// so the operator knows the destination school was not informed.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/transfer"
)

// CreateTransferRequest is the JSON payload for requesting a transfer.
type CreateTransferRequest struct {
	StudentID      string `json:"studentId" binding:"required"`
	Kind           string `json:"kind" binding:"required,oneof=internal external"`
	OriginSchoolID string `json:"originSchoolId" binding:"required"`
	DestSchoolID   string `json:"destSchoolId"`
	Reason         string `json:"reason"`
}

// CreateTransfer requests a student transfer. Internal transfers with a
// destination school notify that school immediately.
func (h *Handlers) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, found := h.app.Students.Find(req.StudentID); !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "student not found")
		return
	}

	// A retried request replays the transfer created the first time.
	if id, replay := h.replayedResourceID(c); replay {
		if prev, found := h.app.Transfers.Store().Find(id); found {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, prev)
			return
		}
	}

	tr, err := h.app.Transfers.Create(c.Request.Context(), transfer.CreateInput{
		StudentID:      req.StudentID,
		Kind:           req.Kind,
		OriginSchoolID: req.OriginSchoolID,
		DestSchoolID:   req.DestSchoolID,
		Reason:         req.Reason,
	})
	if err != nil {
		// The record exists; only the dispatch failed. Retries must still
		// replay it rather than open a second request.
		h.recordIdempotency(c, tr.ID, http.StatusCreated)
		c.JSON(http.StatusCreated, gin.H{
			"transfer": tr,
			"warning":  gin.H{"code": ErrCodeDispatchFailed, "message": err.Error()},
		})
		return
	}
	h.recordIdempotency(c, tr.ID, http.StatusCreated)
	ok(c, http.StatusCreated, tr)
}

// ListTransfers lists transfers filtered by student_id, school_id (origin or
// destination) and status.
func (h *Handlers) ListTransfers(c *gin.Context) {
	page, pageSize := clampPagination(c)
	studentID := c.Query("student_id")
	schoolID := c.Query("school_id")
	status := c.Query("status")

	items := h.app.Transfers.Store().Filter(func(t *domain.Transfer) bool {
		if studentID != "" && t.StudentID != studentID {
			return false
		}
		if schoolID != "" && t.OriginSchoolID != schoolID && t.DestSchoolID != schoolID {
			return false
		}
		if status != "" && t.Status != status {
			return false
		}
		return true
	})

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, gin.H{"transfers": pageItems, "pagination": meta})
}

// GetTransfer fetches a transfer by id.
func (h *Handlers) GetTransfer(c *gin.Context) {
	tr, found := h.app.Transfers.Store().Find(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "transfer not found")
		return
	}
	ok(c, http.StatusOK, tr)
}

// ApproveTransfer approves a pending transfer and notifies the destination.
func (h *Handlers) ApproveTransfer(c *gin.Context) {
	tr, err := h.app.Transfers.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		if h.failTransfer(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transfer": tr,
			"warning":  gin.H{"code": ErrCodeDispatchFailed, "message": err.Error()},
		})
		return
	}
	ok(c, http.StatusOK, tr)
}

// RejectTransfer rejects a pending transfer.
func (h *Handlers) RejectTransfer(c *gin.Context) {
	tr, err := h.app.Transfers.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failTransfer(c, err)
		return
	}
	ok(c, http.StatusOK, tr)
}

// CompleteTransfer completes an approved transfer and marks the student
// transferred.
func (h *Handlers) CompleteTransfer(c *gin.Context) {
	tr, err := h.app.Transfers.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failTransfer(c, err)
		return
	}
	h.app.Students.Update(c.Request.Context(), tr.StudentID, func(s *domain.Student) {
		s.Status = "transferred"
		if tr.Kind == domain.TransferInternal && tr.DestSchoolID != "" {
			s.SchoolID = tr.DestSchoolID
			s.Status = "active"
		}
	})
	ok(c, http.StatusOK, tr)
}

// NotifyTransfer re-dispatches the transfer notification. A no-op when the
// notification was already sent.
func (h *Handlers) NotifyTransfer(c *gin.Context) {
	id := c.Param("id")
	if err := h.app.Transfers.SendNotification(c.Request.Context(), id); err != nil {
		if errors.Is(err, transfer.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "transfer not found")
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeDispatchFailed, err.Error())
		return
	}
	tr, _ := h.app.Transfers.Store().Find(id)
	ok(c, http.StatusOK, tr)
}

// failTransfer maps workflow errors to responses. It reports whether the
// error was terminal (response already written).
func (h *Handlers) failTransfer(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, transfer.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "transfer not found")
		return true
	case errors.Is(err, transfer.ErrBadStatus):
		fail(c, http.StatusConflict, ErrCodeConflict, "transfer is not in a status that allows this operation")
		return true
	}
	return false
}
