// Reporting HTTP handlers: read-only aggregates for the dashboards.
//
//   - GET /reports/attendance?school_id=…   (per-class attendance summary)
//   - GET /reports/occurrences?school_id=…  (severity breakdown)
//   - GET /reports/documents?school_id=…    (issuance stats)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AttendanceReport summarizes attendance per class group of one school.
func (h *Handlers) AttendanceReport(c *gin.Context) {
	schoolID := c.Query("school_id")
	if schoolID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "school_id is required")
		return
	}
	ok(c, http.StatusOK, gin.H{
		"school_id": schoolID,
		"classes":   h.app.Reports.AttendanceBySchool(schoolID),
	})
}

// OccurrenceReport summarizes a school's disciplinary occurrences.
func (h *Handlers) OccurrenceReport(c *gin.Context) {
	schoolID := c.Query("school_id")
	if schoolID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "school_id is required")
		return
	}
	ok(c, http.StatusOK, h.app.Reports.OccurrencesBySchool(schoolID))
}

// DocumentReport returns a school's document issuance stats.
func (h *Handlers) DocumentReport(c *gin.Context) {
	schoolID := c.Query("school_id")
	if schoolID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "school_id is required")
		return
	}
	count, last, err := h.app.Documents.Stats(c.Request.Context(), schoolID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{
		"school_id":    schoolID,
		"issued":       count,
		"last_updated": last,
	})
}
