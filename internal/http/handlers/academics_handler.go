// Academic-records HTTP handlers: attendance sheets, lesson plans and
// disciplinary occurrences.
//
//   - POST  /attendance                (record a class sheet)
//   - GET   /attendance                (list, filterable)
//   - POST  /lesson-plans              (submit)
//   - GET   /lesson-plans              (list, filterable)
//   - PUT   /lesson-plans/{id}/status  (advance draft → submitted → approved)
//   - POST  /occurrences               (register)
//   - GET   /occurrences               (list, filterable)
//   - PUT   /occurrences/{id}/resolve  (mark resolved)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/domain"
)

// AbsenceInput is one absence line inside an attendance sheet payload.
type AbsenceInput struct {
	StudentID string `json:"studentId" binding:"required"`
	Justified bool   `json:"justified"`
}

// CreateAttendanceRequest is the JSON payload for recording attendance.
type CreateAttendanceRequest struct {
	SchoolID   string         `json:"schoolId" binding:"required"`
	ClassGroup string         `json:"classGroup" binding:"required"`
	Date       string         `json:"date" binding:"required"`
	Absences   []AbsenceInput `json:"absences"`
	Total      int            `json:"total" binding:"required,min=1"`
}

// CreateAttendance records the attendance sheet of one class on one date.
func (h *Handlers) CreateAttendance(c *gin.Context) {
	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}

	rec := h.app.Attendance.Add(c.Request.Context(), func(a *domain.AttendanceRecord) {
		a.SchoolID = req.SchoolID
		a.ClassGroup = req.ClassGroup
		a.Date = req.Date
		a.Total = req.Total
		a.Absences = make([]domain.AbsenceEntry, 0, len(req.Absences))
		for _, ab := range req.Absences {
			a.Absences = append(a.Absences, domain.AbsenceEntry{
				StudentID: ab.StudentID,
				Justified: ab.Justified,
			})
		}
	})
	ok(c, http.StatusCreated, rec)
}

// ListAttendance lists attendance sheets filtered by school_id, class_group
// and date query params.
func (h *Handlers) ListAttendance(c *gin.Context) {
	page, pageSize := clampPagination(c)
	schoolID := c.Query("school_id")
	classGroup := c.Query("class_group")
	date := c.Query("date")

	items := h.app.Attendance.Filter(func(a *domain.AttendanceRecord) bool {
		if schoolID != "" && a.SchoolID != schoolID {
			return false
		}
		if classGroup != "" && a.ClassGroup != classGroup {
			return false
		}
		if date != "" && a.Date != date {
			return false
		}
		return true
	})

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, gin.H{"attendance": pageItems, "pagination": meta})
}

// CreateLessonPlanRequest is the JSON payload for submitting a lesson plan.
type CreateLessonPlanRequest struct {
	TeacherID  string   `json:"teacherId" binding:"required"`
	SchoolID   string   `json:"schoolId" binding:"required"`
	ClassGroup string   `json:"classGroup" binding:"required"`
	Subject    string   `json:"subject" binding:"required"`
	Period     string   `json:"period" binding:"required"`
	Objectives []string `json:"objectives"`
	Contents   []string `json:"contents"`
}

// UpdateLessonPlanStatusRequest advances a plan through its statuses.
type UpdateLessonPlanStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft submitted approved"`
}

// CreateLessonPlan registers a teacher's plan, starting as a draft.
func (h *Handlers) CreateLessonPlan(c *gin.Context) {
	var req CreateLessonPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	lp := h.app.LessonPlans.Add(c.Request.Context(), func(p *domain.LessonPlan) {
		p.TeacherID = req.TeacherID
		p.SchoolID = req.SchoolID
		p.ClassGroup = req.ClassGroup
		p.Subject = req.Subject
		p.Period = req.Period
		p.Objectives = req.Objectives
		p.Contents = req.Contents
		p.Status = "draft"
	})
	ok(c, http.StatusCreated, lp)
}

// ListLessonPlans lists plans filtered by teacher_id, school_id and period.
func (h *Handlers) ListLessonPlans(c *gin.Context) {
	page, pageSize := clampPagination(c)
	teacherID := c.Query("teacher_id")
	schoolID := c.Query("school_id")
	period := c.Query("period")

	items := h.app.LessonPlans.Filter(func(p *domain.LessonPlan) bool {
		if teacherID != "" && p.TeacherID != teacherID {
			return false
		}
		if schoolID != "" && p.SchoolID != schoolID {
			return false
		}
		if period != "" && p.Period != period {
			return false
		}
		return true
	})

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, gin.H{"lesson_plans": pageItems, "pagination": meta})
}

// UpdateLessonPlanStatus sets a lesson plan's status.
func (h *Handlers) UpdateLessonPlanStatus(c *gin.Context) {
	id := c.Param("id")
	var req UpdateLessonPlanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of draft, submitted, approved")
		return
	}

	updated := h.app.LessonPlans.Update(c.Request.Context(), id, func(p *domain.LessonPlan) {
		p.Status = req.Status
	})
	if !updated {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "lesson plan not found")
		return
	}
	lp, _ := h.app.LessonPlans.Find(id)
	ok(c, http.StatusOK, lp)
}

// CreateOccurrenceRequest is the JSON payload for registering an occurrence.
type CreateOccurrenceRequest struct {
	StudentID   string `json:"studentId" binding:"required"`
	SchoolID    string `json:"schoolId" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Severity    string `json:"severity" binding:"omitempty,oneof=low medium high"`
	Description string `json:"description"`
}

// CreateOccurrence registers a disciplinary occurrence for a student.
func (h *Handlers) CreateOccurrence(c *gin.Context) {
	var req CreateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Severity == "" {
		req.Severity = "low"
	}

	oc := h.app.Occurrences.Add(c.Request.Context(), func(o *domain.Occurrence) {
		o.StudentID = req.StudentID
		o.SchoolID = req.SchoolID
		o.Category = req.Category
		o.Severity = req.Severity
		o.Description = req.Description
	})
	ok(c, http.StatusCreated, oc)
}

// ListOccurrences lists occurrences filtered by student_id, school_id and
// resolved query params.
func (h *Handlers) ListOccurrences(c *gin.Context) {
	page, pageSize := clampPagination(c)
	studentID := c.Query("student_id")
	schoolID := c.Query("school_id")
	resolved := c.Query("resolved")

	items := h.app.Occurrences.Filter(func(o *domain.Occurrence) bool {
		if studentID != "" && o.StudentID != studentID {
			return false
		}
		if schoolID != "" && o.SchoolID != schoolID {
			return false
		}
		if resolved == "true" && !o.Resolved {
			return false
		}
		if resolved == "false" && o.Resolved {
			return false
		}
		return true
	})

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, gin.H{"occurrences": pageItems, "pagination": meta})
}

// ResolveOccurrence marks an occurrence as resolved.
func (h *Handlers) ResolveOccurrence(c *gin.Context) {
	id := c.Param("id")
	updated := h.app.Occurrences.Update(c.Request.Context(), id, func(o *domain.Occurrence) {
		o.Resolved = true
		o.ResolvedAt = time.Now().UTC().Format("2006-01-02")
	})
	if !updated {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "occurrence not found")
		return
	}
	oc, _ := h.app.Occurrences.Find(id)
	ok(c, http.StatusOK, oc)
}
