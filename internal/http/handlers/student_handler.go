// Student and enrollment HTTP handlers.
//
// This file exposes REST endpoints for student records and their enrollments:
//   - POST   /students                 (register)
//   - GET    /students                 (list, paginated, filterable)
//   - GET    /students/{id}            (fetch)
//   - PATCH  /students/{id}            (partial update)
//   - DELETE /students/{id}            (remove)
//   - POST   /enrollments              (enroll a student)
//   - GET    /enrollments              (list, filterable)
//   - PUT    /enrollments/{id}/status  (close or cancel)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/utils"
)

// CreateStudentRequest is the JSON payload for registering a student.
type CreateStudentRequest struct {
	Name             string   `json:"name" binding:"required,min=1,max=255"`
	BirthDate        string   `json:"birthDate"`
	RegistrationCode string   `json:"registrationCode"`
	GuardianName     string   `json:"guardianName"`
	GuardianPhone    string   `json:"guardianPhone"`
	SchoolID         string   `json:"schoolId" binding:"required"`
	SpecialNeeds     []string `json:"specialNeeds"`
}

// UpdateStudentRequest carries a partial student update. Nil fields are left
// untouched.
type UpdateStudentRequest struct {
	Name          *string   `json:"name"`
	BirthDate     *string   `json:"birthDate"`
	GuardianName  *string   `json:"guardianName"`
	GuardianPhone *string   `json:"guardianPhone"`
	SchoolID      *string   `json:"schoolId"`
	Status        *string   `json:"status"`
	SpecialNeeds  *[]string `json:"specialNeeds"`
}

// ListStudentsResponse wraps a page of students and pagination information.
type ListStudentsResponse struct {
	Students   []*domain.Student `json:"students"`
	Pagination Pagination        `json:"pagination"`
}

// CreateStudent registers a new student for a school.
func (h *Handlers) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	st := h.app.Students.Add(c.Request.Context(), func(s *domain.Student) {
		s.Name = strings.TrimSpace(req.Name)
		s.BirthDate = req.BirthDate
		s.RegistrationCode = req.RegistrationCode
		s.GuardianName = req.GuardianName
		s.GuardianPhone = req.GuardianPhone
		s.SchoolID = req.SchoolID
		s.Status = "active"
		s.SpecialNeeds = req.SpecialNeeds
	})
	ok(c, http.StatusCreated, st)
}

// ListStudents returns a page of students, optionally filtered by school_id
// and status query params.
func (h *Handlers) ListStudents(c *gin.Context) {
	page, pageSize := clampPagination(c)
	schoolID := c.Query("school_id")
	status := c.Query("status")

	items := h.app.Students.Filter(func(s *domain.Student) bool {
		if schoolID != "" && s.SchoolID != schoolID {
			return false
		}
		if status != "" && s.Status != status {
			return false
		}
		return true
	})

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, ListStudentsResponse{Students: pageItems, Pagination: meta})
}

// GetStudent fetches a single student by id.
func (h *Handlers) GetStudent(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "student id must be a UUID")
		return
	}
	st, found := h.app.Students.Find(id)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "student not found")
		return
	}
	ok(c, http.StatusOK, st)
}

// UpdateStudent applies a partial update to a student record.
func (h *Handlers) UpdateStudent(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "student id must be a UUID")
		return
	}

	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	updated := h.app.Students.Update(c.Request.Context(), id, func(s *domain.Student) {
		if req.Name != nil {
			s.Name = strings.TrimSpace(*req.Name)
		}
		if req.BirthDate != nil {
			s.BirthDate = *req.BirthDate
		}
		if req.GuardianName != nil {
			s.GuardianName = *req.GuardianName
		}
		if req.GuardianPhone != nil {
			s.GuardianPhone = *req.GuardianPhone
		}
		if req.SchoolID != nil {
			s.SchoolID = *req.SchoolID
		}
		if req.Status != nil {
			s.Status = *req.Status
		}
		if req.SpecialNeeds != nil {
			s.SpecialNeeds = *req.SpecialNeeds
		}
	})
	if !updated {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "student not found")
		return
	}

	st, _ := h.app.Students.Find(id)
	ok(c, http.StatusOK, st)
}

// DeleteStudent removes a student record.
func (h *Handlers) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "student id must be a UUID")
		return
	}
	if !h.app.Students.Delete(c.Request.Context(), id) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "student not found")
		return
	}
	noContent(c)
}

// CreateEnrollmentRequest is the JSON payload for enrolling a student.
type CreateEnrollmentRequest struct {
	StudentID  string `json:"studentId" binding:"required"`
	SchoolID   string `json:"schoolId" binding:"required"`
	Grade      string `json:"grade" binding:"required"`
	ClassGroup string `json:"classGroup"`
	SchoolYear int    `json:"schoolYear" binding:"required"`
}

// UpdateEnrollmentStatusRequest sets an enrollment's status.
type UpdateEnrollmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active closed cancelled"`
}

// CreateEnrollment enrolls a student into a school/grade for a school year.
// The student must exist.
func (h *Handlers) CreateEnrollment(c *gin.Context) {
	var req CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, found := h.app.Students.Find(req.StudentID); !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "student not found")
		return
	}

	en := h.app.Enrollments.Add(c.Request.Context(), func(e *domain.Enrollment) {
		e.StudentID = req.StudentID
		e.SchoolID = req.SchoolID
		e.Grade = req.Grade
		e.ClassGroup = req.ClassGroup
		e.SchoolYear = req.SchoolYear
		e.Status = "active"
	})
	ok(c, http.StatusCreated, en)
}

// ListEnrollments lists enrollments filtered by student_id, school_id and
// school_year query params.
func (h *Handlers) ListEnrollments(c *gin.Context) {
	page, pageSize := clampPagination(c)
	studentID := c.Query("student_id")
	schoolID := c.Query("school_id")
	year := utils.AtoiDefault(c.Query("school_year"), 0)

	items := h.app.Enrollments.Filter(func(e *domain.Enrollment) bool {
		if studentID != "" && e.StudentID != studentID {
			return false
		}
		if schoolID != "" && e.SchoolID != schoolID {
			return false
		}
		if year != 0 && e.SchoolYear != year {
			return false
		}
		return true
	})

	pageItems, meta := paginate(items, page, pageSize)
	ok(c, http.StatusOK, gin.H{"enrollments": pageItems, "pagination": meta})
}

// UpdateEnrollmentStatus closes or cancels an enrollment.
func (h *Handlers) UpdateEnrollmentStatus(c *gin.Context) {
	id := c.Param("id")
	var req UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of active, closed, cancelled")
		return
	}

	updated := h.app.Enrollments.Update(c.Request.Context(), id, func(e *domain.Enrollment) {
		e.Status = req.Status
	})
	if !updated {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "enrollment not found")
		return
	}
	en, _ := h.app.Enrollments.Find(id)
	ok(c, http.StatusOK, en)
}
