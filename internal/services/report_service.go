// Package services – ReportService
//
// Aggregations for the administrative dashboards, computed over the entity
// stores. Queries are pure reads of the in-memory collections; nothing here
// mutates state.
package services

import (
	"github.com/edumunicipal/school-backend/internal/domain"
	"github.com/edumunicipal/school-backend/internal/store"
)

// AttendanceSummary aggregates one class group's attendance.
type AttendanceSummary struct {
	SchoolID    string  `json:"school_id"`
	ClassGroup  string  `json:"class_group"`
	Sheets      int     `json:"sheets"`
	Absences    int     `json:"absences"`
	Justified   int     `json:"justified"`
	AbsenceRate float64 `json:"absence_rate"` // absences / (sheets * class size)
}

// OccurrenceSummary aggregates disciplinary occurrences per severity.
type OccurrenceSummary struct {
	SchoolID   string         `json:"school_id"`
	Total      int            `json:"total"`
	Unresolved int            `json:"unresolved"`
	BySeverity map[string]int `json:"by_severity"`
}

// ReportService derives read-only aggregates from the entity stores.
type ReportService struct {
	Attendance  *store.Store[*domain.AttendanceRecord]
	Occurrences *store.Store[*domain.Occurrence]
}

// AttendanceBySchool summarizes attendance sheets per class group of one
// school.
func (s *ReportService) AttendanceBySchool(schoolID string) []AttendanceSummary {
	byClass := map[string]*AttendanceSummary{}
	order := []string{}

	for _, rec := range s.Attendance.Filter(func(r *domain.AttendanceRecord) bool {
		return r.SchoolID == schoolID
	}) {
		sum, ok := byClass[rec.ClassGroup]
		if !ok {
			sum = &AttendanceSummary{SchoolID: schoolID, ClassGroup: rec.ClassGroup}
			byClass[rec.ClassGroup] = sum
			order = append(order, rec.ClassGroup)
		}
		sum.Sheets++
		sum.Absences += len(rec.Absences)
		for _, a := range rec.Absences {
			if a.Justified {
				sum.Justified++
			}
		}
		if rec.Total > 0 {
			// Weighted over all sheets seen so far for the class.
			sum.AbsenceRate = float64(sum.Absences) / float64(sum.Sheets*rec.Total)
		}
	}

	out := make([]AttendanceSummary, 0, len(order))
	for _, class := range order {
		out = append(out, *byClass[class])
	}
	return out
}

// OccurrencesBySchool summarizes a school's disciplinary occurrences.
func (s *ReportService) OccurrencesBySchool(schoolID string) OccurrenceSummary {
	sum := OccurrenceSummary{SchoolID: schoolID, BySeverity: map[string]int{}}
	for _, rec := range s.Occurrences.Filter(func(o *domain.Occurrence) bool {
		return o.SchoolID == schoolID
	}) {
		sum.Total++
		sum.BySeverity[rec.Severity]++
		if !rec.Resolved {
			sum.Unresolved++
		}
	}
	return sum
}
