package dto

import "github.com/noah-isme/sma-admin-gateway/internal/models"

// Option is a generic id/name pair for filter dropdowns.
type Option struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TimetableOption is one selectable exam with the fields the filter bar
// needs to match class/section/subject selections against.
type TimetableOption struct {
	TimetableID int    `json:"timetable_id"`
	ClassID     int    `json:"class_id"`
	SectionID   int    `json:"section_id"`
	SubjectID   int    `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	ExamDate    string `json:"exam_date"`
}

// FilterOptions bundles the three lookups fetched together when the
// mark-entry screen opens.
type FilterOptions struct {
	Timetable []TimetableOption `json:"timetable"`
	Classes   []Option          `json:"classes"`
	Subjects  []Option          `json:"subjects"`
}

// StartMarkSessionRequest opens a mark-entry session for one exam roster.
type StartMarkSessionRequest struct {
	TimetableID int `json:"timetable_id" validate:"required,gt=0"`
	ClassID     int `json:"class_id" validate:"required,gt=0"`
	SectionID   int `json:"section_id" validate:"required,gt=0"`
	SubjectID   int `json:"subject_id" validate:"required,gt=0"`
}

// SetMarksRequest updates one student's marks. Value is the raw user input;
// parsing and clamping happen server-side.
type SetMarksRequest struct {
	StudentID int    `json:"student_id" validate:"required,gt=0"`
	Value     string `json:"value"`
	Version   int    `json:"version" validate:"gte=0"`
}

// ToggleAbsentRequest flips one student's absent flag.
type ToggleAbsentRequest struct {
	StudentID int `json:"student_id" validate:"required,gt=0"`
	Version   int `json:"version" validate:"gte=0"`
}

// SetRemarkRequest replaces one student's remark.
type SetRemarkRequest struct {
	StudentID int    `json:"student_id" validate:"required,gt=0"`
	Remark    string `json:"remark"`
	Version   int    `json:"version" validate:"gte=0"`
}

// MarkSessionResponse is the full session state returned after every load
// and mutation.
type MarkSessionResponse struct {
	ID      string               `json:"id"`
	Context models.ExamContext   `json:"context"`
	Records []models.StudentMark `json:"records"`
	Stats   models.MarkStats     `json:"stats"`
	Version int                  `json:"version"`
}

// NewMarkSessionResponse converts a stored session into its API shape.
func NewMarkSessionResponse(session models.MarkSession) MarkSessionResponse {
	return MarkSessionResponse{
		ID:      session.ID,
		Context: session.Context,
		Records: session.Records,
		Stats:   session.Stats,
		Version: session.Version,
	}
}

// MarkSaveOutcome is the per-student result of the bulk save loop.
type MarkSaveOutcome struct {
	StudentID int    `json:"student_id"`
	MarkID    int    `json:"mark_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BulkSaveResult is the consolidated outcome of a bulk save. Success is true
// only when every record was stored.
type BulkSaveResult struct {
	Success bool              `json:"success"`
	Results []MarkSaveOutcome `json:"results"`
	Errors  []MarkSaveOutcome `json:"errors"`
	Message string            `json:"message"`
}

// MarkListResponse pairs the normalized mark rows with their aggregate
// statistics.
type MarkListResponse struct {
	Entries []models.MarkListEntry `json:"entries"`
	Stats   models.MarkListStats   `json:"stats"`
}
