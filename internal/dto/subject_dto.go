package dto

// SubjectResponse is one subject entry.
type SubjectResponse struct {
	SubjectID   int    `json:"subject_id"`
	SubjectName string `json:"subject_name"`
}

// SubjectCreateRequest creates a new subject.
type SubjectCreateRequest struct {
	SubjectName string `json:"subject_name" validate:"required,min=1,max=255"`
}

// SubjectUpdateRequest renames an existing subject.
type SubjectUpdateRequest struct {
	SubjectName string `json:"subject_name" validate:"required,min=1,max=255"`
}
