package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// envelope is the uniform response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FlexInt accepts JSON numbers and numeric strings. The backend is not
// consistent about which one it sends for ids and scoring parameters.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = 0
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(parsed)
		return nil
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the plain value.
func (f FlexInt) Int() int { return int(f) }

// FlexFloat accepts JSON numbers and numeric strings for money fields.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = 0
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(parsed)
		return nil
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = FlexFloat(n)
	return nil
}

// Float returns the plain value.
func (f FlexFloat) Float() float64 { return float64(f) }

// FlexString accepts JSON strings and bare numbers, normalizing to string.
// Roll numbers arrive both ways.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(trimmed))
	return nil
}

// String returns the plain value.
func (f FlexString) String() string { return string(f) }

// TimetableEntry is one scheduled exam row.
type TimetableEntry struct {
	TimetableID     FlexInt    `json:"timetable_id"`
	ClassID         FlexInt    `json:"class_id"`
	SectionID       FlexInt    `json:"section_id"`
	SubjectID       FlexInt    `json:"subject_id"`
	ExamDate        string     `json:"exam_date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	RoomNo          FlexString `json:"room_no"`
	MaxMarks        FlexInt    `json:"max_marks"`
	MinPassingMarks FlexInt    `json:"min_passing_marks"`
	SubjectName     string     `json:"subject_name"`
}

// ClassRow is one class option.
type ClassRow struct {
	ClassID   FlexInt `json:"class_id"`
	ClassName string  `json:"class_name"`
}

// SectionRow is one section option within a class.
type SectionRow struct {
	SectionID   FlexInt `json:"section_id"`
	SectionName string  `json:"section_name"`
}

// SubjectRow is one subject.
type SubjectRow struct {
	SubjectID   FlexInt `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
}

// StudentRow is one roster row for a class/section.
type StudentRow struct {
	StudentID   FlexInt    `json:"student_id"`
	StudentName string     `json:"student_name"`
	RollNo      FlexString `json:"roll_no"`
	Avatar      string     `json:"avatar"`
}

// CreateMarkRequest is the per-student mark creation payload.
type CreateMarkRequest struct {
	TimetableID   int    `json:"timetable_id"`
	StudentID     int    `json:"student_id"`
	MarksObtained int    `json:"marks_obtained"`
	IsAbsent      bool   `json:"is_absent"`
	Remarks       string `json:"remarks"`
}

// CreateMarkResult carries the id assigned to a stored mark.
type CreateMarkResult struct {
	MarkID FlexInt `json:"mark_id"`
}

// MarkFilter narrows the marks listing. Zero values are omitted.
type MarkFilter struct {
	ClassID   int
	SectionID int
	SubjectID int
	ExamType  string
}

// MarkRow is one stored mark as returned by the listing endpoint.
type MarkRow struct {
	MarkID        FlexInt    `json:"mark_id"`
	StudentID     FlexInt    `json:"student_id"`
	StudentName   string     `json:"student_name"`
	RollNo        FlexString `json:"roll_no"`
	MarksObtained FlexInt    `json:"marks_obtained"`
	MaxMarks      FlexInt    `json:"max_marks"`
	MinPass       FlexInt    `json:"min_pass"`
	IsAbsent      bool       `json:"is_absent"`
	Remarks       string     `json:"remarks"`
}

// FeeStudentRow is one row of the all-students listing used by fee
// collection.
type FeeStudentRow struct {
	StudentID   FlexInt    `json:"student_id"`
	Name        string     `json:"name"`
	ClassName   string     `json:"class_name"`
	SectionName string     `json:"section_name"`
	AdmissionNo FlexString `json:"admission_no"`
	Gender      string     `json:"gender"`
}

// InstallmentRow is one raw installment. The backend names the identifier
// `id` on some endpoints and `installment_id` on others, and may report a
// `calculated_status` alongside `status`.
type InstallmentRow struct {
	ID               *FlexInt   `json:"id"`
	InstallmentID    *FlexInt   `json:"installment_id"`
	InstallmentNo    FlexInt    `json:"installment_no"`
	Amount           FlexFloat  `json:"amount"`
	FineAmount       FlexFloat  `json:"fine_amount"`
	Status           string     `json:"status"`
	CalculatedStatus string     `json:"calculated_status"`
	StartDueDate     string     `json:"start_due_date"`
	EndDueDate       string     `json:"end_due_date"`
	PaidOn           FlexString `json:"paid_on"`
}

// FeeBreakdownRow is one fee head with its installments.
type FeeBreakdownRow struct {
	FeeHeadName   string           `json:"fee_head_name"`
	TotalAmount   FlexFloat        `json:"total_amount"`
	PaidAmount    FlexFloat        `json:"paid_amount"`
	PendingAmount FlexFloat        `json:"pending_amount"`
	Installments  []InstallmentRow `json:"installments"`
}

// YearSummaryRow is the current-year fee position.
type YearSummaryRow struct {
	Total   FlexFloat `json:"total"`
	Paid    FlexFloat `json:"paid"`
	Pending FlexFloat `json:"pending"`
	Fine    FlexFloat `json:"fine"`
}

// FeeSummaryRow aggregates the summary block of the fees response.
type FeeSummaryRow struct {
	CurrentYear     YearSummaryRow `json:"current_year"`
	PreviousPending FlexFloat      `json:"previous_pending"`
	PreviousFine    FlexFloat      `json:"previous_fine"`
}

// PaymentHistoryRow is one past payment.
type PaymentHistoryRow struct {
	ReceiptID   FlexString `json:"receipt_id"`
	Amount      FlexFloat  `json:"amount"`
	PaymentMode string     `json:"payment_mode"`
	PaidOn      string     `json:"paid_on"`
	Remarks     string     `json:"remarks"`
}

// StudentFeesData is the full fees response for one student and year.
type StudentFeesData struct {
	StudentInfo    json.RawMessage     `json:"student_info"`
	FeeBreakdown   []FeeBreakdownRow   `json:"fee_breakdown"`
	Summary        FeeSummaryRow       `json:"summary"`
	PaymentHistory []PaymentHistoryRow `json:"payment_history"`
}

// CollectPaymentRequest is the batched payment payload. The gateway always
// records offline collections.
type CollectPaymentRequest struct {
	StudentID      int    `json:"student_id"`
	InstallmentIDs []int  `json:"installment_ids"`
	PaymentMode    string `json:"payment_mode"`
	TransactionRef string `json:"transaction_ref"`
	PaymentGateway string `json:"payment_gateway"`
	Remarks        string `json:"remarks"`
}

// PaymentReceipt identifies a recorded payment.
type PaymentReceipt struct {
	ReceiptID FlexString `json:"receipt_id"`
}

// SubjectRequest is the payload for subject create and update calls.
type SubjectRequest struct {
	SubjectID   int    `json:"subject_id,omitempty"`
	SubjectName string `json:"subject_name"`
}
