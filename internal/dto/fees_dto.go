package dto

import "github.com/noah-isme/sma-admin-gateway/internal/models"

// FeeStudent is one row of the student picker on the fee screen.
type FeeStudent struct {
	StudentID   int    `json:"student_id"`
	Name        string `json:"name"`
	ClassName   string `json:"class_name"`
	SectionName string `json:"section_name"`
	AdmissionNo string `json:"admission_no"`
	Gender      string `json:"gender"`
}

// StartFeeSessionRequest opens a fee-collection session for one student and
// academic year.
type StartFeeSessionRequest struct {
	StudentID    int    `json:"student_id" validate:"required,gt=0"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// SelectInstallmentRequest toggles one installment in the selection.
type SelectInstallmentRequest struct {
	InstallmentID int `json:"installment_id" validate:"required,gt=0"`
	Version       int `json:"version" validate:"gte=0"`
}

// CollectFeePaymentRequest records a payment over the selected installments.
// TransactionRef is mandatory for every mode except cash.
type CollectFeePaymentRequest struct {
	PaymentMode    string `json:"payment_mode" validate:"required,oneof=cash card upi cheque bank_transfer"`
	TransactionRef string `json:"transaction_ref"`
	Remarks        string `json:"remarks"`
	Version        int    `json:"version" validate:"gte=0"`
}

// FeeSessionResponse is the full fee-session state: breakdown, summary,
// history, current selection and its live totals. Empty marks a student with
// no fee records for the year.
type FeeSessionResponse struct {
	ID           string                 `json:"id"`
	StudentID    int                    `json:"student_id"`
	AcademicYear string                 `json:"academic_year"`
	Heads        []models.FeeHead       `json:"heads"`
	Summary      models.FeeSummary      `json:"summary"`
	History      []models.PaymentRecord `json:"history"`
	SelectedIDs  []int                  `json:"selected_ids"`
	Totals       models.SelectionTotals `json:"totals"`
	Version      int                    `json:"version"`
	Empty        bool                   `json:"empty"`
}

// NewFeeSessionResponse converts a stored fee session into its API shape.
func NewFeeSessionResponse(session models.FeeSession) FeeSessionResponse {
	return FeeSessionResponse{
		ID:           session.ID,
		StudentID:    session.StudentID,
		AcademicYear: session.AcademicYear,
		Heads:        session.Heads,
		Summary:      session.Summary,
		History:      session.History,
		SelectedIDs:  session.SelectedIDs,
		Totals:       session.Totals(),
		Version:      session.Version,
		Empty:        len(session.Heads) == 0,
	}
}

// PaymentReceiptResponse identifies the recorded payment.
type PaymentReceiptResponse struct {
	ReceiptID string `json:"receipt_id"`
}
