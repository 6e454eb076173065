package models

import "time"

// Installment statuses as reported (or computed) by the backend.
const (
	InstallmentPaid    = "paid"
	InstallmentOverdue = "overdue"
	InstallmentPending = "pending"
)

// FeeInstallment is one scheduled partial payment of a fee head, normalized
// so downstream code never re-checks the backend's inconsistent field naming.
type FeeInstallment struct {
	ID            int     `json:"id"`
	InstallmentNo int     `json:"installment_no"`
	Amount        float64 `json:"amount"`
	FineAmount    float64 `json:"fine_amount"`
	Status        string  `json:"status"`
	DueDate       string  `json:"due_date"`
	PaidOn        string  `json:"paid_on,omitempty"`
}

// FeeHead groups installments under a named fee category.
type FeeHead struct {
	Name          string           `json:"name"`
	TotalAmount   float64          `json:"total_amount"`
	PaidAmount    float64          `json:"paid_amount"`
	PendingAmount float64          `json:"pending_amount"`
	Installments  []FeeInstallment `json:"installments"`
}

// IsPaid reports whether the head is fully settled.
func (h FeeHead) IsPaid() bool {
	return h.PendingAmount == 0 && h.TotalAmount > 0
}

// FeeSummary aggregates the current-year position plus carried-over dues.
type FeeSummary struct {
	Total           float64 `json:"total"`
	Paid            float64 `json:"paid"`
	Pending         float64 `json:"pending"`
	Fine            float64 `json:"fine"`
	PreviousPending float64 `json:"previous_pending"`
	PreviousFine    float64 `json:"previous_fine"`
}

// PaymentRecord is one historical payment entry.
type PaymentRecord struct {
	ReceiptID   string  `json:"receipt_id"`
	Amount      float64 `json:"amount"`
	PaymentMode string  `json:"payment_mode"`
	PaidOn      string  `json:"paid_on"`
	Remarks     string  `json:"remarks,omitempty"`
}

// SelectionTotals are the live totals over the currently selected
// installments.
type SelectionTotals struct {
	Amount float64 `json:"amount"`
	Fine   float64 `json:"fine"`
	Grand  float64 `json:"grand"`
	Count  int     `json:"count"`
}

// FeeSession is the mutable state of one fee-collection screen session:
// the student's fee breakdown plus the installments selected for payment.
type FeeSession struct {
	ID           string          `json:"id"`
	StudentID    int             `json:"student_id"`
	AcademicYear string          `json:"academic_year"`
	Heads        []FeeHead       `json:"heads"`
	Summary      FeeSummary      `json:"summary"`
	History      []PaymentRecord `json:"history"`
	SelectedIDs  []int           `json:"selected_ids"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FindInstallment locates an installment across all heads.
func (s *FeeSession) FindInstallment(id int) *FeeInstallment {
	for i := range s.Heads {
		for j := range s.Heads[i].Installments {
			if s.Heads[i].Installments[j].ID == id {
				return &s.Heads[i].Installments[j]
			}
		}
	}
	return nil
}

// IsSelected reports whether an installment id is in the current selection.
func (s *FeeSession) IsSelected(id int) bool {
	for _, selected := range s.SelectedIDs {
		if selected == id {
			return true
		}
	}
	return false
}

// Totals computes the live selection totals from the current selection.
func (s *FeeSession) Totals() SelectionTotals {
	totals := SelectionTotals{}
	for _, id := range s.SelectedIDs {
		installment := s.FindInstallment(id)
		if installment == nil {
			continue
		}
		totals.Amount += installment.Amount
		totals.Fine += installment.FineAmount
		totals.Count++
	}
	totals.Grand = totals.Amount + totals.Fine
	return totals
}
