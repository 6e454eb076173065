package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
)

// The record mapper is the only place that resolves the backend's optional
// and inconsistently named fields into canonical records. Downstream code
// never re-checks the raw shapes.

// MapRosterToMarks converts a class roster into fresh mark-entry records.
// Every student starts with zero marks, present, and no remark.
func MapRosterToMarks(rows []upstream.StudentRow) []models.StudentMark {
	records := make([]models.StudentMark, 0, len(rows))
	for _, row := range rows {
		id := row.StudentID.Int()
		rollNo := strings.TrimSpace(row.RollNo.String())
		if rollNo == "" {
			rollNo = fmt.Sprintf("%d", id)
		}
		name := strings.TrimSpace(row.StudentName)
		if name == "" {
			name = fmt.Sprintf("Student %d", id)
		}
		records = append(records, models.StudentMark{
			StudentID: id,
			RollNo:    rollNo,
			Name:      name,
			Marks:     0,
			IsAbsent:  false,
			Status:    models.StatusAbsent,
			Remark:    "",
		})
	}
	return records
}

// MapMarkRows normalizes stored marks for the listing screen, deriving each
// row's status from its own scoring parameters.
func MapMarkRows(rows []upstream.MarkRow) []models.MarkListEntry {
	entries := make([]models.MarkListEntry, 0, len(rows))
	for _, row := range rows {
		id := row.StudentID.Int()
		rollNo := strings.TrimSpace(row.RollNo.String())
		if rollNo == "" {
			rollNo = fmt.Sprintf("%d", id)
		}
		name := strings.TrimSpace(row.StudentName)
		if name == "" {
			name = fmt.Sprintf("Student %d", id)
		}
		maxMarks := row.MaxMarks.Int()
		if maxMarks <= 0 {
			maxMarks = models.DefaultMaxMarks
		}
		minPass := row.MinPass.Int()
		if minPass <= 0 {
			minPass = models.DefaultMinPass
		}
		entries = append(entries, models.MarkListEntry{
			MarkID:    row.MarkID.Int(),
			StudentID: id,
			RollNo:    rollNo,
			Name:      name,
			Marks:     row.MarksObtained.Int(),
			MaxMarks:  maxMarks,
			MinPass:   minPass,
			IsAbsent:  row.IsAbsent,
			Status:    models.DeriveStatus(row.MarksObtained.Int(), row.IsAbsent, minPass),
			Remarks:   row.Remarks,
		})
	}
	return entries
}

// MapInstallment resolves the id alias, the status precedence, and the due
// date preference of one raw installment.
func MapInstallment(row upstream.InstallmentRow) models.FeeInstallment {
	id := 0
	if row.ID != nil {
		id = row.ID.Int()
	} else if row.InstallmentID != nil {
		id = row.InstallmentID.Int()
	}

	status := strings.ToLower(strings.TrimSpace(row.Status))
	if calculated := strings.ToLower(strings.TrimSpace(row.CalculatedStatus)); calculated != "" {
		status = calculated
	}
	if status == "" {
		status = models.InstallmentPending
	}

	dueDate := row.EndDueDate
	if dueDate == "" {
		dueDate = row.StartDueDate
	}

	return models.FeeInstallment{
		ID:            id,
		InstallmentNo: row.InstallmentNo.Int(),
		Amount:        row.Amount.Float(),
		FineAmount:    row.FineAmount.Float(),
		Status:        status,
		DueDate:       dueDate,
		PaidOn:        row.PaidOn.String(),
	}
}

// MapFeeBreakdown normalizes the per-head breakdown of a fees response.
func MapFeeBreakdown(rows []upstream.FeeBreakdownRow) []models.FeeHead {
	heads := make([]models.FeeHead, 0, len(rows))
	for _, row := range rows {
		installments := make([]models.FeeInstallment, 0, len(row.Installments))
		for _, installment := range row.Installments {
			installments = append(installments, MapInstallment(installment))
		}
		heads = append(heads, models.FeeHead{
			Name:          row.FeeHeadName,
			TotalAmount:   row.TotalAmount.Float(),
			PaidAmount:    row.PaidAmount.Float(),
			PendingAmount: row.PendingAmount.Float(),
			Installments:  installments,
		})
	}
	return heads
}

// MapFeeSummary flattens the summary block.
func MapFeeSummary(row upstream.FeeSummaryRow) models.FeeSummary {
	return models.FeeSummary{
		Total:           row.CurrentYear.Total.Float(),
		Paid:            row.CurrentYear.Paid.Float(),
		Pending:         row.CurrentYear.Pending.Float(),
		Fine:            row.CurrentYear.Fine.Float(),
		PreviousPending: row.PreviousPending.Float(),
		PreviousFine:    row.PreviousFine.Float(),
	}
}

// MapPaymentHistory normalizes past payment entries.
func MapPaymentHistory(rows []upstream.PaymentHistoryRow) []models.PaymentRecord {
	records := make([]models.PaymentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.PaymentRecord{
			ReceiptID:   row.ReceiptID.String(),
			Amount:      row.Amount.Float(),
			PaymentMode: row.PaymentMode,
			PaidOn:      row.PaidOn,
			Remarks:     row.Remarks,
		})
	}
	return records
}

// MapFeeStudents normalizes the all-students listing.
func MapFeeStudents(rows []upstream.FeeStudentRow) []dto.FeeStudent {
	students := make([]dto.FeeStudent, 0, len(rows))
	for _, row := range rows {
		id := row.StudentID.Int()
		name := strings.TrimSpace(row.Name)
		if name == "" {
			name = fmt.Sprintf("Student %d", id)
		}
		students = append(students, dto.FeeStudent{
			StudentID:   id,
			Name:        name,
			ClassName:   row.ClassName,
			SectionName: row.SectionName,
			AdmissionNo: row.AdmissionNo.String(),
			Gender:      row.Gender,
		})
	}
	return students
}

// ResolveExamContext matches the timetable entry whose full
// (timetable, class, section, subject) tuple equals the active selections,
// falling back to a match on timetable id alone. The boolean is false when
// nothing matches.
func ResolveExamContext(entries []upstream.TimetableEntry, timetableID, classID, sectionID, subjectID int) (models.ExamContext, bool) {
	var fallback *upstream.TimetableEntry
	for i := range entries {
		entry := &entries[i]
		if entry.TimetableID.Int() != timetableID {
			continue
		}
		if entry.ClassID.Int() == classID && entry.SectionID.Int() == sectionID && entry.SubjectID.Int() == subjectID {
			return examContextFromEntry(*entry), true
		}
		if fallback == nil {
			fallback = entry
		}
	}
	if fallback != nil {
		return examContextFromEntry(*fallback), true
	}
	return models.ExamContext{}, false
}

func examContextFromEntry(entry upstream.TimetableEntry) models.ExamContext {
	maxMarks := entry.MaxMarks.Int()
	if maxMarks <= 0 {
		maxMarks = models.DefaultMaxMarks
	}
	minPass := entry.MinPassingMarks.Int()
	if minPass <= 0 {
		minPass = models.DefaultMinPass
	}
	return models.ExamContext{
		TimetableID: entry.TimetableID.Int(),
		MaxMarks:    maxMarks,
		MinPass:     minPass,
		ExamDate:    entry.ExamDate,
		StartTime:   entry.StartTime,
		EndTime:     entry.EndTime,
		SubjectName: entry.SubjectName,
		RoomNo:      entry.RoomNo.String(),
	}
}
