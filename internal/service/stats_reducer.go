package service

import (
	"fmt"

	"github.com/noah-isme/sma-admin-gateway/internal/models"
)

// The reducers always recompute from the full record set. Nothing is patched
// incrementally, so a session can never drift from its records.

// ComputeMarkStats summarises a mark-entry record set against the exam's
// maximum marks.
func ComputeMarkStats(records []models.StudentMark, maxMarks int) models.MarkStats {
	stats := models.MarkStats{Total: len(records), Average: "0.0"}
	sum := 0
	for _, record := range records {
		if record.IsAbsent {
			stats.Absent++
			continue
		}
		stats.Present++
		sum += record.Marks
	}
	if stats.Present > 0 && maxMarks > 0 {
		average := float64(sum) / float64(stats.Present*maxMarks) * 100
		stats.Average = fmt.Sprintf("%.1f", average)
	}
	return stats
}

// ComputeMarkListStats summarises the read-only marks list with a
// pass/fail/absent partition. The average historically divides by a fixed
// 100-point scale even when max_marks varies per record; perRecordMax swaps
// in each record's own maximum instead.
func ComputeMarkListStats(entries []models.MarkListEntry, perRecordMax bool) models.MarkListStats {
	stats := models.MarkListStats{Total: len(entries), Average: "0.0"}
	var sum float64
	present := 0
	for _, entry := range entries {
		switch entry.Status {
		case models.StatusPass:
			stats.Pass++
		case models.StatusFail:
			stats.Fail++
		default:
			stats.Absent++
		}
		if entry.IsAbsent {
			continue
		}
		present++
		if perRecordMax && entry.MaxMarks > 0 {
			sum += float64(entry.Marks) / float64(entry.MaxMarks) * 100
		} else {
			sum += float64(entry.Marks)
		}
	}
	if present > 0 {
		stats.Average = fmt.Sprintf("%.1f", sum/float64(present))
	}
	return stats
}
