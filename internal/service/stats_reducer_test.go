package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-gateway/internal/models"
)

func TestComputeMarkStats(t *testing.T) {
	records := []models.StudentMark{
		{StudentID: 1, Marks: 40, Status: models.StatusPass},
		{StudentID: 2, Marks: 10, Status: models.StatusFail},
		{StudentID: 3, IsAbsent: true, Status: models.StatusAbsent},
	}

	stats := ComputeMarkStats(records, 50)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 2, stats.Present)
	require.Equal(t, 1, stats.Absent)
	require.Equal(t, "50.0", stats.Average)

	// Recomputing over the same records always yields the same summary.
	require.Equal(t, stats, ComputeMarkStats(records, 50))
}

func TestComputeMarkStatsEmpty(t *testing.T) {
	stats := ComputeMarkStats(nil, 100)
	require.Equal(t, 0, stats.Total)
	require.Equal(t, "0.0", stats.Average)
}

func TestComputeMarkStatsAllAbsent(t *testing.T) {
	records := []models.StudentMark{
		{StudentID: 1, IsAbsent: true, Status: models.StatusAbsent},
		{StudentID: 2, IsAbsent: true, Status: models.StatusAbsent},
	}
	stats := ComputeMarkStats(records, 100)
	require.Equal(t, 2, stats.Absent)
	require.Equal(t, 0, stats.Present)
	require.Equal(t, "0.0", stats.Average)
}

func TestComputeMarkListStatsFixedScale(t *testing.T) {
	entries := []models.MarkListEntry{
		{Marks: 40, MaxMarks: 50, Status: models.StatusPass},
		{Marks: 10, MaxMarks: 50, Status: models.StatusFail},
		{IsAbsent: true, MaxMarks: 50, Status: models.StatusAbsent},
	}

	// Historical behavior: raw marks averaged against a 100-point scale.
	stats := ComputeMarkListStats(entries, false)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.Pass)
	require.Equal(t, 1, stats.Fail)
	require.Equal(t, 1, stats.Absent)
	require.Equal(t, "25.0", stats.Average)
}

func TestComputeMarkListStatsPerRecordMax(t *testing.T) {
	entries := []models.MarkListEntry{
		{Marks: 40, MaxMarks: 50, Status: models.StatusPass},
		{Marks: 10, MaxMarks: 50, Status: models.StatusFail},
	}
	stats := ComputeMarkListStats(entries, true)
	require.Equal(t, "50.0", stats.Average)
}

func TestDeriveStatusRule(t *testing.T) {
	require.Equal(t, models.StatusAbsent, models.DeriveStatus(50, true, 33))
	require.Equal(t, models.StatusAbsent, models.DeriveStatus(0, false, 33))
	require.Equal(t, models.StatusPass, models.DeriveStatus(33, false, 33))
	require.Equal(t, models.StatusPass, models.DeriveStatus(100, false, 33))
	require.Equal(t, models.StatusFail, models.DeriveStatus(32, false, 33))
	require.Equal(t, models.StatusFail, models.DeriveStatus(1, false, 33))
}
