package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
)

func testMarkRows() []upstream.MarkRow {
	return []upstream.MarkRow{
		{MarkID: 1, StudentID: 1, StudentName: "Asha", RollNo: "101", MarksObtained: 88, MaxMarks: 100, MinPass: 33, Remarks: "Good"},
		{MarkID: 2, StudentID: 2, StudentName: "Bilal", RollNo: "102", MarksObtained: 20, MaxMarks: 100, MinPass: 33},
		{MarkID: 3, StudentID: 3, StudentName: "Chitra", RollNo: "103", IsAbsent: true, MaxMarks: 100, MinPass: 33},
	}
}

func TestListComputesStats(t *testing.T) {
	backend := &fakeBackend{marks: testMarkRows()}
	svc := NewMarkListService(backend, false, testLogger())

	listing, err := svc.List(context.Background(), MarkListFilter{ClassID: 2, SectionID: 5, SubjectID: 9})
	require.NoError(t, err)

	require.Len(t, listing.Entries, 3)
	require.Equal(t, 3, listing.Stats.Total)
	require.Equal(t, 1, listing.Stats.Pass)
	require.Equal(t, 1, listing.Stats.Fail)
	require.Equal(t, 1, listing.Stats.Absent)
	require.Equal(t, "54.0", listing.Stats.Average)
}

func TestListSearchMatchesNameAndRoll(t *testing.T) {
	backend := &fakeBackend{marks: testMarkRows()}
	svc := NewMarkListService(backend, false, testLogger())
	ctx := context.Background()

	byName, err := svc.List(ctx, MarkListFilter{Search: "asha"})
	require.NoError(t, err)
	require.Len(t, byName.Entries, 1)
	require.Equal(t, "Asha", byName.Entries[0].Name)

	byRoll, err := svc.List(ctx, MarkListFilter{Search: "102"})
	require.NoError(t, err)
	require.Len(t, byRoll.Entries, 1)
	require.Equal(t, "Bilal", byRoll.Entries[0].Name)

	none, err := svc.List(ctx, MarkListFilter{Search: "zzz"})
	require.NoError(t, err)
	require.Empty(t, none.Entries)

	// Search narrows the stats too.
	require.Equal(t, 1, byName.Stats.Total)
	require.Equal(t, 0, none.Stats.Total)
	require.Equal(t, "0.0", none.Stats.Average)
}

func TestExportCSVFormat(t *testing.T) {
	backend := &fakeBackend{marks: testMarkRows()}
	svc := NewMarkListService(backend, false, testLogger())

	data, err := svc.ExportCSV(context.Background(), MarkListFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "roll_no,name,marks,max_marks,status,remarks", lines[0])
	require.Equal(t, `"101","Asha",88,100,"PASS","Good"`, lines[1])
	require.Equal(t, `"102","Bilal",20,100,"FAIL",""`, lines[2])
	require.Equal(t, `"103","Chitra",0,100,"ABSENT",""`, lines[3])
}

func TestExportCSVEscapesQuotes(t *testing.T) {
	backend := &fakeBackend{marks: []upstream.MarkRow{
		{MarkID: 1, StudentID: 1, StudentName: `Ravi "RJ" Joshi`, RollNo: "104", MarksObtained: 40, MaxMarks: 100, MinPass: 33},
	}}
	svc := NewMarkListService(backend, false, testLogger())

	data, err := svc.ExportCSV(context.Background(), MarkListFilter{})
	require.NoError(t, err)
	require.Contains(t, string(data), `"Ravi \"RJ\" Joshi"`)
}
