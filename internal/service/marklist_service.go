package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
)

// MarkListFilter narrows and searches the stored marks listing. Search is
// applied in memory against name and roll number after the fetch.
type MarkListFilter struct {
	ClassID   int
	SectionID int
	SubjectID int
	ExamType  string
	Search    string
}

// MarkListService serves the read-only marks listing and its CSV export.
type MarkListService interface {
	List(ctx context.Context, filter MarkListFilter) (dto.MarkListResponse, error)
	ExportCSV(ctx context.Context, filter MarkListFilter) ([]byte, error)
}

type markListService struct {
	backend      upstream.Client
	perRecordMax bool
	logger       zerolog.Logger
}

// NewMarkListService constructs the listing service. perRecordMax switches
// the average from the historical fixed 100-point divisor to each record's
// own maximum.
func NewMarkListService(backend upstream.Client, perRecordMax bool, logger zerolog.Logger) MarkListService {
	return &markListService{
		backend:      backend,
		perRecordMax: perRecordMax,
		logger:       logger.With().Str("component", "mark_list_service").Logger(),
	}
}

func (s *markListService) List(ctx context.Context, filter MarkListFilter) (dto.MarkListResponse, error) {
	rows, err := s.backend.ListMarks(ctx, upstream.MarkFilter{
		ClassID:   filter.ClassID,
		SectionID: filter.SectionID,
		SubjectID: filter.SubjectID,
		ExamType:  filter.ExamType,
	})
	if err != nil {
		return dto.MarkListResponse{}, err
	}

	entries := MapMarkRows(rows)
	entries = filterEntries(entries, filter.Search)

	return dto.MarkListResponse{
		Entries: entries,
		Stats:   ComputeMarkListStats(entries, s.perRecordMax),
	}, nil
}

// ExportCSV renders the filtered records as a CSV download. String columns
// are always quoted, numeric columns never are, matching the historical
// export format.
func (s *markListService) ExportCSV(ctx context.Context, filter MarkListFilter) ([]byte, error) {
	listing, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.WriteString("roll_no,name,marks,max_marks,status,remarks\n")
	for _, entry := range listing.Entries {
		builder.WriteString(fmt.Sprintf("%q,%q,%d,%d,%q,%q\n",
			entry.RollNo,
			entry.Name,
			entry.Marks,
			entry.MaxMarks,
			entry.Status,
			entry.Remarks,
		))
	}
	return []byte(builder.String()), nil
}

func filterEntries(entries []models.MarkListEntry, search string) []models.MarkListEntry {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return entries
	}
	filtered := make([]models.MarkListEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), term) || strings.Contains(strings.ToLower(entry.RollNo), term) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
