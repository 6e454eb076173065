package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
	"github.com/noah-isme/sma-admin-gateway/internal/repository"
	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
)

// ErrSessionConflict indicates a mutation carried a stale session version.
// The screen that issued it is no longer looking at the current state.
var ErrSessionConflict = errors.New("session version conflict")

// ErrExamNotFound indicates no timetable entry matched the selected filters.
var ErrExamNotFound = errors.New("no exam matches the selected filters")

// ErrStudentNotInSession indicates a mutation targeted an unknown student.
var ErrStudentNotInSession = errors.New("student not part of this session")

// ErrEmptyRoster indicates the selected class and section have no students.
var ErrEmptyRoster = errors.New("no students found for the selected class and section")

// UnscoredRecordsError aborts a bulk save: present students still have zero
// marks. No submission is attempted while any remain.
type UnscoredRecordsError struct {
	Count int
}

func (e *UnscoredRecordsError) Error() string {
	return fmt.Sprintf("%d students have no marks entered", e.Count)
}

// MarkEntryService drives the mark-entry screen: filter lookups, the
// session-owned record set, its mutations, and the bulk save.
type MarkEntryService interface {
	LoadFilters(ctx context.Context) (dto.FilterOptions, error)
	ListSections(ctx context.Context, classID int) ([]dto.Option, error)
	StartSession(ctx context.Context, payload dto.StartMarkSessionRequest) (dto.MarkSessionResponse, error)
	GetSession(ctx context.Context, id string) (dto.MarkSessionResponse, error)
	DiscardSession(ctx context.Context, id string) error
	SetMarks(ctx context.Context, sessionID string, payload dto.SetMarksRequest) (dto.MarkSessionResponse, error)
	ToggleAbsent(ctx context.Context, sessionID string, payload dto.ToggleAbsentRequest) (dto.MarkSessionResponse, error)
	SetRemark(ctx context.Context, sessionID string, payload dto.SetRemarkRequest) (dto.MarkSessionResponse, error)
	SaveAll(ctx context.Context, sessionID string) (dto.BulkSaveResult, error)
}

type markEntryService struct {
	backend   upstream.Client
	sessions  repository.SessionStore
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewMarkEntryService constructs the mark-entry service.
func NewMarkEntryService(backend upstream.Client, sessions repository.SessionStore, validator *validator.Validate, logger zerolog.Logger) MarkEntryService {
	return &markEntryService{
		backend:   backend,
		sessions:  sessions,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "mark_entry_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/sma-admin-gateway/internal/service/mark_entry"),
		now:       time.Now,
	}
}

// LoadFilters fetches the timetable, class, and subject lookups concurrently
// and joins them before the filter bar renders.
func (s *markEntryService) LoadFilters(ctx context.Context) (dto.FilterOptions, error) {
	var (
		wg        sync.WaitGroup
		timetable []upstream.TimetableEntry
		classes   []upstream.ClassRow
		subjects  []upstream.SubjectRow
		errs      [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		timetable, errs[0] = s.backend.ListTimetable(ctx)
	}()
	go func() {
		defer wg.Done()
		classes, errs[1] = s.backend.ListClasses(ctx)
	}()
	go func() {
		defer wg.Done()
		subjects, errs[2] = s.backend.ListSubjects(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return dto.FilterOptions{}, err
		}
	}

	options := dto.FilterOptions{
		Timetable: make([]dto.TimetableOption, 0, len(timetable)),
		Classes:   make([]dto.Option, 0, len(classes)),
		Subjects:  make([]dto.Option, 0, len(subjects)),
	}
	for _, entry := range timetable {
		options.Timetable = append(options.Timetable, dto.TimetableOption{
			TimetableID: entry.TimetableID.Int(),
			ClassID:     entry.ClassID.Int(),
			SectionID:   entry.SectionID.Int(),
			SubjectID:   entry.SubjectID.Int(),
			SubjectName: entry.SubjectName,
			ExamDate:    entry.ExamDate,
		})
	}
	for _, row := range classes {
		options.Classes = append(options.Classes, dto.Option{ID: row.ClassID.Int(), Name: row.ClassName})
	}
	for _, row := range subjects {
		options.Subjects = append(options.Subjects, dto.Option{ID: row.SubjectID.Int(), Name: row.SubjectName})
	}
	return options, nil
}

func (s *markEntryService) ListSections(ctx context.Context, classID int) ([]dto.Option, error) {
	rows, err := s.backend.ListSections(ctx, classID)
	if err != nil {
		return nil, err
	}
	sections := make([]dto.Option, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, dto.Option{ID: row.SectionID.Int(), Name: row.SectionName})
	}
	return sections, nil
}

func (s *markEntryService) StartSession(ctx context.Context, payload dto.StartMarkSessionRequest) (dto.MarkSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarkSessionResponse{}, err
	}

	timetable, err := s.backend.ListTimetable(ctx)
	if err != nil {
		return dto.MarkSessionResponse{}, err
	}

	examContext, ok := ResolveExamContext(timetable, payload.TimetableID, payload.ClassID, payload.SectionID, payload.SubjectID)
	if !ok {
		return dto.MarkSessionResponse{}, ErrExamNotFound
	}

	roster, err := s.backend.ListStudents(ctx, payload.ClassID, payload.SectionID)
	if err != nil {
		return dto.MarkSessionResponse{}, err
	}
	if len(roster) == 0 {
		return dto.MarkSessionResponse{}, ErrEmptyRoster
	}

	records := MapRosterToMarks(roster)
	session := models.MarkSession{
		ID:        uuid.NewString(),
		ClassID:   payload.ClassID,
		SectionID: payload.SectionID,
		SubjectID: payload.SubjectID,
		Context:   examContext,
		Records:   records,
		Stats:     ComputeMarkStats(records, examContext.MaxMarks),
		Version:   1,
		CreatedAt: s.now(),
	}

	if err := s.sessions.SaveMarkSession(ctx, &session); err != nil {
		return dto.MarkSessionResponse{}, err
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Int("timetable_id", examContext.TimetableID).
		Int("students", len(records)).
		Msg("mark entry session started")

	return dto.NewMarkSessionResponse(session), nil
}

func (s *markEntryService) GetSession(ctx context.Context, id string) (dto.MarkSessionResponse, error) {
	session, err := s.sessions.GetMarkSession(ctx, id)
	if err != nil {
		return dto.MarkSessionResponse{}, err
	}
	return dto.NewMarkSessionResponse(session), nil
}

func (s *markEntryService) DiscardSession(ctx context.Context, id string) error {
	return s.sessions.DeleteMarkSession(ctx, id)
}

// mutate loads the session, checks the optimistic version, applies fn, then
// recomputes stats and bumps the version before persisting. A stale screen
// gets ErrSessionConflict instead of silently clobbering newer state.
func (s *markEntryService) mutate(ctx context.Context, sessionID string, version int, fn func(*models.MarkSession) (bool, error)) (dto.MarkSessionResponse, error) {
	session, err := s.sessions.GetMarkSession(ctx, sessionID)
	if err != nil {
		return dto.MarkSessionResponse{}, err
	}
	if version != 0 && version != session.Version {
		return dto.MarkSessionResponse{}, ErrSessionConflict
	}

	changed, err := fn(&session)
	if err != nil {
		return dto.MarkSessionResponse{}, err
	}
	if !changed {
		return dto.NewMarkSessionResponse(session), nil
	}

	session.Stats = ComputeMarkStats(session.Records, session.Context.MaxMarks)
	session.Version++

	if err := s.sessions.SaveMarkSession(ctx, &session); err != nil {
		return dto.MarkSessionResponse{}, err
	}
	return dto.NewMarkSessionResponse(session), nil
}

// SetMarks parses the raw input, clamps it into [0, maxMarks], and rederives
// the record's status. Non-numeric input coerces to zero. Input is disabled
// while a student is marked absent, so the value is ignored then.
func (s *markEntryService) SetMarks(ctx context.Context, sessionID string, payload dto.SetMarksRequest) (dto.MarkSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarkSessionResponse{}, err
	}
	return s.mutate(ctx, sessionID, payload.Version, func(session *models.MarkSession) (bool, error) {
		record := session.FindRecord(payload.StudentID)
		if record == nil {
			return false, ErrStudentNotInSession
		}
		if record.IsAbsent {
			return false, nil
		}
		record.Marks = clampMarks(payload.Value, session.Context.MaxMarks)
		record.Status = models.DeriveStatus(record.Marks, record.IsAbsent, session.Context.MinPass)
		return true, nil
	})
}

// ToggleAbsent flips the absent flag. Becoming absent forces marks to zero.
func (s *markEntryService) ToggleAbsent(ctx context.Context, sessionID string, payload dto.ToggleAbsentRequest) (dto.MarkSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarkSessionResponse{}, err
	}
	return s.mutate(ctx, sessionID, payload.Version, func(session *models.MarkSession) (bool, error) {
		record := session.FindRecord(payload.StudentID)
		if record == nil {
			return false, ErrStudentNotInSession
		}
		record.IsAbsent = !record.IsAbsent
		if record.IsAbsent {
			record.Marks = 0
		}
		record.Status = models.DeriveStatus(record.Marks, record.IsAbsent, session.Context.MinPass)
		return true, nil
	})
}

// SetRemark replaces the remark text. Remarks are not applied to absent
// students; their remark cell shows a fixed ABSENT label instead.
func (s *markEntryService) SetRemark(ctx context.Context, sessionID string, payload dto.SetRemarkRequest) (dto.MarkSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarkSessionResponse{}, err
	}
	return s.mutate(ctx, sessionID, payload.Version, func(session *models.MarkSession) (bool, error) {
		record := session.FindRecord(payload.StudentID)
		if record == nil {
			return false, ErrStudentNotInSession
		}
		if record.IsAbsent {
			return false, nil
		}
		record.Remark = s.sanitizer.Sanitize(payload.Remark)
		return true, nil
	})
}

// SaveAll submits one creation request per record, sequentially, collecting
// each outcome independently. A failed record never aborts the rest, and no
// record is retried.
func (s *markEntryService) SaveAll(ctx context.Context, sessionID string) (dto.BulkSaveResult, error) {
	ctx, span := s.tracer.Start(ctx, "marks.save_all")
	defer span.End()

	session, err := s.sessions.GetMarkSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session_lookup_failed")
		return dto.BulkSaveResult{}, err
	}

	span.SetAttributes(
		attribute.Int("marks.timetable_id", session.Context.TimetableID),
		attribute.Int("marks.records", len(session.Records)),
	)

	unscored := 0
	for _, record := range session.Records {
		if !record.IsAbsent && record.Marks == 0 {
			unscored++
		}
	}
	if unscored > 0 {
		err := &UnscoredRecordsError{Count: unscored}
		span.RecordError(err)
		span.SetStatus(codes.Error, "unscored_records")
		return dto.BulkSaveResult{}, err
	}

	results := make([]dto.MarkSaveOutcome, 0, len(session.Records))
	failures := make([]dto.MarkSaveOutcome, 0)

	for _, record := range session.Records {
		marks := record.Marks
		if record.IsAbsent {
			marks = 0
		}
		payload := upstream.CreateMarkRequest{
			TimetableID:   session.Context.TimetableID,
			StudentID:     record.StudentID,
			MarksObtained: marks,
			IsAbsent:      record.IsAbsent,
			Remarks:       record.Remark,
		}

		created, err := s.backend.CreateMark(ctx, payload)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("student_id", record.StudentID).
				Str("session_id", session.ID).
				Msg("failed to save mark")
			failures = append(failures, dto.MarkSaveOutcome{StudentID: record.StudentID, Error: err.Error()})
			continue
		}
		results = append(results, dto.MarkSaveOutcome{StudentID: record.StudentID, MarkID: created.MarkID.Int()})
	}

	result := dto.BulkSaveResult{
		Success: len(failures) == 0,
		Results: results,
		Errors:  failures,
	}
	if result.Success {
		result.Message = fmt.Sprintf("All %d marks saved", len(results))
	} else {
		result.Message = fmt.Sprintf("Saved %d, Failed %d", len(results), len(failures))
	}

	span.SetAttributes(
		attribute.Int("marks.saved", len(results)),
		attribute.Int("marks.failed", len(failures)),
	)

	s.logger.Info().
		Str("session_id", session.ID).
		Int("saved", len(results)).
		Int("failed", len(failures)).
		Msg("bulk mark save finished")

	return result, nil
}

// clampMarks parses raw user input into an integer within [0, maxMarks].
func clampMarks(raw string, maxMarks int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	if parsed < 0 {
		return 0
	}
	if maxMarks > 0 && parsed > maxMarks {
		return maxMarks
	}
	return parsed
}
