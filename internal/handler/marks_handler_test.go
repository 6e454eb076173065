package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
	"github.com/noah-isme/sma-admin-gateway/internal/repository"
	"github.com/noah-isme/sma-admin-gateway/internal/service"
	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
)

// stubMarkEntry implements service.MarkEntryService with canned responses.
type stubMarkEntry struct {
	session    dto.MarkSessionResponse
	saveResult dto.BulkSaveResult
	err        error
}

func (s *stubMarkEntry) LoadFilters(ctx context.Context) (dto.FilterOptions, error) {
	return dto.FilterOptions{Classes: []dto.Option{{ID: 2, Name: "Class 2"}}}, s.err
}

func (s *stubMarkEntry) ListSections(ctx context.Context, classID int) ([]dto.Option, error) {
	return []dto.Option{{ID: 5, Name: "A"}}, s.err
}

func (s *stubMarkEntry) StartSession(ctx context.Context, payload dto.StartMarkSessionRequest) (dto.MarkSessionResponse, error) {
	return s.session, s.err
}

func (s *stubMarkEntry) GetSession(ctx context.Context, id string) (dto.MarkSessionResponse, error) {
	return s.session, s.err
}

func (s *stubMarkEntry) DiscardSession(ctx context.Context, id string) error {
	return s.err
}

func (s *stubMarkEntry) SetMarks(ctx context.Context, sessionID string, payload dto.SetMarksRequest) (dto.MarkSessionResponse, error) {
	return s.session, s.err
}

func (s *stubMarkEntry) ToggleAbsent(ctx context.Context, sessionID string, payload dto.ToggleAbsentRequest) (dto.MarkSessionResponse, error) {
	return s.session, s.err
}

func (s *stubMarkEntry) SetRemark(ctx context.Context, sessionID string, payload dto.SetRemarkRequest) (dto.MarkSessionResponse, error) {
	return s.session, s.err
}

func (s *stubMarkEntry) SaveAll(ctx context.Context, sessionID string) (dto.BulkSaveResult, error) {
	return s.saveResult, s.err
}

// stubMarkList implements service.MarkListService.
type stubMarkList struct {
	listing dto.MarkListResponse
	csv     []byte
	err     error
}

func (s *stubMarkList) List(ctx context.Context, filter service.MarkListFilter) (dto.MarkListResponse, error) {
	return s.listing, s.err
}

func (s *stubMarkList) ExportCSV(ctx context.Context, filter service.MarkListFilter) ([]byte, error) {
	return s.csv, s.err
}

func newMarksTestApp(entry service.MarkEntryService, list service.MarkListService) *fiber.App {
	app := fiber.New()
	handler := NewMarksHandler(entry, list, zerolog.Nop())
	handler.Register(app.Group("/api/v1/marks"))
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) (bool, string, json.RawMessage) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Success, envelope.Message, envelope.Data
}

func TestStartMarkSessionEndpoint(t *testing.T) {
	entry := &stubMarkEntry{session: dto.MarkSessionResponse{
		ID:      "sess-1",
		Context: models.ExamContext{TimetableID: 7, MaxMarks: 50, MinPass: 20},
		Version: 1,
	}}
	app := newMarksTestApp(entry, &stubMarkList{})

	payload := bytes.NewBufferString(`{"timetable_id":7,"class_id":2,"section_id":5,"subject_id":9}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/marks/sessions", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	success, _, data := decodeEnvelope(t, resp)
	require.True(t, success)

	var session dto.MarkSessionResponse
	require.NoError(t, json.Unmarshal(data, &session))
	require.Equal(t, "sess-1", session.ID)
	require.Equal(t, 50, session.Context.MaxMarks)
}

func TestStartMarkSessionInvalidBody(t *testing.T) {
	app := newMarksTestApp(&stubMarkEntry{}, &stubMarkList{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/marks/sessions", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSectionsRequiresClassID(t *testing.T) {
	app := newMarksTestApp(&stubMarkEntry{}, &stubMarkList{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/marks/sections", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/marks/sections?class_id=2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSaveAllConveysResultMessage(t *testing.T) {
	entry := &stubMarkEntry{saveResult: dto.BulkSaveResult{
		Success: false,
		Results: []dto.MarkSaveOutcome{{StudentID: 1, MarkID: 10}},
		Errors:  []dto.MarkSaveOutcome{{StudentID: 3, Error: "network error"}},
		Message: "Saved 1, Failed 1",
	}}
	app := newMarksTestApp(entry, &stubMarkList{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/marks/sessions/sess-1/save", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, message, data := decodeEnvelope(t, resp)
	require.Equal(t, "Saved 1, Failed 1", message)

	var result dto.BulkSaveResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
}

func TestSaveAllUnscoredRecordsBadRequest(t *testing.T) {
	entry := &stubMarkEntry{err: &service.UnscoredRecordsError{Count: 3}}
	app := newMarksTestApp(entry, &stubMarkList{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/marks/sessions/sess-1/save", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	success, message, _ := decodeEnvelope(t, resp)
	require.False(t, success)
	require.Equal(t, "3 students have no marks entered", message)
}

func TestMarkErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{repository.ErrSessionNotFound, http.StatusNotFound},
		{service.ErrExamNotFound, http.StatusNotFound},
		{service.ErrEmptyRoster, http.StatusNotFound},
		{service.ErrStudentNotInSession, http.StatusNotFound},
		{service.ErrSessionConflict, http.StatusConflict},
		{upstream.ErrMissingToken, http.StatusBadGateway},
		{&upstream.Error{StatusCode: 500, Message: "backend down"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := newMarksTestApp(&stubMarkEntry{err: tc.err}, &stubMarkList{})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/marks/sessions/sess-1", nil))
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, "error %v", tc.err)
	}
}

func TestExportCSVHeaders(t *testing.T) {
	list := &stubMarkList{csv: []byte("roll_no,name,marks,max_marks,status,remarks\n")}
	app := newMarksTestApp(&stubMarkEntry{}, list)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/marks/list/export", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "marks.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, list.csv, body)
}

func TestListMarksRejectsBadQuery(t *testing.T) {
	app := newMarksTestApp(&stubMarkEntry{}, &stubMarkList{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/marks/list?class_id=abc", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
