package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
	"github.com/noah-isme/sma-admin-gateway/internal/service"
)

// stubFeeService implements service.FeeService with canned responses.
type stubFeeService struct {
	students []dto.FeeStudent
	session  dto.FeeSessionResponse
	receipt  dto.PaymentReceiptResponse
	err      error
}

func (s *stubFeeService) ListStudents(ctx context.Context) ([]dto.FeeStudent, error) {
	return s.students, s.err
}

func (s *stubFeeService) StartSession(ctx context.Context, payload dto.StartFeeSessionRequest) (dto.FeeSessionResponse, error) {
	return s.session, s.err
}

func (s *stubFeeService) GetSession(ctx context.Context, id string) (dto.FeeSessionResponse, error) {
	return s.session, s.err
}

func (s *stubFeeService) DiscardSession(ctx context.Context, id string) error {
	return s.err
}

func (s *stubFeeService) ToggleInstallment(ctx context.Context, sessionID string, payload dto.SelectInstallmentRequest) (dto.FeeSessionResponse, error) {
	return s.session, s.err
}

func (s *stubFeeService) Collect(ctx context.Context, sessionID string, payload dto.CollectFeePaymentRequest) (dto.PaymentReceiptResponse, error) {
	return s.receipt, s.err
}

func newFeesTestApp(svc service.FeeService) *fiber.App {
	app := fiber.New()
	handler := NewFeesHandler(svc, zerolog.Nop())
	handler.Register(app.Group("/api/v1/fees"))
	return app
}

func TestFeeStudentsEndpoint(t *testing.T) {
	svc := &stubFeeService{students: []dto.FeeStudent{
		{StudentID: 12, Name: "Asha", ClassName: "Class 2", SectionName: "A"},
	}}
	app := newFeesTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/fees/students", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	success, _, data := decodeEnvelope(t, resp)
	require.True(t, success)

	var students []dto.FeeStudent
	require.NoError(t, json.Unmarshal(data, &students))
	require.Len(t, students, 1)
	require.Equal(t, "Asha", students[0].Name)
}

func TestStartFeeSessionEndpoint(t *testing.T) {
	svc := &stubFeeService{session: dto.FeeSessionResponse{
		ID:        "fee-1",
		StudentID: 12,
		Totals:    models.SelectionTotals{},
		Empty:     true,
		Version:   1,
	}}
	app := newFeesTestApp(svc)

	payload := bytes.NewBufferString(`{"student_id":12,"academic_year":"2025-2026"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fees/sessions", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, _, data := decodeEnvelope(t, resp)
	var session dto.FeeSessionResponse
	require.NoError(t, json.Unmarshal(data, &session))
	require.True(t, session.Empty)
}

func TestCollectEndpointReturnsReceipt(t *testing.T) {
	svc := &stubFeeService{receipt: dto.PaymentReceiptResponse{ReceiptID: "RCPT-9"}}
	app := newFeesTestApp(svc)

	payload := bytes.NewBufferString(`{"payment_mode":"cash","version":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fees/sessions/fee-1/collect", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, _, data := decodeEnvelope(t, resp)
	var receipt dto.PaymentReceiptResponse
	require.NoError(t, json.Unmarshal(data, &receipt))
	require.Equal(t, "RCPT-9", receipt.ReceiptID)
}

func TestFeeErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrInstallmentNotFound, http.StatusNotFound},
		{service.ErrInstallmentAlreadyPaid, http.StatusConflict},
		{service.ErrSessionConflict, http.StatusConflict},
		{service.ErrEmptySelection, http.StatusBadRequest},
		{service.ErrTransactionRefRequired, http.StatusBadRequest},
	}

	for _, tc := range cases {
		app := newFeesTestApp(&stubFeeService{err: tc.err})
		payload := bytes.NewBufferString(`{"payment_mode":"cash"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fees/sessions/fee-1/collect", payload)
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, "error %v", tc.err)
	}
}
