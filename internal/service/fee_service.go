package service

import (
	"context"
	"errors"
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

// ErrInstallmentAlreadyPaid indicates an attempt to select a settled
// installment. Paid installments can never enter the selection.
var ErrInstallmentAlreadyPaid = errors.New("installment is already paid")

// ErrInstallmentNotFound indicates the installment is not part of the
// session's breakdown.
var ErrInstallmentNotFound = errors.New("installment not found")

// ErrEmptySelection indicates a collection attempt with nothing selected.
var ErrEmptySelection = errors.New("no installments selected")

// ErrTransactionRefRequired indicates a non-cash payment without a
// transaction reference.
var ErrTransactionRefRequired = errors.New("transaction reference is required for non-cash payments")

// PaymentModeCash is the only mode that requires no transaction reference.
const PaymentModeCash = "cash"

// FeeService drives the fee-collection screen: the student picker, the
// per-student fee session, installment selection, and payment collection.
type FeeService interface {
	ListStudents(ctx context.Context) ([]dto.FeeStudent, error)
	StartSession(ctx context.Context, payload dto.StartFeeSessionRequest) (dto.FeeSessionResponse, error)
	GetSession(ctx context.Context, id string) (dto.FeeSessionResponse, error)
	DiscardSession(ctx context.Context, id string) error
	ToggleInstallment(ctx context.Context, sessionID string, payload dto.SelectInstallmentRequest) (dto.FeeSessionResponse, error)
	Collect(ctx context.Context, sessionID string, payload dto.CollectFeePaymentRequest) (dto.PaymentReceiptResponse, error)
}

type feeService struct {
	backend   upstream.Client
	sessions  repository.SessionStore
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewFeeService constructs the fee-collection service.
func NewFeeService(backend upstream.Client, sessions repository.SessionStore, validator *validator.Validate, logger zerolog.Logger) FeeService {
	return &feeService{
		backend:   backend,
		sessions:  sessions,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "fee_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/sma-admin-gateway/internal/service/fees"),
		now:       time.Now,
	}
}

func (s *feeService) ListStudents(ctx context.Context) ([]dto.FeeStudent, error) {
	rows, err := s.backend.ListAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	return MapFeeStudents(rows), nil
}

// StartSession fetches the student's fee position for the year. A student
// with no fee records yields an empty session, not an error.
func (s *feeService) StartSession(ctx context.Context, payload dto.StartFeeSessionRequest) (dto.FeeSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeeSessionResponse{}, err
	}

	data, err := s.backend.GetStudentFees(ctx, payload.StudentID, payload.AcademicYear)
	if err != nil {
		return dto.FeeSessionResponse{}, err
	}

	session := models.FeeSession{
		ID:           uuid.NewString(),
		StudentID:    payload.StudentID,
		AcademicYear: payload.AcademicYear,
		Heads:        MapFeeBreakdown(data.FeeBreakdown),
		Summary:      MapFeeSummary(data.Summary),
		History:      MapPaymentHistory(data.PaymentHistory),
		SelectedIDs:  []int{},
		Version:      1,
		CreatedAt:    s.now(),
	}

	if err := s.sessions.SaveFeeSession(ctx, &session); err != nil {
		return dto.FeeSessionResponse{}, err
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Int("student_id", session.StudentID).
		Str("academic_year", session.AcademicYear).
		Int("heads", len(session.Heads)).
		Msg("fee session started")

	return dto.NewFeeSessionResponse(session), nil
}

func (s *feeService) GetSession(ctx context.Context, id string) (dto.FeeSessionResponse, error) {
	session, err := s.sessions.GetFeeSession(ctx, id)
	if err != nil {
		return dto.FeeSessionResponse{}, err
	}
	return dto.NewFeeSessionResponse(session), nil
}

func (s *feeService) DiscardSession(ctx context.Context, id string) error {
	return s.sessions.DeleteFeeSession(ctx, id)
}

// ToggleInstallment adds or removes an installment from the selection. Paid
// installments are rejected outright.
func (s *feeService) ToggleInstallment(ctx context.Context, sessionID string, payload dto.SelectInstallmentRequest) (dto.FeeSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeeSessionResponse{}, err
	}

	session, err := s.sessions.GetFeeSession(ctx, sessionID)
	if err != nil {
		return dto.FeeSessionResponse{}, err
	}
	if payload.Version != 0 && payload.Version != session.Version {
		return dto.FeeSessionResponse{}, ErrSessionConflict
	}

	installment := session.FindInstallment(payload.InstallmentID)
	if installment == nil {
		return dto.FeeSessionResponse{}, ErrInstallmentNotFound
	}

	if session.IsSelected(payload.InstallmentID) {
		selected := make([]int, 0, len(session.SelectedIDs)-1)
		for _, id := range session.SelectedIDs {
			if id != payload.InstallmentID {
				selected = append(selected, id)
			}
		}
		session.SelectedIDs = selected
	} else {
		if installment.Status == models.InstallmentPaid {
			return dto.FeeSessionResponse{}, ErrInstallmentAlreadyPaid
		}
		session.SelectedIDs = append(session.SelectedIDs, payload.InstallmentID)
	}

	session.Version++
	if err := s.sessions.SaveFeeSession(ctx, &session); err != nil {
		return dto.FeeSessionResponse{}, err
	}
	return dto.NewFeeSessionResponse(session), nil
}

// Collect validates the selection and payment metadata, then records the
// payment as one batched request. The backend owns atomicity across the
// selected installments; the response is treated as all-or-nothing and no
// partial reconciliation is attempted.
func (s *feeService) Collect(ctx context.Context, sessionID string, payload dto.CollectFeePaymentRequest) (dto.PaymentReceiptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "fees.collect")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.PaymentReceiptResponse{}, err
	}

	session, err := s.sessions.GetFeeSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session_lookup_failed")
		return dto.PaymentReceiptResponse{}, err
	}
	if payload.Version != 0 && payload.Version != session.Version {
		span.SetStatus(codes.Error, "session_conflict")
		return dto.PaymentReceiptResponse{}, ErrSessionConflict
	}

	if len(session.SelectedIDs) == 0 {
		span.SetStatus(codes.Error, "empty_selection")
		return dto.PaymentReceiptResponse{}, ErrEmptySelection
	}
	if payload.PaymentMode != PaymentModeCash && payload.TransactionRef == "" {
		span.SetStatus(codes.Error, "missing_transaction_ref")
		return dto.PaymentReceiptResponse{}, ErrTransactionRefRequired
	}

	totals := session.Totals()
	span.SetAttributes(
		attribute.Int("fees.student_id", session.StudentID),
		attribute.Int("fees.installments", totals.Count),
		attribute.Float64("fees.grand_total", totals.Grand),
		attribute.String("fees.payment_mode", payload.PaymentMode),
	)

	receipt, err := s.backend.CollectPayment(ctx, upstream.CollectPaymentRequest{
		StudentID:      session.StudentID,
		InstallmentIDs: session.SelectedIDs,
		PaymentMode:    payload.PaymentMode,
		TransactionRef: payload.TransactionRef,
		PaymentGateway: "offline",
		Remarks:        s.sanitizer.Sanitize(payload.Remarks),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collection_failed")
		return dto.PaymentReceiptResponse{}, err
	}

	// The payment went through; clear the selection so a reload shows the
	// refreshed backend state instead of a stale pick.
	session.SelectedIDs = []int{}
	session.Version++
	if err := s.sessions.SaveFeeSession(ctx, &session); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to clear selection after payment")
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Int("student_id", session.StudentID).
		Str("receipt_id", receipt.ReceiptID.String()).
		Float64("amount", totals.Grand).
		Msg("fee payment collected")

	return dto.PaymentReceiptResponse{ReceiptID: receipt.ReceiptID.String()}, nil
}
