package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/repository"
	"github.com/noah-isme/sma-admin-gateway/internal/service"
	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
	"github.com/noah-isme/sma-admin-gateway/internal/utils"
)

// FeesHandler manages the fee-collection endpoints.
type FeesHandler struct {
	service service.FeeService
	logger  zerolog.Logger
}

// NewFeesHandler builds a fees handler instance.
func NewFeesHandler(service service.FeeService, logger zerolog.Logger) *FeesHandler {
	return &FeesHandler{
		service: service,
		logger:  logger.With().Str("component", "fees_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FeesHandler) Register(router fiber.Router) {
	router.Get("/students", h.students)
	router.Post("/sessions", h.startSession)
	router.Get("/sessions/:id", h.getSession)
	router.Delete("/sessions/:id", h.discardSession)
	router.Patch("/sessions/:id/selection", h.toggleInstallment)
	router.Post("/sessions/:id/collect", h.collect)
}

func (h *FeesHandler) students(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *FeesHandler) startSession(c *fiber.Ctx) error {
	var payload dto.StartFeeSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	session, err := h.service.StartSession(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session started", session)
}

func (h *FeesHandler) getSession(c *fiber.Ctx) error {
	session, err := h.service.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "session retrieved", session)
}

func (h *FeesHandler) discardSession(c *fiber.Ctx) error {
	if err := h.service.DiscardSession(c.Context(), c.Params("id")); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "session discarded", nil)
}

func (h *FeesHandler) toggleInstallment(c *fiber.Ctx) error {
	var payload dto.SelectInstallmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	session, err := h.service.ToggleInstallment(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "selection updated", session)
}

func (h *FeesHandler) collect(c *fiber.Ctx) error {
	var payload dto.CollectFeePaymentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	receipt, err := h.service.Collect(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "payment collected", receipt)
}

func (h *FeesHandler) handleError(c *fiber.Ctx, err error) error {
	var upstreamErr *upstream.Error
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrInstallmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "installment not found")
	case errors.Is(err, service.ErrInstallmentAlreadyPaid):
		return utils.SendError(c, fiber.StatusConflict, "installment is already paid")
	case errors.Is(err, service.ErrSessionConflict):
		return utils.SendError(c, fiber.StatusConflict, "session was updated elsewhere, reload and retry")
	case errors.Is(err, service.ErrEmptySelection):
		return utils.SendError(c, fiber.StatusBadRequest, "select at least one installment")
	case errors.Is(err, service.ErrTransactionRefRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "transaction reference is required for non-cash payments")
	case errors.Is(err, upstream.ErrMissingToken):
		return utils.SendError(c, fiber.StatusBadGateway, "backend auth token not configured")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &upstreamErr):
		return utils.SendError(c, fiber.StatusBadGateway, upstreamErr.Message)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
