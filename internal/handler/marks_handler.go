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

// MarksHandler manages the mark-entry and marks-list endpoints.
type MarksHandler struct {
	entry  service.MarkEntryService
	list   service.MarkListService
	logger zerolog.Logger
}

// NewMarksHandler builds a marks handler instance.
func NewMarksHandler(entry service.MarkEntryService, list service.MarkListService, logger zerolog.Logger) *MarksHandler {
	return &MarksHandler{
		entry:  entry,
		list:   list,
		logger: logger.With().Str("component", "marks_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *MarksHandler) Register(router fiber.Router) {
	router.Get("/filters", h.filters)
	router.Get("/sections", h.sections)
	router.Post("/sessions", h.startSession)
	router.Get("/sessions/:id", h.getSession)
	router.Delete("/sessions/:id", h.discardSession)
	router.Patch("/sessions/:id/marks", h.setMarks)
	router.Patch("/sessions/:id/absent", h.toggleAbsent)
	router.Patch("/sessions/:id/remark", h.setRemark)
	router.Post("/sessions/:id/save", h.saveAll)
	router.Get("/list", h.listMarks)
	router.Get("/list/export", h.exportCSV)
}

func (h *MarksHandler) filters(c *fiber.Ctx) error {
	options, err := h.entry.LoadFilters(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "filters retrieved", options)
}

func (h *MarksHandler) sections(c *fiber.Ctx) error {
	classID, err := parseQueryInt(c, "class_id")
	if err != nil || classID <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "class_id is required")
	}
	sections, err := h.entry.ListSections(c.Context(), classID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "sections retrieved", sections)
}

func (h *MarksHandler) startSession(c *fiber.Ctx) error {
	var payload dto.StartMarkSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	session, err := h.entry.StartSession(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session started", session)
}

func (h *MarksHandler) getSession(c *fiber.Ctx) error {
	session, err := h.entry.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "session retrieved", session)
}

func (h *MarksHandler) discardSession(c *fiber.Ctx) error {
	if err := h.entry.DiscardSession(c.Context(), c.Params("id")); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "session discarded", nil)
}

func (h *MarksHandler) setMarks(c *fiber.Ctx) error {
	var payload dto.SetMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	session, err := h.entry.SetMarks(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "marks updated", session)
}

func (h *MarksHandler) toggleAbsent(c *fiber.Ctx) error {
	var payload dto.ToggleAbsentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	session, err := h.entry.ToggleAbsent(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "absence updated", session)
}

func (h *MarksHandler) setRemark(c *fiber.Ctx) error {
	var payload dto.SetRemarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	session, err := h.entry.SetRemark(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "remark updated", session)
}

func (h *MarksHandler) saveAll(c *fiber.Ctx) error {
	result, err := h.entry.SaveAll(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, result.Message, result)
}

func (h *MarksHandler) listMarks(c *fiber.Ctx) error {
	filter, err := markListFilterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	listing, err := h.list.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "marks retrieved", listing)
}

func (h *MarksHandler) exportCSV(c *fiber.Ctx) error {
	filter, err := markListFilterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	payload, err := h.list.ExportCSV(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="marks.csv"`)
	return c.Send(payload)
}

func markListFilterFromQuery(c *fiber.Ctx) (service.MarkListFilter, error) {
	filter := service.MarkListFilter{
		ExamType: c.Query("exam_type"),
		Search:   c.Query("search"),
	}
	var err error
	if filter.ClassID, err = parseQueryInt(c, "class_id"); err != nil {
		return service.MarkListFilter{}, errors.New("class_id must be a number")
	}
	if filter.SectionID, err = parseQueryInt(c, "section_id"); err != nil {
		return service.MarkListFilter{}, errors.New("section_id must be a number")
	}
	if filter.SubjectID, err = parseQueryInt(c, "subject_id"); err != nil {
		return service.MarkListFilter{}, errors.New("subject_id must be a number")
	}
	return filter, nil
}

func (h *MarksHandler) handleError(c *fiber.Ctx, err error) error {
	var unscored *service.UnscoredRecordsError
	var upstreamErr *upstream.Error
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrExamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "no exam matches the selected filters")
	case errors.Is(err, service.ErrEmptyRoster):
		return utils.SendError(c, fiber.StatusNotFound, "no students found for the selected class and section")
	case errors.Is(err, service.ErrStudentNotInSession):
		return utils.SendError(c, fiber.StatusNotFound, "student not part of this session")
	case errors.Is(err, service.ErrSessionConflict):
		return utils.SendError(c, fiber.StatusConflict, "session was updated elsewhere, reload and retry")
	case errors.As(err, &unscored):
		return utils.SendError(c, fiber.StatusBadRequest, unscored.Error())
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
