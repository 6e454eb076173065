package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
)

// SubjectService proxies subject CRUD to the backend.
type SubjectService interface {
	List(ctx context.Context) ([]dto.SubjectResponse, error)
	Create(ctx context.Context, payload dto.SubjectCreateRequest) error
	Update(ctx context.Context, subjectID int, payload dto.SubjectUpdateRequest) error
	Delete(ctx context.Context, subjectID int) error
}

type subjectService struct {
	backend   upstream.Client
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(backend upstream.Client, validator *validator.Validate, logger zerolog.Logger) SubjectService {
	return &subjectService{
		backend:   backend,
		validator: validator,
		logger:    logger.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) List(ctx context.Context) ([]dto.SubjectResponse, error) {
	rows, err := s.backend.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	subjects := make([]dto.SubjectResponse, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, dto.SubjectResponse{
			SubjectID:   row.SubjectID.Int(),
			SubjectName: row.SubjectName,
		})
	}
	return subjects, nil
}

func (s *subjectService) Create(ctx context.Context, payload dto.SubjectCreateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	return s.backend.CreateSubject(ctx, upstream.SubjectRequest{SubjectName: payload.SubjectName})
}

func (s *subjectService) Update(ctx context.Context, subjectID int, payload dto.SubjectUpdateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	return s.backend.UpdateSubject(ctx, upstream.SubjectRequest{SubjectID: subjectID, SubjectName: payload.SubjectName})
}

func (s *subjectService) Delete(ctx context.Context, subjectID int) error {
	return s.backend.DeleteSubject(ctx, subjectID)
}
