package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
	"github.com/noah-isme/sma-admin-gateway/internal/repository"
)

// ErrInvalidProfile indicates the submitted profile is not a JSON object.
var ErrInvalidProfile = errors.New("profile must be a JSON object")

// ProfileService stores and returns the institute profile document. The
// document is schemaless; the service only enforces that it is an object.
type ProfileService interface {
	Get(ctx context.Context) (dto.ProfileResponse, error)
	Save(ctx context.Context, profile json.RawMessage) (dto.ProfileResponse, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	logger   zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(profiles repository.ProfileRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		profiles: profiles,
		logger:   logger.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns the stored profile. Absence is first-run, not an error.
func (s *profileService) Get(ctx context.Context) (dto.ProfileResponse, error) {
	document, err := s.profiles.Get(ctx, models.ProfileKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{FirstRun: true}, nil
		}
		return dto.ProfileResponse{}, err
	}
	return dto.ProfileResponse{Profile: json.RawMessage(document.Data)}, nil
}

func (s *profileService) Save(ctx context.Context, profile json.RawMessage) (dto.ProfileResponse, error) {
	var decoded map[string]interface{}
	if err := json.Unmarshal(profile, &decoded); err != nil {
		return dto.ProfileResponse{}, ErrInvalidProfile
	}

	document := models.ProfileDocument{
		Key:  models.ProfileKey,
		Data: datatypes.JSON(profile),
	}
	if err := s.profiles.Save(ctx, &document); err != nil {
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Msg("institute profile saved")
	return dto.ProfileResponse{Profile: profile}, nil
}
