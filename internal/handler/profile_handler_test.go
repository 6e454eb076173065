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
	"github.com/noah-isme/sma-admin-gateway/internal/service"
)

// stubProfileService implements service.ProfileService.
type stubProfileService struct {
	response dto.ProfileResponse
	err      error
	saved    json.RawMessage
}

func (s *stubProfileService) Get(ctx context.Context) (dto.ProfileResponse, error) {
	return s.response, s.err
}

func (s *stubProfileService) Save(ctx context.Context, profile json.RawMessage) (dto.ProfileResponse, error) {
	s.saved = profile
	if s.err != nil {
		return dto.ProfileResponse{}, s.err
	}
	return dto.ProfileResponse{Profile: profile}, nil
}

func newProfileTestApp(svc service.ProfileService) *fiber.App {
	app := fiber.New()
	handler := NewProfileHandler(svc, zerolog.Nop())
	handler.Register(app.Group("/api/v1/profile"))
	return app
}

func TestProfileGetFirstRunFlag(t *testing.T) {
	svc := &stubProfileService{response: dto.ProfileResponse{FirstRun: true}}
	app := newProfileTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, _, data := decodeEnvelope(t, resp)
	var response dto.ProfileResponse
	require.NoError(t, json.Unmarshal(data, &response))
	require.True(t, response.FirstRun)
}

func TestProfileSavePassesRawBody(t *testing.T) {
	svc := &stubProfileService{}
	app := newProfileTestApp(svc)

	payload := `{"institute_name":"Sunrise Public School"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, payload, string(svc.saved))
}

func TestProfileSaveEmptyBody(t *testing.T) {
	app := newProfileTestApp(&stubProfileService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/api/v1/profile", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileSaveInvalidProfile(t *testing.T) {
	app := newProfileTestApp(&stubProfileService{err: service.ErrInvalidProfile})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", bytes.NewBufferString(`[1,2]`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	success, message, _ := decodeEnvelope(t, resp)
	require.False(t, success)
	require.Equal(t, "profile must be a JSON object", message)
}
