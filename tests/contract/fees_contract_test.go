package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-gateway/internal/dto"
	"github.com/noah-isme/sma-admin-gateway/internal/handler"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
)

type stubFeeService struct {
	session dto.FeeSessionResponse
}

func (s stubFeeService) ListStudents(context.Context) ([]dto.FeeStudent, error) {
	return nil, nil
}

func (s stubFeeService) StartSession(context.Context, dto.StartFeeSessionRequest) (dto.FeeSessionResponse, error) {
	return s.session, nil
}

func (s stubFeeService) GetSession(context.Context, string) (dto.FeeSessionResponse, error) {
	return s.session, nil
}

func (s stubFeeService) DiscardSession(context.Context, string) error {
	return nil
}

func (s stubFeeService) ToggleInstallment(context.Context, string, dto.SelectInstallmentRequest) (dto.FeeSessionResponse, error) {
	return s.session, nil
}

func (s stubFeeService) Collect(context.Context, string, dto.CollectFeePaymentRequest) (dto.PaymentReceiptResponse, error) {
	return dto.PaymentReceiptResponse{}, nil
}

func TestFeeSessionContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "fee_session.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	session := dto.FeeSessionResponse{
		ID:           "a3c8f0de-14b2-4f6a-8c01-7e9b5a2d6f13",
		StudentID:    12,
		AcademicYear: "2025-2026",
		Heads: []models.FeeHead{{
			Name:          "Tuition",
			TotalAmount:   1200,
			PaidAmount:    400,
			PendingAmount: 800,
			Installments: []models.FeeInstallment{
				{ID: 1, InstallmentNo: 1, Amount: 400, Status: models.InstallmentPaid, DueDate: "2025-04-10", PaidOn: "2025-04-02"},
				{ID: 2, InstallmentNo: 2, Amount: 400, Status: models.InstallmentPending, DueDate: "2025-07-10"},
				{ID: 3, InstallmentNo: 3, Amount: 400, FineAmount: 50, Status: models.InstallmentOverdue, DueDate: "2025-10-10"},
			},
		}},
		Summary:     models.FeeSummary{Total: 1200, Paid: 400, Pending: 800, Fine: 50},
		History:     []models.PaymentRecord{{ReceiptID: "RCPT-1", Amount: 400, PaymentMode: "cash", PaidOn: "2025-04-02"}},
		SelectedIDs: []int{2, 3},
		Totals:      models.SelectionTotals{Amount: 800, Fine: 50, Grand: 850, Count: 2},
		Version:     4,
	}

	feesHandler := handler.NewFeesHandler(stubFeeService{session: session}, zerolog.Nop())

	app := fiber.New()
	feesHandler.Register(app.Group("/api/v1/fees"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fees/sessions/"+session.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
