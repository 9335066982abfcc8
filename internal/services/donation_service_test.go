package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"donation_backend/internal/models"
	"donation_backend/internal/payments"
	"donation_backend/internal/services/dto"
	"donation_backend/internal/testutil"
	"donation_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type donationFixture struct {
	repo     *testutil.FakeDonationRepo
	gateway  *testutil.FakeGateway
	receipts *testutil.FakeReceiptSender
	service  DonationService
}

func newDonationFixture() *donationFixture {
	f := &donationFixture{
		repo:     testutil.NewFakeDonationRepo(),
		gateway:  testutil.NewFakeGateway(),
		receipts: &testutil.FakeReceiptSender{},
	}
	f.service = NewDonationService(f.repo, f.gateway, f.receipts, DonationServiceConfig{Currency: "usd", ReconcileConcurrency: 2})
	return f
}

func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func requireAppError(t *testing.T, err error, status int) *apperrors.AppError {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.HTTPCode)
	return appErr
}

func TestCreateDonation_RejectsInvalidInputBeforeSideEffects(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreateDonationRequest
	}{
		{"missing amount", dto.CreateDonationRequest{Email: "a@b.co"}},
		{"zero amount", dto.CreateDonationRequest{DonationAmount: amountPtr("0"), Email: "a@b.co"}},
		{"negative amount", dto.CreateDonationRequest{DonationAmount: amountPtr("-3"), Email: "a@b.co"}},
		{"rounds to zero", dto.CreateDonationRequest{DonationAmount: amountPtr("0.004"), Email: "a@b.co"}},
		{"above processor maximum", dto.CreateDonationRequest{DonationAmount: amountPtr("1000000"), Email: "a@b.co"}},
		{"wraps int64 to one cent", dto.CreateDonationRequest{DonationAmount: amountPtr("184467440737095516.17"), Email: "a@b.co"}},
		{"exponent notation overflow", dto.CreateDonationRequest{DonationAmount: amountPtr("1e20"), Email: "a@b.co"}},
		{"wraps int64 negative", dto.CreateDonationRequest{DonationAmount: amountPtr("92233720368547758.08"), Email: "a@b.co"}},
		{"missing email", dto.CreateDonationRequest{DonationAmount: amountPtr("10")}},
		{"blank email", dto.CreateDonationRequest{DonationAmount: amountPtr("10"), Email: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDonationFixture()
			resp, err := f.service.CreateDonation(context.Background(), nil, &tt.req)

			assert.Nil(t, resp)
			requireAppError(t, err, http.StatusBadRequest)
			assert.Equal(t, 0, f.gateway.CreateCalls)
			assert.Equal(t, 0, f.repo.CreateCalls)
			assert.Empty(t, f.repo.Rows())
		})
	}
}

func TestCreateDonation_Success(t *testing.T) {
	f := newDonationFixture()

	resp, err := f.service.CreateDonation(context.Background(), nil, &dto.CreateDonationRequest{
		DonationAmount: amountPtr("12.345"),
		Email:          "donor@example.com",
		FirstName:      "Ada",
		Country:        "GB",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ClientSecret)

	assert.Equal(t, int64(1235), f.gateway.LastCreate.Amount)
	assert.Equal(t, "usd", f.gateway.LastCreate.Currency)
	assert.Equal(t, "donor@example.com", f.gateway.LastCreate.ReceiptEmail)

	rows := f.repo.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, models.PaymentStatusPending, rows[0].Status)
	assert.NotEmpty(t, rows[0].PaymentIntentID)
	assert.Equal(t, int64(1235), rows[0].Amount)
	assert.Equal(t, "Ada", rows[0].FirstName)
	assert.Equal(t, "GB", rows[0].Country)
}

func TestCreateDonation_WholeAmount(t *testing.T) {
	f := newDonationFixture()

	_, err := f.service.CreateDonation(context.Background(), nil, &dto.CreateDonationRequest{
		DonationAmount: amountPtr("10"),
		Email:          "donor@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), f.repo.Rows()[0].Amount)
}

func TestCreateDonation_GatewayFailure(t *testing.T) {
	f := newDonationFixture()
	f.gateway.CreateErr = errors.New("card network down")

	_, err := f.service.CreateDonation(context.Background(), nil, &dto.CreateDonationRequest{
		DonationAmount: amountPtr("5"),
		Email:          "donor@example.com",
	})
	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, apperrors.CodeExternalServiceError, appErr.Code)
	assert.Equal(t, 0, f.repo.CreateCalls)
}

func TestCreateDonation_PersistFailureLeavesIntentUpstream(t *testing.T) {
	f := newDonationFixture()
	f.repo.CreateErr = testutil.ErrStore

	_, err := f.service.CreateDonation(context.Background(), nil, &dto.CreateDonationRequest{
		DonationAmount: amountPtr("5"),
		Email:          "donor@example.com",
	})
	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, apperrors.CodeDatabaseError, appErr.Code)
	assert.Equal(t, 1, f.gateway.CreateCalls)
	assert.Empty(t, f.repo.Rows())
}

func TestApplyWebhookEvent_Succeeded(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(
		models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_a", Status: models.PaymentStatusPending},
		models.Donation{Amount: 200, Email: "c@d.co", PaymentIntentID: "pi_b", Status: models.PaymentStatusPending},
	)

	err := f.service.ApplyWebhookEvent(context.Background(), nil,
		testutil.WebhookPayload(payments.EventPaymentIntentSucceeded, "pi_a"), "")
	require.NoError(t, err)

	rows := f.repo.Rows()
	assert.Equal(t, models.PaymentStatusSucceeded, rows[0].Status)
	assert.Equal(t, models.PaymentStatusPending, rows[1].Status)

	require.Equal(t, 1, f.receipts.Count())
	assert.Equal(t, "pi_a", f.receipts.Sent[0].PaymentIntentID)
}

func TestApplyWebhookEvent_OverwritesTerminalStatus(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_a", Status: models.PaymentStatusCanceled})

	err := f.service.ApplyWebhookEvent(context.Background(), nil,
		testutil.WebhookPayload(payments.EventPaymentIntentSucceeded, "pi_a"), "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, f.repo.Rows()[0].Status)
}

func TestApplyWebhookEvent_DuplicateDeliverySendsOneReceipt(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_a"})
	payload := testutil.WebhookPayload(payments.EventPaymentIntentSucceeded, "pi_a")

	require.NoError(t, f.service.ApplyWebhookEvent(context.Background(), nil, payload, ""))
	require.NoError(t, f.service.ApplyWebhookEvent(context.Background(), nil, payload, ""))

	assert.Equal(t, 1, f.receipts.Count())
	assert.Equal(t, 2, f.repo.UpdateCalls)
}

func TestApplyWebhookEvent_UnknownIntent(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_a"})

	err := f.service.ApplyWebhookEvent(context.Background(), nil,
		testutil.WebhookPayload(payments.EventPaymentIntentSucceeded, "pi_unknown"), "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, f.repo.Rows()[0].Status)
	assert.Equal(t, 0, f.repo.UpdateCalls)
	assert.Equal(t, 0, f.receipts.Count())
}

func TestApplyWebhookEvent_OtherTypesIgnored(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_a"})

	err := f.service.ApplyWebhookEvent(context.Background(), nil,
		testutil.WebhookPayload("payment_intent.payment_failed", "pi_a"), "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, f.repo.Rows()[0].Status)
	assert.Equal(t, 0, f.repo.UpdateCalls)
}

func TestApplyWebhookEvent_BadSignature(t *testing.T) {
	f := newDonationFixture()
	f.gateway.Signature = "good"
	f.repo.Seed(models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_a"})

	err := f.service.ApplyWebhookEvent(context.Background(), nil,
		testutil.WebhookPayload(payments.EventPaymentIntentSucceeded, "pi_a"), "bad")
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, apperrors.CodeInvalidSignature, appErr.Code)
	assert.Equal(t, models.PaymentStatusPending, f.repo.Rows()[0].Status)
}

func TestApplyWebhookEvent_MalformedPayload(t *testing.T) {
	f := newDonationFixture()

	err := f.service.ApplyWebhookEvent(context.Background(), nil, []byte("nope"), "")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestApplyWebhookEvent_ReceiptFailureIsNotFatal(t *testing.T) {
	f := newDonationFixture()
	f.receipts.Err = errors.New("smtp down")
	f.repo.Seed(models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_a"})

	err := f.service.ApplyWebhookEvent(context.Background(), nil,
		testutil.WebhookPayload(payments.EventPaymentIntentSucceeded, "pi_a"), "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, f.repo.Rows()[0].Status)
}

func TestListAndReconcile_UpdatesPendingOnly(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(
		models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_old", Status: models.PaymentStatusSucceeded},
		models.Donation{Amount: 200, Email: "c@d.co", PaymentIntentID: "pi_pending", Status: models.PaymentStatusPending},
		models.Donation{Amount: 300, Email: "e@f.co", PaymentIntentID: "pi_failed", Status: models.PaymentStatusFailed},
	)
	f.gateway.SetStatus("pi_pending", models.PaymentStatusSucceeded)
	// не-pending записи не запрашиваются, даже если у процессора другой статус
	f.gateway.SetStatus("pi_failed", models.PaymentStatusSucceeded)

	donations, err := f.service.ListAndReconcile(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, donations, 3)

	// новые первыми
	assert.Equal(t, "pi_failed", donations[0].PaymentIntentID)
	assert.Equal(t, "pi_pending", donations[1].PaymentIntentID)
	assert.Equal(t, "pi_old", donations[2].PaymentIntentID)

	assert.Equal(t, models.PaymentStatusFailed, donations[0].Status)
	assert.Equal(t, models.PaymentStatusSucceeded, donations[1].Status)
	assert.Equal(t, models.PaymentStatusSucceeded, donations[2].Status)

	rows := f.repo.Rows()
	assert.Equal(t, models.PaymentStatusSucceeded, rows[0].Status)
	assert.Equal(t, models.PaymentStatusSucceeded, rows[1].Status)
	assert.Equal(t, models.PaymentStatusFailed, rows[2].Status)
	assert.Equal(t, 1, f.gateway.GetCalls)
}

func TestListAndReconcile_ToleratesLookupFailure(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(
		models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_1"},
		models.Donation{Amount: 200, Email: "c@d.co", PaymentIntentID: "pi_2"},
		models.Donation{Amount: 300, Email: "e@f.co", PaymentIntentID: "pi_3"},
	)
	f.gateway.SetStatus("pi_1", models.PaymentStatusSucceeded)
	f.gateway.GetErr["pi_2"] = errors.New("timeout")
	f.gateway.SetStatus("pi_3", models.PaymentStatusCanceled)

	donations, err := f.service.ListAndReconcile(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, donations, 3)

	byIntent := map[string]models.PaymentStatus{}
	for _, d := range donations {
		byIntent[d.PaymentIntentID] = d.Status
	}
	assert.Equal(t, models.PaymentStatusSucceeded, byIntent["pi_1"])
	assert.Equal(t, models.PaymentStatusPending, byIntent["pi_2"])
	assert.Equal(t, models.PaymentStatusCanceled, byIntent["pi_3"])
}

func TestListAndReconcile_SurvivesLookupPanic(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(
		models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_1"},
		models.Donation{Amount: 200, Email: "c@d.co", PaymentIntentID: "pi_2"},
	)
	f.gateway.GetPanic["pi_1"] = true
	f.gateway.SetStatus("pi_2", models.PaymentStatusSucceeded)

	var donations []models.Donation
	require.NotPanics(t, func() {
		var err error
		donations, err = f.service.ListAndReconcile(context.Background(), nil)
		require.NoError(t, err)
	})
	require.Len(t, donations, 2)

	byIntent := map[string]models.PaymentStatus{}
	for _, d := range donations {
		byIntent[d.PaymentIntentID] = d.Status
	}
	assert.Equal(t, models.PaymentStatusPending, byIntent["pi_1"])
	assert.Equal(t, models.PaymentStatusSucceeded, byIntent["pi_2"])
	assert.Equal(t, models.PaymentStatusPending, f.repo.Rows()[0].Status)
}

func TestListAndReconcile_StoreUpdateFailureKeepsStoredStatus(t *testing.T) {
	f := newDonationFixture()
	f.repo.Seed(
		models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_1"},
		models.Donation{Amount: 200, Email: "c@d.co", PaymentIntentID: "pi_2"},
	)
	f.gateway.SetStatus("pi_1", models.PaymentStatusSucceeded)
	f.gateway.SetStatus("pi_2", models.PaymentStatusSucceeded)
	f.repo.UpdateErr["pi_1"] = testutil.ErrStore

	donations, err := f.service.ListAndReconcile(context.Background(), nil)
	require.NoError(t, err)

	for _, d := range donations {
		switch d.PaymentIntentID {
		case "pi_1":
			assert.Equal(t, models.PaymentStatusPending, d.Status)
		case "pi_2":
			assert.Equal(t, models.PaymentStatusSucceeded, d.Status)
		}
	}
}

func TestListAndReconcile_Empty(t *testing.T) {
	f := newDonationFixture()

	donations, err := f.service.ListAndReconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, donations)
	assert.Empty(t, donations)
}

func TestListAndReconcile_StoreFailure(t *testing.T) {
	f := newDonationFixture()
	f.repo.FindErr = testutil.ErrStore

	_, err := f.service.ListAndReconcile(context.Background(), nil)
	requireAppError(t, err, http.StatusInternalServerError)
}
