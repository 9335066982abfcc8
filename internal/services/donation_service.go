package services

import (
	"context"
	"errors"
	"strings"

	"donation_backend/internal/email"
	"donation_backend/internal/logger"
	"donation_backend/internal/models"
	"donation_backend/internal/payments"
	"donation_backend/internal/repositories"
	"donation_backend/internal/services/dto"
	"donation_backend/pkg/apperrors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type DonationService interface {
	CreateDonation(ctx context.Context, db *gorm.DB, req *dto.CreateDonationRequest) (*dto.CreateDonationResponse, error)
	ApplyWebhookEvent(ctx context.Context, db *gorm.DB, payload []byte, signatureHeader string) error
	ListAndReconcile(ctx context.Context, db *gorm.DB) ([]models.Donation, error)
}

type DonationServiceConfig struct {
	Currency             string
	ReconcileConcurrency int
}

type DonationServiceImpl struct {
	donationRepo repositories.DonationRepository
	gateway      payments.Gateway
	receipts     email.ReceiptSender
	cfg          DonationServiceConfig
}

func NewDonationService(
	donationRepo repositories.DonationRepository,
	gateway payments.Gateway,
	receipts email.ReceiptSender,
	cfg DonationServiceConfig,
) DonationService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.ReconcileConcurrency <= 0 {
		cfg.ReconcileConcurrency = 4
	}
	if receipts == nil {
		receipts = email.NoopProvider{}
	}
	return &DonationServiceImpl{
		donationRepo: donationRepo,
		gateway:      gateway,
		receipts:     receipts,
		cfg:          cfg,
	}
}

// CreateDonation создает платеж у процессора и сохраняет его в статусе pending.
// Валидация выполняется до любого внешнего вызова или записи.
func (s *DonationServiceImpl) CreateDonation(ctx context.Context, db *gorm.DB, req *dto.CreateDonationRequest) (*dto.CreateDonationResponse, error) {
	if req.DonationAmount == nil {
		return nil, apperrors.ErrInvalidDonationAmount
	}
	amount, ok := ToMinorUnits(*req.DonationAmount)
	if !ok {
		return nil, apperrors.ErrInvalidDonationAmount
	}

	donorEmail := strings.TrimSpace(req.Email)
	if donorEmail == "" {
		return nil, apperrors.ErrDonorEmailRequired
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.CreateIntentParams{
		Amount:       amount,
		Currency:     s.cfg.Currency,
		ReceiptEmail: donorEmail,
		Metadata:     donorMetadata(req),
	})
	if err != nil {
		logger.CtxWithError(ctx, "Payment intent creation failed", err, "amount", amount)
		return nil, apperrors.PaymentProviderError(err)
	}

	donation := &models.Donation{
		Amount:          amount,
		Currency:        s.cfg.Currency,
		Email:           donorEmail,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		CardName:        req.CardName,
		Country:         req.Country,
		PostalCode:      req.PostalCode,
		PaymentIntentID: intent.ID,
		Status:          models.PaymentStatusPending,
	}

	if err := s.donationRepo.Create(db, donation); err != nil {
		// intent уже создан у процессора и остается как есть
		logger.CtxWithError(ctx, "Orphaned payment intent: donation record not saved", err,
			"payment_intent_id", intent.ID,
			"amount", amount,
		)
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "Donation created",
		"donation_id", donation.ID,
		"payment_intent_id", intent.ID,
		"amount", amount,
	)

	return &dto.CreateDonationResponse{ClientSecret: intent.ClientSecret}, nil
}

// ApplyWebhookEvent переводит пожертвование в succeeded по payment_intent.succeeded.
// Запись безусловная: побеждает последнее примененное событие.
func (s *DonationServiceImpl) ApplyWebhookEvent(ctx context.Context, db *gorm.DB, payload []byte, signatureHeader string) error {
	event, err := s.gateway.ParseWebhook(payload, signatureHeader)
	if err != nil {
		logger.CtxWarn(ctx, "Webhook rejected", "error", err.Error())
		return apperrors.WebhookSignatureError(err)
	}

	if event.Type != payments.EventPaymentIntentSucceeded {
		logger.CtxDebug(ctx, "Webhook event ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}
	if event.PaymentIntentID == "" {
		return apperrors.WebhookSignatureError(payments.ErrInvalidPayload)
	}

	donation, err := s.donationRepo.FindByPaymentIntentID(db, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrDonationNotFound) {
			logger.CtxWarn(ctx, "Webhook for unknown payment intent", "event_id", event.ID, "payment_intent_id", event.PaymentIntentID)
			return nil
		}
		return apperrors.DatabaseError(err)
	}

	previous := donation.Status
	if err := s.donationRepo.UpdateStatus(db, event.PaymentIntentID, models.PaymentStatusSucceeded); err != nil {
		if errors.Is(err, repositories.ErrDonationNotFound) {
			return nil
		}
		return apperrors.DatabaseError(err)
	}
	donation.Status = models.PaymentStatusSucceeded

	logger.CtxInfo(ctx, "Donation succeeded",
		"donation_id", donation.ID,
		"payment_intent_id", donation.PaymentIntentID,
		"previous_status", previous,
	)

	if previous != models.PaymentStatusSucceeded {
		if err := s.receipts.SendDonationReceipt(ctx, donation); err != nil {
			logger.CtxWithError(ctx, "Failed to send donation receipt", err, "donation_id", donation.ID)
		}
	}
	return nil
}

// ListAndReconcile возвращает все пожертвования, новые первыми, предварительно
// обновив pending записи у процессора. Неудачное обновление логируется,
// запись возвращается как есть.
func (s *DonationServiceImpl) ListAndReconcile(ctx context.Context, db *gorm.DB) ([]models.Donation, error) {
	donations, err := s.donationRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.ReconcileConcurrency)

	for i := range donations {
		donation := &donations[i]
		if !donation.IsPending() {
			continue
		}
		g.Go(func() error {
			defer logger.RecoverPanic(ctx, "reconcile",
				"donation_id", donation.ID,
				"payment_intent_id", donation.PaymentIntentID,
			)
			s.reconcile(ctx, db, donation)
			return nil
		})
	}
	_ = g.Wait()

	return donations, nil
}

func (s *DonationServiceImpl) reconcile(ctx context.Context, db *gorm.DB, donation *models.Donation) {
	intent, err := s.gateway.GetIntent(ctx, donation.PaymentIntentID)
	if err != nil {
		logger.CtxWithError(ctx, "Reconcile: payment intent lookup failed", err,
			"donation_id", donation.ID,
			"payment_intent_id", donation.PaymentIntentID,
		)
		return
	}
	if intent.Status == "" || intent.Status == donation.Status {
		return
	}

	if err := s.donationRepo.UpdateStatus(db, donation.PaymentIntentID, intent.Status); err != nil {
		logger.CtxWithError(ctx, "Reconcile: status update failed", err,
			"donation_id", donation.ID,
			"payment_intent_id", donation.PaymentIntentID,
		)
		return
	}

	logger.CtxInfo(ctx, "Donation reconciled",
		"donation_id", donation.ID,
		"from", donation.Status,
		"to", intent.Status,
	)
	donation.Status = intent.Status
}

func donorMetadata(req *dto.CreateDonationRequest) map[string]string {
	meta := make(map[string]string)
	for k, v := range map[string]string{
		"first_name":  req.FirstName,
		"last_name":   req.LastName,
		"card_name":   req.CardName,
		"country":     req.Country,
		"postal_code": req.PostalCode,
	} {
		if v != "" {
			meta[k] = v
		}
	}
	return meta
}
