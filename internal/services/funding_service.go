// internal/services/funding_service.go
package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

// FundingService bridges external Stripe payments into internal balance
// units. An intent is created first; the balance only moves once the Stripe
// payment is confirmed as succeeded. Every intent status transition is
// guarded in SQL so it can only apply once.
type FundingService struct {
	store *ledger.Store
	guard *guard.Guard
	cfg   *config.PaymentConfig
}

func NewFundingService(store *ledger.Store, g *guard.Guard, cfg *config.PaymentConfig) *FundingService {
	stripe.Key = cfg.StripeSecretKey

	return &FundingService{
		store: store,
		guard: g,
		cfg:   cfg,
	}
}

type CreateFundingRequest struct {
	// Amount in external currency units (e.g. dollars).
	Amount   float64 `json:"amount" validate:"required,min=0.01"`
	Currency string  `json:"currency,omitempty"`
}

type FundingIntentResponse struct {
	ClientSecret string    `json:"client_secret"`
	PaymentID    string    `json:"payment_id"`
	Status       string    `json:"status"`
	IntentID     uuid.UUID `json:"intent_id"`
	// Units credited to the balance once the payment succeeds.
	Units int64 `json:"units"`
}

type ConfirmFundingRequest struct {
	IntentID uuid.UUID `json:"intent_id" validate:"required"`
}

type RefundFundingRequest struct {
	IntentID uuid.UUID `json:"intent_id" validate:"required"`
	Reason   string    `json:"reason" validate:"required"`
}

// CreateIntent opens a Stripe PaymentIntent and records the matching funding
// row. No balance moves until confirmation.
func (s *FundingService) CreateIntent(callerID uuid.UUID, req *CreateFundingRequest) (*FundingIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	amountInCents := int64(req.Amount * 100)
	units := amountInCents * s.cfg.UnitScale / 100

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("account_id", callerID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, models.Wrap(models.KindPaymentFailed, "payment intent creation failed", err)
	}

	intent := &models.FundingIntent{
		AccountID:        callerID,
		Amount:           units,
		Status:           models.FundingStatusPending,
		PaymentReference: pi.ID,
	}
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}
		if err := tx.DB().Create(intent).Error; err != nil {
			return models.Wrap(models.KindInternal, "funding intent create failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &FundingIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
		IntentID:     intent.ID,
		Units:        units,
	}, nil
}

// Confirm checks the Stripe payment status and, on success, credits the
// account balance in the same transaction that marks the intent completed.
func (s *FundingService) Confirm(callerID uuid.UUID, req *ConfirmFundingRequest) (*models.FundingIntent, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var intent models.FundingIntent
	if err := s.store.DB().First(&intent, "id = ?", req.IntentID).Error; err != nil {
		return nil, models.E(models.KindNotFound, "funding intent not found")
	}

	if intent.AccountID != callerID {
		return nil, models.E(models.KindUnauthorized, "funding intent belongs to another account")
	}
	if intent.Status != models.FundingStatusPending {
		return nil, models.Ef(models.KindInvalidInput, "funding intent already %s", intent.Status)
	}

	pi, err := paymentintent.Get(intent.PaymentReference, nil)
	if err != nil {
		return nil, models.Wrap(models.KindPaymentFailed, "payment intent lookup failed", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		err = s.store.WithTx(func(tx *ledger.Store) error {
			if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
				return err
			}
			return s.creditFunding(tx, &intent)
		})
		if err != nil {
			return nil, err
		}

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		return nil, models.E(models.KindPaymentFailed, "payment requires further action")

	default:
		result := s.store.DB().Model(&models.FundingIntent{}).
			Where("id = ? AND status = ?", intent.ID, models.FundingStatusPending).
			Update("status", models.FundingStatusFailed)
		if result.Error != nil {
			return nil, models.Wrap(models.KindInternal, "funding intent update failed", result.Error)
		}
		intent.Status = models.FundingStatusFailed
		return nil, models.E(models.KindPaymentFailed, "payment did not succeed")
	}

	return &intent, nil
}

// creditFunding marks a pending intent completed and credits the account.
// The status transition is a conditional update, so two concurrent
// confirmations of the same intent can only credit once.
func (s *FundingService) creditFunding(tx *ledger.Store, intent *models.FundingIntent) error {
	now := time.Now()
	result := tx.DB().Model(&models.FundingIntent{}).
		Where("id = ? AND status = ?", intent.ID, models.FundingStatusPending).
		Updates(map[string]interface{}{
			"status":       models.FundingStatusCompleted,
			"processed_at": now,
		})
	if result.Error != nil {
		return models.Wrap(models.KindInternal, "funding intent update failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.E(models.KindInvalidInput, "funding intent already processed")
	}
	intent.Status = models.FundingStatusCompleted
	intent.ProcessedAt = &now

	if err := tx.Credit(intent.AccountID, intent.Amount); err != nil {
		return err
	}

	return tx.AppendEvent(models.EventAccountFunded, &intent.AccountID, nil, models.JSONB{
		"amount":    intent.Amount,
		"reference": intent.PaymentReference,
	})
}

// Refund reverses a completed funding: the credited units are debited back
// and the Stripe payment is refunded. Admin only; fails when the account has
// already spent the funds.
func (s *FundingService) Refund(callerID uuid.UUID, req *RefundFundingRequest) (*models.FundingIntent, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	caller, err := s.store.GetAccount(callerID)
	if err != nil {
		return nil, err
	}
	if !caller.HasCapability(models.RoleAdmin) {
		return nil, models.E(models.KindUnauthorized, "admin capability required")
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var intent models.FundingIntent
	if err := s.store.DB().First(&intent, "id = ?", req.IntentID).Error; err != nil {
		return nil, models.E(models.KindNotFound, "funding intent not found")
	}
	if intent.Status != models.FundingStatusCompleted {
		return nil, models.E(models.KindInvalidInput, "only completed fundings can be refunded")
	}

	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		now := time.Now()
		result := tx.DB().Model(&models.FundingIntent{}).
			Where("id = ? AND status = ?", intent.ID, models.FundingStatusCompleted).
			Updates(map[string]interface{}{
				"status":        models.FundingStatusRefunded,
				"refunded_at":   now,
				"refund_reason": req.Reason,
			})
		if result.Error != nil {
			return models.Wrap(models.KindInternal, "funding intent update failed", result.Error)
		}
		if result.RowsAffected == 0 {
			return models.E(models.KindInvalidInput, "only completed fundings can be refunded")
		}
		intent.Status = models.FundingStatusRefunded
		intent.RefundedAt = &now
		intent.RefundReason = req.Reason

		if err := tx.Debit(intent.AccountID, intent.Amount); err != nil {
			return err
		}

		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(intent.PaymentReference),
			Reason:        stripe.String("requested_by_customer"),
		}
		if _, err := refund.New(params); err != nil {
			return models.Wrap(models.KindPaymentFailed, "refund failed", err)
		}

		return tx.AppendEvent(models.EventFundingRefunded, &callerID, nil, models.JSONB{
			"account_id": intent.AccountID.String(),
			"amount":     intent.Amount,
			"reason":     req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	return &intent, nil
}

// GetBalance reads an account's current balance.
func (s *FundingService) GetBalance(accountID uuid.UUID) (int64, error) {
	account, err := s.store.GetAccount(accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// History pages through the caller's funding intents.
func (s *FundingService) History(accountID uuid.UUID, params utils.PaginationParams) ([]models.FundingIntent, int64, error) {
	query := s.store.DB().Model(&models.FundingIntent{}).Where("account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.Wrap(models.KindInternal, "funding count failed", err)
	}

	var intents []models.FundingIntent
	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&intents).Error
	if err != nil {
		return nil, 0, models.Wrap(models.KindInternal, "funding list failed", err)
	}

	return intents, total, nil
}
