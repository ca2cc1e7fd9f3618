package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/models"
	"github.com/HadisehPourali/delyar/internal/payment"
	"github.com/HadisehPourali/delyar/internal/payment/zarinpal"
)

var (
	ErrAmountMismatch      = errors.New("amount does not match session count times session price")
	ErrInvalidDiscountCode = errors.New("unknown discount code")
	ErrGatewayUnavailable  = errors.New("payment gateway is unavailable")
	// ErrCreditNotRecorded means the gateway confirmed the payment but the
	// local commit failed. Money was received and not recorded; this needs
	// manual reconciliation, never an automatic retry.
	ErrCreditNotRecorded = errors.New("payment verified but wallet credit could not be recorded")
)

// Callback resolution statuses, used as the redirect query parameter.
const (
	PaymentStatusSuccess          = "success"
	PaymentStatusFailed           = "failed"
	PaymentStatusCancelled        = "cancelled"
	PaymentStatusAlreadyVerified  = "already_verified"
	PaymentStatusAlreadyProcessed = "already_processed"
)

// InitiateResult is either a redirect to the gateway or an immediate credit
// (100% discount path).
type InitiateResult struct {
	Status    string `json:"status"` // "redirect" or "credited"
	PayURL    string `json:"pay_url,omitempty"`
	Authority string `json:"authority,omitempty"`
	Amount    int64  `json:"amount"` // payable after discount
}

// InitiatePayment validates the requested amount, applies the discount code
// and either credits the wallet outright (free purchase) or opens a gateway
// payment tracked by a PendingTransaction row.
func InitiatePayment(phone string, amount int64, sessionCount int, discountCode string) (*InitiateResult, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if sessionCount < 1 || amount != int64(sessionCount)*cfg.SessionPrice {
		return nil, ErrAmountMismatch
	}

	user, err := FindUserByPhone(phone)
	if err != nil {
		return nil, err
	}

	percent := 0
	if discountCode != "" {
		var dc models.DiscountCode
		if err := database.DB.Where("code = ?", discountCode).First(&dc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidDiscountCode
			}
			return nil, err
		}
		percent = dc.Percent
	}

	payable := amount - amount*int64(percent)/100

	if payable == 0 {
		// Fully discounted: credit the pre-discount amount right away and
		// never contact the gateway.
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if _, err := creditWallet(tx, user.PhoneNumber, amount); err != nil {
				return err
			}
			return tx.Create(&models.Purchase{
				UserID:      user.ID,
				AmountPaid:  0,
				Description: fmt.Sprintf("discount code %s (100%%), %d session(s)", discountCode, sessionCount),
			}).Error
		})
		if err != nil {
			return nil, err
		}
		return &InitiateResult{Status: "credited", Amount: 0}, nil
	}

	driver, err := resolveDriver()
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Delyar: %d session(s)", sessionCount)
	authority, payURL, err := driver.Request(payable, cfg.PaymentCallbackURL, description, phone)
	if err != nil {
		zap.L().Warn("payment request rejected by gateway", zap.Error(err))
		return nil, ErrGatewayUnavailable
	}

	pending := models.PendingTransaction{
		Authority:      authority,
		PhoneNumber:    phone,
		Amount:         payable,
		OriginalAmount: amount,
		SessionCount:   sessionCount,
		DiscountCode:   discountCode,
	}
	if err := database.DB.Create(&pending).Error; err != nil {
		return nil, err
	}

	return &InitiateResult{
		Status:    "redirect",
		PayURL:    payURL,
		Authority: authority,
		Amount:    payable,
	}, nil
}

// VerifyCallback resolves one gateway callback. It is idempotent: a replayed
// callback finds no pending row and becomes a no-op.
func VerifyCallback(authority, callbackStatus string) (string, error) {
	var pending models.PendingTransaction
	if err := database.DB.Where("authority = ?", authority).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentStatusAlreadyProcessed, nil
		}
		return PaymentStatusFailed, err
	}

	if callbackStatus != "OK" {
		if err := deletePending(pending.ID); err != nil {
			return PaymentStatusFailed, err
		}
		return PaymentStatusCancelled, nil
	}

	driver, err := resolveDriver()
	if err != nil {
		return PaymentStatusFailed, err
	}

	refID, code, err := driver.Verify(pending.Authority, pending.Amount)
	if err != nil {
		// Gateway unreachable: keep the pending row so a later callback or
		// manual verification can still resolve it.
		return PaymentStatusFailed, ErrGatewayUnavailable
	}

	switch code {
	case payment.CodeVerified:
		// Money has moved at the gateway. From here on, every persistence
		// failure must surface through the reconciliation alert.
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			user, err := creditWallet(tx, pending.PhoneNumber, pending.OriginalAmount)
			if err != nil {
				return err
			}
			purchase := models.Purchase{
				UserID:      user.ID,
				AmountPaid:  pending.Amount,
				RefID:       refID,
				Description: fmt.Sprintf("zarinpal payment, %d session(s)", pending.SessionCount),
			}
			if err := tx.Create(&purchase).Error; err != nil {
				return err
			}
			return tx.Delete(&models.PendingTransaction{}, pending.ID).Error
		})
		if err != nil {
			zap.L().Error("CRITICAL: payment verified by gateway but credit not recorded",
				zap.String("alert", "payment_unrecorded"),
				zap.String("authority", pending.Authority),
				zap.String("phone", pending.PhoneNumber),
				zap.Int64("amount", pending.Amount),
				zap.String("ref_id", refID),
				zap.Error(err))
			return PaymentStatusFailed, ErrCreditNotRecorded
		}
		return PaymentStatusSuccess, nil

	case payment.CodeAlreadyVerified:
		// Duplicate delivery of an already-settled payment: drop the pending
		// row, never credit twice.
		if err := deletePending(pending.ID); err != nil {
			return PaymentStatusFailed, err
		}
		return PaymentStatusAlreadyVerified, nil

	default:
		zap.L().Warn("payment verification failed",
			zap.String("authority", pending.Authority),
			zap.Int("gateway_code", code))
		if err := deletePending(pending.ID); err != nil {
			return PaymentStatusFailed, err
		}
		return PaymentStatusFailed, nil
	}
}

// creditWallet adds amount to the user's wallet inside the caller's
// transaction, guarded by the version column, and returns the credited row.
func creditWallet(tx *gorm.DB, phone string, amount int64) (*models.User, error) {
	var user models.User
	if err := tx.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	result := tx.Model(&models.User{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		Updates(map[string]interface{}{
			"wallet_balance": user.WalletBalance + amount,
			"version":        user.Version + 1,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrConcurrentUpdate
	}
	return &user, nil
}

func deletePending(id uint) error {
	return database.DB.Delete(&models.PendingTransaction{}, id).Error
}

// resolveDriver loads the enabled gateway configuration and builds its
// driver.
func resolveDriver() (payment.Driver, error) {
	var pc models.PaymentConfig
	if err := database.DB.Where("enable = ?", true).First(&pc).Error; err != nil {
		return nil, fmt.Errorf("no enabled payment gateway configured: %w", err)
	}

	var driver payment.Driver
	switch pc.PaymentMethod {
	case "zarinpal":
		driver = zarinpal.NewDriver()
	default:
		return nil, fmt.Errorf("unsupported payment method %q", pc.PaymentMethod)
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(pc.Config, &configMap); err != nil {
		return nil, err
	}
	if err := driver.SetConfig(configMap); err != nil {
		return nil, err
	}
	return driver, nil
}

// SeedPaymentConfig writes the env-derived gateway row when none exists yet.
func SeedPaymentConfig(cfg *config.Config) error {
	var count int64
	if err := database.DB.Model(&models.PaymentConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	raw, err := json.Marshal(map[string]string{
		"merchant_id": cfg.ZarinpalMerchantID,
		"api_url":     cfg.ZarinpalAPIURL,
		"pay_url":     cfg.ZarinpalPayURL,
	})
	if err != nil {
		return err
	}

	return database.DB.Create(&models.PaymentConfig{
		UUID:          uuid.New().String(),
		Name:          "Zarinpal",
		PaymentMethod: "zarinpal",
		Config:        datatypes.JSON(raw),
		Enable:        true,
	}).Error
}

// SeedDiscountCodes upserts the configured discount table.
func SeedDiscountCodes(codes map[string]int) error {
	for code, percent := range codes {
		var existing models.DiscountCode
		err := database.DB.Where("code = ?", code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := database.DB.Create(&models.DiscountCode{Code: code, Percent: percent}).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.Percent != percent:
			if err := database.DB.Model(&existing).Update("percent", percent).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
