package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/models"
)

// Chat time is bought and consumed in fixed 20-minute blocks.
const SessionBlockMinutes = 20

var (
	ErrNeedsPurchase     = errors.New("no chat time available, purchase required")
	ErrInsufficientFunds = errors.New("wallet balance is not enough for a session")
)

// Access reasons, in priority order.
const (
	ReasonActiveSession      = "active_session"
	ReasonMinutesAvailable   = "minutes_available"
	ReasonFreeTrialAvailable = "free_trial_available"
	ReasonNeedsPurchase      = "needs_purchase"
)

type AccessResult struct {
	Granted          bool   `json:"granted"`
	Reason           string `json:"reason"`
	RemainingSeconds int    `json:"remaining_seconds"`
	NeedsStart       bool   `json:"needs_start"`
}

type SessionGrant struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	IsFree           bool `json:"is_free"`
}

type WalletPurchaseResult struct {
	WalletBalance           int64 `json:"wallet_balance"`
	AvailableSessionMinutes int   `json:"available_session_minutes"`
}

// CheckAccess evaluates the entitlement priority chain without mutating
// anything: active session, then purchased minutes, then the free trial.
func CheckAccess(phone string) (*AccessResult, error) {
	user, err := FindUserByPhone(phone)
	if err != nil {
		return nil, err
	}
	return evaluateAccess(user, time.Now()), nil
}

func evaluateAccess(user *models.User, now time.Time) *AccessResult {
	if remaining := user.SessionRemainingSeconds(now); remaining > 0 {
		return &AccessResult{Granted: true, Reason: ReasonActiveSession, RemainingSeconds: remaining}
	}
	if user.AvailableSessionMinutes >= SessionBlockMinutes {
		return &AccessResult{Granted: true, Reason: ReasonMinutesAvailable, NeedsStart: true}
	}
	if !user.FreeChatUsed {
		return &AccessResult{Granted: true, Reason: ReasonFreeTrialAvailable, NeedsStart: true}
	}
	return &AccessResult{Reason: ReasonNeedsPurchase}
}

// StartSession opens a chat window. Re-running it while a window is active
// returns the remaining time without touching the row. A paid or free start
// always forfeits the free trial.
func StartSession(phone string) (*SessionGrant, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	buffer := time.Duration(cfg.ActivationBufferMinutes) * time.Minute

	var grant SessionGrant
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("phone_number = ?", phone).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		now := time.Now()
		if remaining := user.SessionRemainingSeconds(now); remaining > 0 {
			grant = SessionGrant{RemainingSeconds: remaining}
			return nil
		}

		window := time.Duration(SessionBlockMinutes)*time.Minute + buffer
		end := now.Add(window)

		var updates map[string]interface{}
		switch {
		case user.AvailableSessionMinutes >= SessionBlockMinutes:
			updates = map[string]interface{}{
				"available_session_minutes": user.AvailableSessionMinutes - SessionBlockMinutes,
				"session_end_time":          end,
				"free_chat_used":            true,
				"version":                   user.Version + 1,
			}
			grant = SessionGrant{RemainingSeconds: int(window.Seconds())}
		case !user.FreeChatUsed:
			updates = map[string]interface{}{
				"session_end_time": end,
				"free_chat_used":   true,
				"version":          user.Version + 1,
			}
			grant = SessionGrant{RemainingSeconds: int(window.Seconds()), IsFree: true}
		default:
			return ErrNeedsPurchase
		}

		result := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// PurchaseFromWallet converts one session price from the wallet into 20
// minutes of chat time and records the purchase. Buying with the wallet also
// forfeits the free trial.
func PurchaseFromWallet(phone string) (*WalletPurchaseResult, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	price := cfg.SessionPrice

	var out WalletPurchaseResult
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("phone_number = ?", phone).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if user.WalletBalance < price {
			return ErrInsufficientFunds
		}

		newBalance := user.WalletBalance - price
		newMinutes := user.AvailableSessionMinutes + SessionBlockMinutes

		result := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(map[string]interface{}{
				"wallet_balance":            newBalance,
				"available_session_minutes": newMinutes,
				"free_chat_used":            true,
				"version":                   user.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		purchase := models.Purchase{
			UserID:      user.ID,
			AmountPaid:  price,
			Description: fmt.Sprintf("wallet purchase, %d minutes", SessionBlockMinutes),
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		out = WalletPurchaseResult{WalletBalance: newBalance, AvailableSessionMinutes: newMinutes}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
