package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/models"
)

func setupEntitlementTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.Purchase{}, &models.Feedback{},
		&models.PendingTransaction{}, &models.PaymentConfig{}, &models.DiscountCode{})
	db.AutoMigrate(&models.User{}, &models.Purchase{}, &models.Feedback{},
		&models.PendingTransaction{}, &models.PaymentConfig{}, &models.DiscountCode{})

	database.DB = db
}

func TestCheckAccess_PriorityOrder(t *testing.T) {
	setupEntitlementTestDB()

	// Fresh account: free trial is the entry point.
	user := models.User{PhoneNumber: "09120000001"}
	database.DB.Create(&user)

	result, err := CheckAccess(user.PhoneNumber)
	assert.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, ReasonFreeTrialAvailable, result.Reason)
	assert.True(t, result.NeedsStart)

	// Purchased minutes outrank the free trial.
	database.DB.Model(&user).Updates(map[string]interface{}{"available_session_minutes": 20})
	result, err = CheckAccess(user.PhoneNumber)
	assert.NoError(t, err)
	assert.Equal(t, ReasonMinutesAvailable, result.Reason)

	// An active window outranks everything.
	end := time.Now().Add(10 * time.Minute)
	database.DB.Model(&user).Updates(map[string]interface{}{"session_end_time": end})
	result, err = CheckAccess(user.PhoneNumber)
	assert.NoError(t, err)
	assert.Equal(t, ReasonActiveSession, result.Reason)
	assert.False(t, result.NeedsStart)
	assert.InDelta(t, 600, result.RemainingSeconds, 2)

	// Expired window, no minutes, trial burnt: denied.
	past := time.Now().Add(-time.Minute)
	database.DB.Model(&user).Updates(map[string]interface{}{
		"session_end_time":          past,
		"available_session_minutes": 0,
		"free_chat_used":            true,
	})
	result, err = CheckAccess(user.PhoneNumber)
	assert.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, ReasonNeedsPurchase, result.Reason)
}

func TestStartSession_FreeTrial(t *testing.T) {
	setupEntitlementTestDB()
	t.Setenv("SESSION_ACTIVATION_BUFFER_MINUTES", "2")

	user := models.User{PhoneNumber: "09120000002"}
	database.DB.Create(&user)

	grant, err := StartSession(user.PhoneNumber)
	assert.NoError(t, err)
	assert.True(t, grant.IsFree)
	assert.Equal(t, 22*60, grant.RemainingSeconds)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.True(t, updated.FreeChatUsed)
	assert.Equal(t, int64(0), updated.WalletBalance)
	assert.Equal(t, 0, updated.AvailableSessionMinutes)
	assert.NotNil(t, updated.SessionEndTime)
}

func TestStartSession_IdempotentWhileActive(t *testing.T) {
	setupEntitlementTestDB()

	user := models.User{PhoneNumber: "09120000003", AvailableSessionMinutes: 40, FreeChatUsed: true}
	database.DB.Create(&user)

	first, err := StartSession(user.PhoneNumber)
	assert.NoError(t, err)
	assert.False(t, first.IsFree)

	var afterFirst models.User
	database.DB.First(&afterFirst, user.ID)
	assert.Equal(t, 20, afterFirst.AvailableSessionMinutes)

	// Re-running returns the live window and debits nothing.
	second, err := StartSession(user.PhoneNumber)
	assert.NoError(t, err)
	assert.True(t, second.RemainingSeconds > 0)
	assert.True(t, second.RemainingSeconds <= first.RemainingSeconds)

	var afterSecond models.User
	database.DB.First(&afterSecond, user.ID)
	assert.Equal(t, 20, afterSecond.AvailableSessionMinutes)
	assert.Equal(t, afterFirst.Version, afterSecond.Version)
}

func TestStartSession_PaidStartForfeitsFreeTrial(t *testing.T) {
	setupEntitlementTestDB()

	user := models.User{PhoneNumber: "09120000004", AvailableSessionMinutes: 20}
	database.DB.Create(&user)

	grant, err := StartSession(user.PhoneNumber)
	assert.NoError(t, err)
	assert.False(t, grant.IsFree)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, 0, updated.AvailableSessionMinutes)
	assert.True(t, updated.FreeChatUsed, "paid start must burn the free trial even if unused")
}

func TestStartSession_NeedsPurchase(t *testing.T) {
	setupEntitlementTestDB()

	user := models.User{PhoneNumber: "09120000005", FreeChatUsed: true}
	database.DB.Create(&user)

	grant, err := StartSession(user.PhoneNumber)
	assert.ErrorIs(t, err, ErrNeedsPurchase)
	assert.Nil(t, grant)
}

func TestPurchaseFromWallet(t *testing.T) {
	setupEntitlementTestDB()
	t.Setenv("SESSION_PRICE", "39000")

	user := models.User{PhoneNumber: "09120000006", WalletBalance: 39000, FreeChatUsed: true}
	database.DB.Create(&user)

	result, err := PurchaseFromWallet(user.PhoneNumber)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), result.WalletBalance)
	assert.Equal(t, 20, result.AvailableSessionMinutes)

	var purchase models.Purchase
	database.DB.Last(&purchase)
	assert.Equal(t, user.ID, purchase.UserID)
	assert.Equal(t, int64(39000), purchase.AmountPaid)

	// Minutes only ever move in 20-minute blocks.
	assert.Equal(t, 0, result.AvailableSessionMinutes%20)

	// Broke now: a second purchase is refused and changes nothing.
	_, err = PurchaseFromWallet(user.PhoneNumber)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(0), updated.WalletBalance)
	assert.Equal(t, 20, updated.AvailableSessionMinutes)
}

func TestPurchaseFromWallet_ForfeitsFreeTrial(t *testing.T) {
	setupEntitlementTestDB()
	t.Setenv("SESSION_PRICE", "39000")

	user := models.User{PhoneNumber: "09120000007", WalletBalance: 100000}
	database.DB.Create(&user)

	_, err := PurchaseFromWallet(user.PhoneNumber)
	assert.NoError(t, err)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.True(t, updated.FreeChatUsed)

	// free_chat_used is one-way: nothing ever resets it.
	_, err = PurchaseFromWallet(user.PhoneNumber)
	assert.NoError(t, err)
	database.DB.First(&updated, user.ID)
	assert.True(t, updated.FreeChatUsed)
	assert.Equal(t, 40, updated.AvailableSessionMinutes)
}

func TestStartSession_ConcurrentVersionConflict(t *testing.T) {
	setupEntitlementTestDB()

	user := models.User{PhoneNumber: "09120000008", AvailableSessionMinutes: 20}
	database.DB.Create(&user)

	// A racing writer bumps the version after StartSession has read the row
	// but before its guarded update runs, making the snapshot stale.
	raced := false
	err := database.DB.Callback().Update().Before("gorm:update").Register("racing_writer", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE users SET version = version + 1 WHERE id = ?", user.ID)
	})
	assert.NoError(t, err)
	defer database.DB.Callback().Update().Remove("racing_writer")

	grant, err := StartSession(user.PhoneNumber)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Nil(t, grant)
	assert.True(t, raced)

	// The loser's transaction rolled back: nothing was debited.
	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, 20, updated.AvailableSessionMinutes)
	assert.Nil(t, updated.SessionEndTime)
}
