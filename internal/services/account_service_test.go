package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/models"
)

func setupAccountTestDB() {
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

func TestDuplicatePhoneRejected(t *testing.T) {
	setupAccountTestDB()

	first, err := GetOrCreateUserByPhone("09125000001")
	assert.NoError(t, err)
	assert.NotNil(t, first)

	// The unique index is the authority on duplicates.
	err = database.DB.Create(&models.User{PhoneNumber: "09125000001"}).Error
	assert.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	// A lost insert race resolves to the winner's row, never a second one.
	again, err := GetOrCreateUserByPhone("09125000001")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateUserByPhone(t *testing.T) {
	setupAccountTestDB()

	created, err := GetOrCreateUserByPhone("09125000002")
	assert.NoError(t, err)

	again, err := GetOrCreateUserByPhone("09125000002")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProfile(t *testing.T) {
	setupAccountTestDB()

	user, err := GetOrCreateUserByPhone("09125000003")
	assert.NoError(t, err)

	name := "Sara"
	health := "mild anxiety"
	updated, err := UpdateProfile(user.PhoneNumber, ProfileUpdate{Name: &name, HealthNote: &health})
	assert.NoError(t, err)
	assert.Equal(t, "Sara", updated.Name)
	assert.Equal(t, "mild anxiety", updated.HealthNote)

	// Untouched fields stay untouched.
	job := "teacher"
	updated, err = UpdateProfile(user.PhoneNumber, ProfileUpdate{Job: &job})
	assert.NoError(t, err)
	assert.Equal(t, "Sara", updated.Name)
	assert.Equal(t, "teacher", updated.Job)
}

func TestAddFeedback(t *testing.T) {
	setupAccountTestDB()

	user, err := GetOrCreateUserByPhone("09125000004")
	assert.NoError(t, err)

	rating := 5
	fb, err := AddFeedback(user.PhoneNumber, "very helpful", &rating)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, fb.UserID)

	_, err = AddFeedback(user.PhoneNumber, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyComment)

	bad := 6
	_, err = AddFeedback(user.PhoneNumber, "ok", &bad)
	assert.ErrorIs(t, err, ErrInvalidRating)

	// Append-only: a second row is independent of the first.
	_, err = AddFeedback(user.PhoneNumber, "second thoughts", nil)
	assert.NoError(t, err)

	var count int64
	database.DB.Model(&models.Feedback{}).Count(&count)
	assert.Equal(t, int64(2), count)
}
