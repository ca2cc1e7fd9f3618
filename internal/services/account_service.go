package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmptyComment     = errors.New("feedback comment must not be empty")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrConcurrentUpdate = errors.New("user was modified by another request, please retry")
)

func FindUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreateUserByPhone returns the existing user for the phone number or
// creates a fresh row. The unique index on phone_number is the authority on
// duplicates: a lost insert race reads back the winner's row.
func GetOrCreateUserByPhone(phone string) (*models.User, error) {
	user, err := FindUserByPhone(phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	fresh := &models.User{PhoneNumber: phone}
	if err := database.DB.Create(fresh).Error; err != nil {
		if isUniqueViolation(err) {
			return FindUserByPhone(phone)
		}
		return nil, err
	}
	return fresh, nil
}

// ProfileUpdate carries the optional free-text profile fields.
type ProfileUpdate struct {
	Name       *string
	Gender     *string
	Age        *string
	Education  *string
	Job        *string
	HealthNote *string
}

// UpdateProfile applies the provided fields with an optimistic version
// check, so a concurrent entitlement mutation cannot be silently overwritten.
func UpdateProfile(phone string, upd ProfileUpdate) (*models.User, error) {
	var updated models.User
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("phone_number = ?", phone).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		updates := map[string]interface{}{"version": user.Version + 1}
		if upd.Name != nil {
			updates["name"] = *upd.Name
		}
		if upd.Gender != nil {
			updates["gender"] = *upd.Gender
		}
		if upd.Age != nil {
			updates["age"] = *upd.Age
		}
		if upd.Education != nil {
			updates["education"] = *upd.Education
		}
		if upd.Job != nil {
			updates["job"] = *upd.Job
		}
		if upd.HealthNote != nil {
			updates["health_note"] = *upd.HealthNote
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

		return tx.First(&updated, user.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AddFeedback appends one feedback row. Comments are required; rating is
// optional but range-checked.
func AddFeedback(phone, comment string, rating *int) (*models.Feedback, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, ErrEmptyComment
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ErrInvalidRating
	}

	user, err := FindUserByPhone(phone)
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		UserID:  user.ID,
		Comment: comment,
		Rating:  rating,
	}
	if err := database.DB.Create(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres and sqlite phrase the violation differently.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
