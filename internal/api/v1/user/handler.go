package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/internal/models"
	"github.com/HadisehPourali/delyar/internal/services"
	"github.com/HadisehPourali/delyar/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func profileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		PhoneNumber:             u.PhoneNumber,
		Name:                    u.Name,
		Gender:                  u.Gender,
		Age:                     u.Age,
		Education:               u.Education,
		Job:                     u.Job,
		HealthNote:              u.HealthNote,
		WalletBalance:           u.WalletBalance,
		FreeChatUsed:            u.FreeChatUsed,
		AvailableSessionMinutes: u.AvailableSessionMinutes,
	}
}

// GetProfile returns the caller's profile and balances.
func (h *Handler) GetProfile(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", profileResponse(user)))
}

// UpdateProfile applies the provided optional fields.
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := services.UpdateProfile(user.PhoneNumber, services.ProfileUpdate{
		Name:       req.Name,
		Gender:     req.Gender,
		Age:        req.Age,
		Education:  req.Education,
		Job:        req.Job,
		HealthNote: req.HealthNote,
	})
	switch {
	case errors.Is(err, services.ErrConcurrentUpdate):
		utils.RespondError(c, http.StatusConflict, err.Error())
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, "could not update profile")
	default:
		c.JSON(http.StatusOK, utils.NewSuccessResponse("profile updated", profileResponse(updated)))
	}
}

// AddFeedback appends one feedback row.
func (h *Handler) AddFeedback(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req FeedbackRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	_, err := services.AddFeedback(user.PhoneNumber, req.Comment, req.Rating)
	switch {
	case errors.Is(err, services.ErrEmptyComment), errors.Is(err, services.ErrInvalidRating):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, "could not save feedback")
	default:
		c.JSON(http.StatusOK, utils.NewSuccessResponse("feedback saved", nil))
	}
}
