package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/services"
	"github.com/HadisehPourali/delyar/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// RequestOTP sends a one-time code to the phone number.
func (h *Handler) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !utils.IsValidPhoneNumber(req.PhoneNumber) {
		utils.RespondError(c, http.StatusBadRequest, "invalid phone number")
		return
	}

	err := services.RequestOTP(req.PhoneNumber)
	switch {
	case errors.Is(err, services.ErrOTPRateLimited):
		utils.RespondError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrSMSDelivery):
		utils.RespondError(c, http.StatusBadGateway, err.Error())
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, "could not request verification code")
	default:
		c.JSON(http.StatusOK, utils.NewSuccessResponse("verification code sent", nil))
	}
}

// VerifyOTP validates the code, creates the user on first login and issues
// the session cookie.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !utils.IsValidPhoneNumber(req.PhoneNumber) {
		utils.RespondError(c, http.StatusBadRequest, "invalid phone number")
		return
	}

	if err := services.VerifyOTP(req.PhoneNumber, req.OTP); err != nil {
		switch {
		case errors.Is(err, services.ErrOTPInvalid), errors.Is(err, services.ErrOTPExpired):
			utils.RespondError(c, http.StatusUnauthorized, err.Error())
		default:
			utils.RespondError(c, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	_, lookupErr := services.FindUserByPhone(req.PhoneNumber)
	newUser := errors.Is(lookupErr, services.ErrUserNotFound)

	user, err := services.GetOrCreateUserByPhone(req.PhoneNumber)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "could not load account")
		return
	}

	token, err := services.CreateAuthSession(user.PhoneNumber)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "could not create session")
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "configuration unavailable")
		return
	}
	c.SetCookie(cfg.SessionCookieName, token, cfg.AuthSessionTTLHours*3600, "/", "", cfg.SessionCookieSecure, true)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("logged in", VerifyOTPResponse{
		PhoneNumber: user.PhoneNumber,
		Name:        user.Name,
		NewUser:     newUser,
	}))
}

// Logout drops the server-side session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "configuration unavailable")
		return
	}

	if token, err := c.Cookie(cfg.SessionCookieName); err == nil && token != "" {
		if err := services.DeleteAuthSession(token); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "could not end session")
			return
		}
	}
	c.SetCookie(cfg.SessionCookieName, "", -1, "/", "", cfg.SessionCookieSecure, true)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("logged out", nil))
}
