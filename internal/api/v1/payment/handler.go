package payment

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

// RequestPayment starts a gateway payment (or credits immediately on a 100%
// discount) and returns the redirect URL.
func (h *Handler) RequestPayment(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req RequestPaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := services.InitiatePayment(user.PhoneNumber, req.Amount, req.SessionCount, req.DiscountCode)
	switch {
	case errors.Is(err, services.ErrAmountMismatch), errors.Is(err, services.ErrInvalidDiscountCode):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrGatewayUnavailable):
		utils.RespondError(c, http.StatusBadGateway, err.Error())
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, "could not start payment")
	default:
		c.JSON(http.StatusOK, utils.NewSuccessResponse("success", result))
	}
}

// VerifyCallback is the gateway's redirect target. It never renders JSON:
// whatever happens, the user ends up on the frontend status page.
func (h *Handler) VerifyCallback(c *gin.Context) {
	cfg, err := config.LoadConfig()
	if err != nil {
		c.String(http.StatusInternalServerError, "configuration unavailable")
		return
	}

	authority := c.Query("Authority")
	status := c.Query("Status")

	if authority == "" {
		c.Redirect(http.StatusFound, cfg.FrontendURL+"/payment-result?status="+services.PaymentStatusFailed)
		return
	}

	result, err := services.VerifyCallback(authority, status)
	if err != nil && result == "" {
		result = services.PaymentStatusFailed
	}

	c.Redirect(http.StatusFound, cfg.FrontendURL+"/payment-result?status="+result)
}
