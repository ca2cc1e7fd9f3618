package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/internal/services"
	"github.com/HadisehPourali/delyar/internal/upstream/metis"
	"github.com/HadisehPourali/delyar/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// CheckAccess reports the user's current chat entitlement.
func (h *Handler) CheckAccess(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := services.CheckAccess(user.PhoneNumber)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "could not check access")
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", result))
}

// StartSession opens (or returns) the active chat window.
func (h *Handler) StartSession(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	grant, err := services.StartSession(user.PhoneNumber)
	switch {
	case errors.Is(err, services.ErrNeedsPurchase):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConcurrentUpdate):
		utils.RespondError(c, http.StatusConflict, err.Error())
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, "could not start session")
	default:
		c.JSON(http.StatusOK, utils.NewSuccessResponse("session started", grant))
	}
}

// PurchaseSession buys 20 minutes from the wallet.
func (h *Handler) PurchaseSession(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := services.PurchaseFromWallet(user.PhoneNumber)
	switch {
	case errors.Is(err, services.ErrInsufficientFunds):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConcurrentUpdate):
		utils.RespondError(c, http.StatusConflict, err.Error())
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, "could not complete purchase")
	default:
		c.JSON(http.StatusOK, utils.NewSuccessResponse("purchase complete", result))
	}
}

// CreateSession proxies session creation to the chat API.
func (h *Handler) CreateSession(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	session, err := services.CreateChatSession(user)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Respond proxies one user message to the chat API.
func (h *Handler) Respond(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req RespondRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	reply, err := services.RespondToChat(user, req.SessionID, req.Content, req.IsFirstMessage)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ListSessions returns the caller's chat history summaries.
func (h *Handler) ListSessions(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	sessions, err := services.ListChatSessions(user.PhoneNumber, page, size)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	if sessions == nil {
		sessions = []interface{}{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one chat session with its messages.
func (h *Handler) GetSession(c *gin.Context) {
	if _, ok := utils.CurrentUser(c); !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	session, err := services.GetChatSession(c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// respondUpstreamError maps chat upstream failures: timeouts to 504, other
// upstream rejections to 502 with the upstream status surfaced.
func respondUpstreamError(c *gin.Context, err error) {
	var apiErr *metis.APIError
	switch {
	case errors.Is(err, metis.ErrTimeout):
		utils.RespondError(c, http.StatusGatewayTimeout, "chat service timed out")
	case errors.As(err, &apiErr):
		utils.RespondError(c, http.StatusBadGateway,
			"chat service rejected the request (status "+strconv.Itoa(apiErr.Status)+")")
	default:
		utils.RespondError(c, http.StatusBadGateway, "chat service unavailable")
	}
}
