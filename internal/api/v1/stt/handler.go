package stt

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	sttclient "github.com/HadisehPourali/delyar/internal/upstream/stt"
	"github.com/HadisehPourali/delyar/internal/utils"
)

type Handler struct {
	client *sttclient.Client
}

func NewHandler(client *sttclient.Client) *Handler {
	return &Handler{client: client}
}

// Transcribe forwards the uploaded audio file to the speech-to-text API.
func (h *Handler) Transcribe(c *gin.Context) {
	if _, ok := utils.CurrentUser(c); !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if h.client == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "audio file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.client.Transcribe(fileHeader.Filename, file)
	if err != nil {
		var apiErr *sttclient.APIError
		switch {
		case errors.Is(err, sttclient.ErrTimeout):
			utils.RespondError(c, http.StatusGatewayTimeout, "transcription timed out")
		case errors.As(err, &apiErr):
			utils.RespondError(c, http.StatusBadGateway,
				"transcription rejected (status "+strconv.Itoa(apiErr.Status)+")")
		default:
			utils.RespondError(c, http.StatusBadGateway, "transcription unavailable")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
