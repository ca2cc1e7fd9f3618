package chat

type RespondRequest struct {
	SessionID      string `json:"sessionId" binding:"required"`
	Content        string `json:"content" binding:"required"`
	IsFirstMessage bool   `json:"isFirstMessage"`
}
