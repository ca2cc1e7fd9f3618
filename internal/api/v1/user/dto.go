package user

type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	Gender     *string `json:"gender"`
	Age        *string `json:"age"`
	Education  *string `json:"education"`
	Job        *string `json:"job"`
	HealthNote *string `json:"health_note"`
}

type ProfileResponse struct {
	PhoneNumber             string `json:"phone_number"`
	Name                    string `json:"name"`
	Gender                  string `json:"gender"`
	Age                     string `json:"age"`
	Education               string `json:"education"`
	Job                     string `json:"job"`
	HealthNote              string `json:"health_note"`
	WalletBalance           int64  `json:"wallet_balance"`
	FreeChatUsed            bool   `json:"free_chat_used"`
	AvailableSessionMinutes int    `json:"available_session_minutes"`
}

type FeedbackRequest struct {
	Comment string `json:"comment" binding:"required"`
	Rating  *int   `json:"rating"`
}
