package auth

type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
}

type VerifyOTPResponse struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
	NewUser     bool   `json:"new_user"`
}
