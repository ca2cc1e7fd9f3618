package payment

type RequestPaymentRequest struct {
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	SessionCount int    `json:"session_count" binding:"required,gte=1"`
	DiscountCode string `json:"discount_code"`
}
