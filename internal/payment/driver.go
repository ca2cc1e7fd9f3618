package payment

// Verification result codes, normalized across drivers.
const (
	CodeVerified        = 100
	CodeAlreadyVerified = 101
)

// Driver is the interface every payment gateway driver implements.
type Driver interface {
	// SetConfig applies the gateway configuration blob (merchant id,
	// endpoint URLs) stored in the PaymentConfig row.
	SetConfig(config map[string]interface{}) error

	// Request asks the gateway to open a payment of amount Toman and
	// returns the authority token plus the URL the client is redirected to.
	Request(amount int64, callbackURL, description, phone string) (authority string, payURL string, err error)

	// Verify confirms a callback with the gateway. It returns the gateway
	// reference id and a normalized result code (CodeVerified,
	// CodeAlreadyVerified, or the raw gateway failure code).
	Verify(authority string, amount int64) (refID string, code int, err error)
}
