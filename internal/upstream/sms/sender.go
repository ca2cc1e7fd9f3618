package sms

import (
	"errors"

	"github.com/kavenegar/kavenegar-go"
)

// Sender delivers OTP codes through the Kavenegar verify-lookup API.
type Sender struct {
	api      *kavenegar.Kavenegar
	template string
}

func NewSender(apiKey, template string) (*Sender, error) {
	if apiKey == "" {
		return nil, errors.New("kavenegar api key is required")
	}
	if template == "" {
		return nil, errors.New("kavenegar otp template is required")
	}
	return &Sender{
		api:      kavenegar.New(apiKey),
		template: template,
	}, nil
}

// SendOTP sends the code to the phone number using the configured lookup
// template. No retries; the caller decides what a delivery failure means.
func (s *Sender) SendOTP(phone, code string) error {
	_, err := s.api.Verify.Lookup(phone, s.template, code, nil)
	return err
}
