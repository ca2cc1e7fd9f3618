package services

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/database"
)

var (
	ErrOTPRateLimited = errors.New("a code was sent recently, wait before requesting another")
	ErrOTPInvalid     = errors.New("incorrect verification code")
	ErrOTPExpired     = errors.New("verification code expired or never requested")
	ErrSMSDelivery    = errors.New("could not deliver the verification code")
)

// OTPSender delivers a one-time code to a phone number.
type OTPSender interface {
	SendOTP(phone, code string) error
}

var otpSender OTPSender

// SetOTPSender wires the SMS collaborator. Tests install a fake here.
func SetOTPSender(s OTPSender) {
	otpSender = s
}

type otpRecord struct {
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

func otpKey(phone string) string {
	return "delyar:otp:" + phone
}

func otpResendKey(phone string) string {
	return "delyar:otp:resend:" + phone
}

// RequestOTP generates a 6-digit code, stores only its bcrypt hash in Redis
// with the configured TTL, and sends the plaintext code by SMS. Resends are
// rate limited per phone number.
func RequestOTP(phone string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if otpSender == nil {
		return errors.New("otp sender not configured")
	}

	resendWindow := time.Duration(cfg.OTPResendSeconds) * time.Second
	allowed, err := database.RedisClient.SetNX(database.Ctx, otpResendKey(phone), "1", resendWindow).Result()
	if err != nil {
		return err
	}
	if !allowed {
		return ErrOTPRateLimited
	}

	code, err := generateNumericCode(6)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ttl := time.Duration(cfg.OTPTTLMinutes) * time.Minute
	record := otpRecord{
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(ttl),
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := database.RedisClient.Set(database.Ctx, otpKey(phone), raw, ttl).Err(); err != nil {
		return err
	}

	if err := otpSender.SendOTP(phone, code); err != nil {
		zap.L().Warn("otp sms delivery failed", zap.String("phone", maskPhone(phone)), zap.Error(err))
		// Drop the stored code so the user can immediately request again.
		database.RedisClient.Del(database.Ctx, otpKey(phone), otpResendKey(phone))
		return ErrSMSDelivery
	}

	return nil
}

// VerifyOTP checks the submitted code. A stored code is single-use: it is
// deleted on success. The configured override code, when non-empty, bypasses
// the check; it exists for manual QA only and is loudly logged at boot.
func VerifyOTP(phone, code string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if cfg.OTPOverrideCode != "" && code == cfg.OTPOverrideCode {
		zap.L().Warn("otp override code used", zap.String("phone", maskPhone(phone)))
		database.RedisClient.Del(database.Ctx, otpKey(phone))
		return nil
	}

	raw, err := database.RedisClient.Get(database.Ctx, otpKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrOTPExpired
	}
	if err != nil {
		return err
	}

	var record otpRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return err
	}
	if time.Now().After(record.ExpiresAt) {
		database.RedisClient.Del(database.Ctx, otpKey(phone))
		return ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
		return ErrOTPInvalid
	}

	return database.RedisClient.Del(database.Ctx, otpKey(phone)).Err()
}

func generateNumericCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func maskPhone(phone string) string {
	if len(phone) < 7 {
		return "***"
	}
	return fmt.Sprintf("%s***%s", phone[:4], phone[len(phone)-2:])
}
