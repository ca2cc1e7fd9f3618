package services

import (
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/database"
)

// Authenticated browser sessions are opaque tokens mapped to a phone number
// in Redis. There is no token-based API auth; the cookie is the identity.

func authSessionKey(token string) string {
	return "delyar:session:" + token
}

// CreateAuthSession issues a fresh session token for the phone number.
func CreateAuthSession(phone string) (string, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", err
	}

	token := uuid.New().String()
	ttl := time.Duration(cfg.AuthSessionTTLHours) * time.Hour
	if err := database.RedisClient.Set(database.Ctx, authSessionKey(token), phone, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// GetAuthSessionPhone resolves a session token. The second return is false
// for unknown or expired tokens.
func GetAuthSessionPhone(token string) (string, bool, error) {
	phone, err := database.RedisClient.Get(database.Ctx, authSessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return phone, true, nil
}

// DeleteAuthSession logs the token out.
func DeleteAuthSession(token string) error {
	err := database.RedisClient.Del(database.Ctx, authSessionKey(token)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
