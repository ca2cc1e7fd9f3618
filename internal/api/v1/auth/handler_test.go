package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/models"
	"github.com/HadisehPourali/delyar/internal/services"
)

type fakeSender struct {
	lastPhone string
	lastCode  string
}

func (f *fakeSender) SendOTP(phone, code string) error {
	f.lastPhone = phone
	f.lastCode = code
	return nil
}

func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.Migrator().DropTable(&models.User{})
	db.AutoMigrate(&models.User{})
	database.DB = db

	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	t.Cleanup(mr.Close)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	router := gin.New()
	RegisterRoutes(router.Group("/api"))
	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestOTP_InvalidPhone(t *testing.T) {
	router := setupAuthTest(t)
	services.SetOTPSender(&fakeSender{})

	w := postJSON(router, "/api/auth/request-otp", map[string]string{"phone_number": "12345"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/auth/request-otp", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOTPLoginFlow(t *testing.T) {
	router := setupAuthTest(t)
	sender := &fakeSender{}
	services.SetOTPSender(sender)

	phone := "09127000001"
	w := postJSON(router, "/api/auth/request-otp", map[string]string{"phone_number": phone})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, phone, sender.lastPhone)

	// Wrong code is a 401 and must not create the user.
	w = postJSON(router, "/api/auth/verify-otp", map[string]string{"phone_number": phone, "otp": "000000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// Right code logs in, creates the account and sets the session cookie.
	w = postJSON(router, "/api/auth/verify-otp", map[string]string{"phone_number": phone, "otp": sender.lastCode})
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	assert.NotEmpty(t, cookies)

	var body struct {
		Data struct {
			PhoneNumber string `json:"phone_number"`
			NewUser     bool   `json:"new_user"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, phone, body.Data.PhoneNumber)
	assert.True(t, body.Data.NewUser)

	database.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// The code was single-use.
	w = postJSON(router, "/api/auth/verify-otp", map[string]string{"phone_number": phone, "otp": sender.lastCode})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyOTP_ExistingUserIsNotNew(t *testing.T) {
	router := setupAuthTest(t)
	sender := &fakeSender{}
	services.SetOTPSender(sender)

	phone := "09127000002"
	database.DB.Create(&models.User{PhoneNumber: phone, Name: "Sara"})

	w := postJSON(router, "/api/auth/request-otp", map[string]string{"phone_number": phone})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/auth/verify-otp", map[string]string{"phone_number": phone, "otp": sender.lastCode})
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Name    string `json:"name"`
			NewUser bool   `json:"new_user"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Sara", body.Data.Name)
	assert.False(t, body.Data.NewUser)
}
