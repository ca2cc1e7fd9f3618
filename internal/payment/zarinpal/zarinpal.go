package zarinpal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HadisehPourali/delyar/internal/utils"
)

// Driver talks to the Zarinpal v4 JSON API (payment/request.json,
// payment/verify.json, StartPay redirect).
type Driver struct {
	APIURL     string
	PayURL     string
	MerchantID string

	client *http.Client
}

func NewDriver() *Driver {
	return &Driver{client: utils.NewHTTPClient(20 * time.Second)}
}

func (d *Driver) SetConfig(config map[string]interface{}) error {
	if val, ok := config["merchant_id"].(string); ok && val != "" {
		d.MerchantID = val
	} else {
		return errors.New("missing merchant_id in config")
	}
	if val, ok := config["api_url"].(string); ok && val != "" {
		d.APIURL = strings.TrimRight(val, "/")
	} else {
		return errors.New("missing api_url in config")
	}
	if val, ok := config["pay_url"].(string); ok && val != "" {
		d.PayURL = strings.TrimRight(val, "/")
	} else {
		return errors.New("missing pay_url in config")
	}
	return nil
}

type gatewayResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type requestData struct {
	Code      int    `json:"code"`
	Authority string `json:"authority"`
}

type verifyData struct {
	Code  int             `json:"code"`
	RefID json.RawMessage `json:"ref_id"` // number in practice, be lenient
}

type gatewayError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (d *Driver) Request(amount int64, callbackURL, description, phone string) (string, string, error) {
	payload := map[string]interface{}{
		"merchant_id":  d.MerchantID,
		"amount":       amount,
		"callback_url": callbackURL,
		"description":  description,
		"metadata":     map[string]string{"mobile": phone},
	}

	body, err := d.post(d.APIURL+"/payment/request.json", payload)
	if err != nil {
		return "", "", err
	}

	var data requestData
	if err := json.Unmarshal(body.Data, &data); err != nil || data.Code != 100 {
		return "", "", fmt.Errorf("zarinpal request rejected: %s", body.errorMessage())
	}
	if data.Authority == "" {
		return "", "", errors.New("zarinpal request returned empty authority")
	}

	return data.Authority, d.PayURL + "/" + data.Authority, nil
}

func (d *Driver) Verify(authority string, amount int64) (string, int, error) {
	payload := map[string]interface{}{
		"merchant_id": d.MerchantID,
		"amount":      amount,
		"authority":   authority,
	}

	body, err := d.post(d.APIURL+"/payment/verify.json", payload)
	if err != nil {
		return "", 0, err
	}

	var data verifyData
	if err := json.Unmarshal(body.Data, &data); err == nil && data.Code != 0 {
		return string(bytes.Trim(data.RefID, `"`)), data.Code, nil
	}

	// Failure responses carry the code in the errors object instead.
	var gerr gatewayError
	if err := json.Unmarshal(body.Errors, &gerr); err == nil && gerr.Code != 0 {
		return "", gerr.Code, nil
	}

	return "", 0, errors.New("zarinpal verify returned an unreadable response")
}

func (d *Driver) post(url string, payload map[string]interface{}) (*gatewayResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zarinpal unreachable: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var body gatewayResponse
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return nil, fmt.Errorf("zarinpal returned non-JSON (status %d)", resp.StatusCode)
	}
	return &body, nil
}

func (r *gatewayResponse) errorMessage() string {
	var gerr gatewayError
	if err := json.Unmarshal(r.Errors, &gerr); err == nil && gerr.Message != "" {
		return fmt.Sprintf("%s (code %d)", gerr.Message, gerr.Code)
	}
	return "unknown gateway error"
}
