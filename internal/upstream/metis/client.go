package metis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/HadisehPourali/delyar/internal/utils"
)

// APIError is a non-2xx answer from the Metis API, surfaced with the
// upstream status so handlers can map it to 502.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("metis api returned status %d: %s", e.Status, e.Body)
}

// ErrTimeout marks an upstream call that exceeded its deadline.
var ErrTimeout = errors.New("metis api timed out")

// Message is one chat message in Metis wire shape.
type Message struct {
	Content string `json:"content"`
	Type    string `json:"type"` // "USER" or "AI"
}

// SessionUser identifies the end user to Metis.
type SessionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is a thin pass-through client for the Metis chat API. Session and
// listing calls get the short timeout; message calls can run much longer
// while the model generates.
type Client struct {
	baseURL string
	apiKey  string

	sessionClient *http.Client
	messageClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		sessionClient: utils.NewHTTPClient(20 * time.Second),
		messageClient: utils.NewHTTPClient(90 * time.Second),
	}
}

// CreateSession opens a chat session with the bot, optionally seeding
// initial messages and the user identity.
func (c *Client) CreateSession(botID string, user *SessionUser, initialMessages []Message) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"botId":           botID,
		"user":            user,
		"initialMessages": nil,
	}
	if len(initialMessages) > 0 {
		payload["initialMessages"] = initialMessages
	}

	var out map[string]interface{}
	err := c.do(c.sessionClient, http.MethodPost, "/chat/session", payload, &out)
	return out, err
}

// SendMessage posts one user message and returns the bot's reply object.
func (c *Client) SendMessage(sessionID, content string) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"message": Message{Content: content, Type: "USER"},
	}

	var out map[string]interface{}
	err := c.do(c.messageClient, http.MethodPost, "/chat/session/"+url.PathEscape(sessionID)+"/message", payload, &out)
	return out, err
}

// ListSessions returns the user's session summaries, paginated.
func (c *Client) ListSessions(userID string, page, size int) ([]interface{}, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out []interface{}
	err := c.do(c.sessionClient, http.MethodGet, "/chat/session?"+q.Encode(), nil, &out)
	return out, err
}

// GetSession returns one session with its full message history.
func (c *Client) GetSession(sessionID string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(c.sessionClient, http.MethodGet, "/chat/session/"+url.PathEscape(sessionID), nil, &out)
	return out, err
}

func (c *Client) do(client *http.Client, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			return ErrTimeout
		}
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil || len(bodyBytes) == 0 {
		return nil
	}
	return json.Unmarshal(bodyBytes, out)
}
