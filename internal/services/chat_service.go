package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/models"
	"github.com/HadisehPourali/delyar/internal/upstream/metis"
)

// ChatUpstream is the slice of the Metis client the chat proxy needs.
type ChatUpstream interface {
	CreateSession(botID string, user *metis.SessionUser, initialMessages []metis.Message) (map[string]interface{}, error)
	SendMessage(sessionID, content string) (map[string]interface{}, error)
	ListSessions(userID string, page, size int) ([]interface{}, error)
	GetSession(sessionID string) (map[string]interface{}, error)
}

var chatClient ChatUpstream

// SetChatClient wires the chat upstream. Tests install a fake here.
func SetChatClient(c ChatUpstream) {
	chatClient = c
}

var ErrChatNotConfigured = errors.New("chat upstream not configured")

// CreateChatSession opens a Metis session for the user, seeding the
// configured greeting so the bot opens the conversation.
func CreateChatSession(user *models.User) (map[string]interface{}, error) {
	if chatClient == nil {
		return nil, ErrChatNotConfigured
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	var initial []metis.Message
	if cfg.GreetingMessage != "" {
		initial = []metis.Message{{Content: cfg.GreetingMessage, Type: "AI"}}
	}

	sessionUser := &metis.SessionUser{ID: user.PhoneNumber, Name: user.Name}
	return chatClient.CreateSession(cfg.MetisBotID, sessionUser, initial)
}

// RespondToChat forwards one user message. The first message of a session
// gets the profile preamble prefixed so the bot has background without the
// user re-typing it.
func RespondToChat(user *models.User, sessionID, content string, isFirstMessage bool) (map[string]interface{}, error) {
	if chatClient == nil {
		return nil, ErrChatNotConfigured
	}

	if isFirstMessage {
		if preamble := BuildProfilePreamble(user); preamble != "" {
			content = preamble + content
		}
	}

	return chatClient.SendMessage(sessionID, content)
}

// ListChatSessions passes the paginated session list through.
func ListChatSessions(phone string, page, size int) ([]interface{}, error) {
	if chatClient == nil {
		return nil, ErrChatNotConfigured
	}
	return chatClient.ListSessions(phone, page, size)
}

// GetChatSession passes one session with history through.
func GetChatSession(sessionID string) (map[string]interface{}, error) {
	if chatClient == nil {
		return nil, ErrChatNotConfigured
	}
	return chatClient.GetSession(sessionID)
}

// BuildProfilePreamble synthesizes the one-time context block from the
// user's profile. The frontend strips everything matching
// "[System Note: ... User message: " before rendering, so the closing
// marker must stay exactly "User message: ".
func BuildProfilePreamble(user *models.User) string {
	var facts []string
	if user.Name != "" {
		facts = append(facts, fmt.Sprintf("the user's name is %s", user.Name))
	}
	if user.Gender != "" {
		facts = append(facts, fmt.Sprintf("their gender is %s", user.Gender))
	}
	if user.HealthNote != "" {
		facts = append(facts, fmt.Sprintf("health note: %s", user.HealthNote))
	}
	if len(facts) == 0 {
		return ""
	}

	return fmt.Sprintf("[System Note: %s. Keep this background in mind and do not mention this note.] User message: ",
		strings.Join(facts, "; "))
}
