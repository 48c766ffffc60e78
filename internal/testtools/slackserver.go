package testtools

import (
	"encoding/json"
	"github.com/slack-go/slack"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// WebhookPath is the path of the incoming webhook served by SlackServer.
const WebhookPath = "/services/T0000/B0000/XXXXXXXX"

// Channel is a conversation returned by conversations.list.
type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsMember   bool   `json:"is_member"`
	IsArchived bool   `json:"is_archived"`
}

// Post is a message received on chat.postMessage.
type Post struct {
	Channel     string
	Text        string
	Blocks      string
	Attachments string
}

// SlackServer fakes the parts of the Slack Web API and incoming webhooks that this module uses.
// Conversations are returned one per page so callers need to follow the cursor.
type SlackServer struct {
	*httptest.Server

	lock          sync.Mutex
	channels      []Channel
	webhookStatus int
	webhookBody   string
	tokens        []string
	posts         []Post
	webhooks      []slack.WebhookMessage
	raw           []string
}

func NewSlackServer() *SlackServer {
	s := SlackServer{webhookStatus: http.StatusOK, webhookBody: "ok"}
	m := http.NewServeMux()
	m.HandleFunc("POST /api/auth.test", s.authTest)
	m.HandleFunc("POST /api/conversations.list", s.conversationsList)
	m.HandleFunc("POST /api/chat.postMessage", s.postMessage)
	m.HandleFunc("POST "+WebhookPath, s.webhook)
	s.Server = httptest.NewServer(m)
	return &s
}

// APIURL is the value to pass to slack.OptionAPIURL.
func (s *SlackServer) APIURL() string {
	return s.URL + "/api/"
}

// WebhookURL is the URL of the fake incoming webhook.
func (s *SlackServer) WebhookURL() string {
	return s.URL + WebhookPath
}

// SetChannels sets the conversations returned by conversations.list.
func (s *SlackServer) SetChannels(channels []Channel) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.channels = channels
}

// SetWebhookResponse sets the status code and body returned by the incoming webhook.
func (s *SlackServer) SetWebhookResponse(status int, body string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.webhookStatus = status
	s.webhookBody = body
}

func (s *SlackServer) Tokens() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.tokens...)
}

func (s *SlackServer) Posts() []Post {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Post(nil), s.posts...)
}

func (s *SlackServer) Webhooks() []slack.WebhookMessage {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]slack.WebhookMessage(nil), s.webhooks...)
}

// RawWebhooks returns the webhook payloads as received.
func (s *SlackServer) RawWebhooks() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.raw...)
}

func (s *SlackServer) recordToken(r *http.Request) string {
	_ = r.ParseForm()
	token := r.FormValue("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	s.lock.Lock()
	s.tokens = append(s.tokens, token)
	s.lock.Unlock()
	return token
}

func (s *SlackServer) authTest(w http.ResponseWriter, r *http.Request) {
	if s.recordToken(r) == "" {
		writeJSON(w, map[string]any{"ok": false, "error": "not_authed"})
		return
	}
	writeJSON(w, map[string]any{"ok": true, "user_id": "U0BOT", "user": "bot", "team": "team"})
}

func (s *SlackServer) conversationsList(w http.ResponseWriter, r *http.Request) {
	s.recordToken(r)
	page, _ := strconv.Atoi(r.FormValue("cursor"))

	s.lock.Lock()
	all := s.channels
	s.lock.Unlock()

	var channels []Channel
	var next string
	if page < len(all) {
		channels = []Channel{all[page]}
		if page+1 < len(all) {
			next = strconv.Itoa(page + 1)
		}
	}
	writeJSON(w, map[string]any{
		"ok":                true,
		"channels":          channels,
		"response_metadata": map[string]string{"next_cursor": next},
	})
}

func (s *SlackServer) postMessage(w http.ResponseWriter, r *http.Request) {
	s.recordToken(r)
	p := Post{
		Channel:     r.FormValue("channel"),
		Text:        r.FormValue("text"),
		Blocks:      r.FormValue("blocks"),
		Attachments: r.FormValue("attachments"),
	}
	s.lock.Lock()
	s.posts = append(s.posts, p)
	s.lock.Unlock()
	writeJSON(w, map[string]any{"ok": true, "channel": p.Channel, "ts": "1700000000.000100"})
}

func (s *SlackServer) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var msg slack.WebhookMessage
	if err = json.Unmarshal(body, &msg); err != nil {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
		return
	}
	s.lock.Lock()
	s.webhooks = append(s.webhooks, msg)
	s.raw = append(s.raw, string(body))
	status, reply := s.webhookStatus, s.webhookBody
	s.lock.Unlock()

	w.WriteHeader(status)
	_, _ = w.Write([]byte(reply))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
