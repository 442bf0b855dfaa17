package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/config"
	"github.com/frontdeskhq/frontdesk/internal/conversation"
	"github.com/frontdeskhq/frontdesk/internal/db"
	"github.com/frontdeskhq/frontdesk/internal/gateway"
	"github.com/frontdeskhq/frontdesk/internal/orchestrator"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errTest = errors.New("model down")

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	store    *conversation.Store
	model    *gateway.MockChatModel
	sessions *SessionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := conversation.NewStore(gdb)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	model := gateway.NewMockChatModel()
	gw, err := gateway.New(gateway.Opts{Model: model})
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	turns, err := orchestrator.New(orchestrator.Opts{
		Store: store,
		Reply: gw,
		Chat:  config.ChatConfig{MinNewChatLength: 5},
	})
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	sessions := NewSessionStore(time.Hour)
	router := NewRouter(Deps{
		DB:       gdb,
		Store:    store,
		Turns:    turns,
		Sessions: sessions,
		Admin:    config.AdminConfig{Username: "admin", Password: "secret", SessionTTLMinutes: 60},
	})

	return &testServer{router: router, db: gdb, store: store, model: model, sessions: sessions}
}

// do performs a JSON request against the test router.
func (ts *testServer) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// login authenticates as the test admin and returns the session cookie.
func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/admin/login", map[string]string{
		"username": "admin",
		"password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookie {
			return ck
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestChatSendNewConversation(t *testing.T) {
	ts := newTestServer(t)
	ts.model.QueueReply("Sure, let me check order #123 for you.")

	w := ts.do(t, http.MethodPost, "/chat", map[string]string{
		"message": "I need help with my order #123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeJSON(t, w)
	if body["message"] != "Sent" {
		t.Errorf("message = %v", body["message"])
	}
	data := body["data"].(map[string]interface{})
	convID, _ := data["conversation_id"].(string)
	if !conversation.ValidID(convID) {
		t.Errorf("conversation_id = %q", convID)
	}
	if data["reply"] != "Sure, let me check order #123 for you." {
		t.Errorf("reply = %v", data["reply"])
	}
	if data["id"] == "" {
		t.Error("missing message id")
	}

	// Fresh conversation: active status, neutral mood until enrichment runs.
	conv, err := ts.store.Get(convID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if conv.Status != "active" {
		t.Errorf("status = %q, want active", conv.Status)
	}
	if conv.Mood != "neutral" {
		t.Errorf("mood = %q, want neutral", conv.Mood)
	}
}

func TestChatSendExistingConversation(t *testing.T) {
	ts := newTestServer(t)
	ts.model.QueueReply("first")
	ts.model.QueueReply("second")

	w := ts.do(t, http.MethodPost, "/chat", map[string]string{"message": "hello there"})
	convID := decodeJSON(t, w)["data"].(map[string]interface{})["conversation_id"].(string)

	w = ts.do(t, http.MethodPost, "/chat", map[string]string{
		"conversation_id": convID,
		"message":         "and another thing",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	count, _ := ts.store.MessageCount(convID)
	if count != 4 {
		t.Errorf("message count = %d, want 4", count)
	}
}

func TestChatSendValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"empty message", map[string]string{"message": "   "}, http.StatusBadRequest},
		{"malformed id", map[string]string{"conversation_id": "DROP TABLE", "message": "hi"}, http.StatusBadRequest},
		{"unknown conversation", map[string]string{"conversation_id": "cv-zzzzzz", "message": "hi"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/chat", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestChatSendKilledConversation(t *testing.T) {
	ts := newTestServer(t)
	ts.model.QueueReply("hello")

	w := ts.do(t, http.MethodPost, "/chat", map[string]string{"message": "hello there"})
	convID := decodeJSON(t, w)["data"].(map[string]interface{})["conversation_id"].(string)

	if err := ts.store.Kill(convID); err != nil {
		t.Fatalf("kill: %v", err)
	}
	before, _ := ts.store.MessageCount(convID)

	w = ts.do(t, http.MethodPost, "/chat", map[string]string{
		"conversation_id": convID,
		"message":         "hello?",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
	body := decodeJSON(t, w)
	if body["error"] != "conversation_closed" {
		t.Errorf("error code = %v", body["error"])
	}
	msg, _ := body["message"].(string)
	if !bytes.Contains([]byte(msg), []byte("closed and cannot accept new messages")) {
		t.Errorf("message = %q missing contract string", msg)
	}

	after, _ := ts.store.MessageCount(convID)
	if after != before {
		t.Errorf("message count changed %d -> %d on killed conversation", before, after)
	}
}

func TestChatSendReactivatedConversation(t *testing.T) {
	ts := newTestServer(t)
	ts.model.QueueReply("hello")
	ts.model.QueueReply("welcome back")

	w := ts.do(t, http.MethodPost, "/chat", map[string]string{"message": "hello there"})
	convID := decodeJSON(t, w)["data"].(map[string]interface{})["conversation_id"].(string)

	if err := ts.store.Kill(convID); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if err := ts.store.Reactivate(convID); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	w = ts.do(t, http.MethodPost, "/chat", map[string]string{
		"conversation_id": convID,
		"message":         "I'm back",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status after reactivate = %d: %s", w.Code, w.Body.String())
	}
}

func TestChatNewFormRedirects(t *testing.T) {
	ts := newTestServer(t)
	ts.model.QueueReply("welcome")

	form := "message=I+want+to+build+a+store"
	req := httptest.NewRequest(http.MethodPost, "/chat/new", bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	loc := w.Header().Get("Location")
	if len(loc) < len("/chat/view/cv-") || loc[:len("/chat/view/")] != "/chat/view/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestChatNewFormTooShort(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/new", bytes.NewBufferString("message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	loc := w.Header().Get("Location")
	if !bytes.Contains([]byte(loc), []byte("error=")) {
		t.Errorf("Location = %q, want error param", loc)
	}
}

func TestChatHistory(t *testing.T) {
	ts := newTestServer(t)
	ts.model.QueueReply("hi there")

	w := ts.do(t, http.MethodPost, "/chat", map[string]string{"message": "hello there"})
	convID := decodeJSON(t, w)["data"].(map[string]interface{})["conversation_id"].(string)

	w = ts.do(t, http.MethodGet, "/chat/"+convID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeJSON(t, w)["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("history has %d messages, want 2", len(data))
	}
	first := data[0].(map[string]interface{})
	if first["role"] != "user" || first["body"] != "hello there" {
		t.Errorf("first message = %v", first)
	}
}

func TestChatHistoryBadID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/chat/not-a-real-id", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/chat/cv-zzzzzz", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown id = %d, want 404", w.Code)
	}
}

func TestChatSendFallbackOnModelFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.model.QueueError(errTest)
	ts.model.QueueError(errTest)

	w := ts.do(t, http.MethodPost, "/chat", map[string]string{"message": "hello there"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	if data["reply"] != orchestrator.FallbackReply {
		t.Errorf("reply = %v, want fallback", data["reply"])
	}
}
