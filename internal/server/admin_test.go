package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/models"
)

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}},
		{"wrong username", map[string]string{"username": "root", "password": "secret"}},
		{"empty", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/admin/login", tt.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAdminAPIRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/admin/api/conversations", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status = %d, want 401", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/admin/api/conversations", nil,
		&http.Cookie{Name: SessionCookie, Value: "forged"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("forged cookie: status = %d, want 401", w.Code)
	}
}

func TestAdminLogoutInvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	w := ts.do(t, http.MethodGet, "/admin/api/stats", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("before logout: status = %d", w.Code)
	}

	ts.do(t, http.MethodPost, "/admin/logout", nil, ck)

	w = ts.do(t, http.MethodGet, "/admin/api/stats", nil, ck)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("after logout: status = %d, want 401", w.Code)
	}
}

func TestConversationListRollups(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	conv, _ := ts.store.Create("", "")
	ts.store.AppendMessage(conv.ID, models.RoleUser, "first question")
	ts.store.AppendMessage(conv.ID, models.RoleAssistant, "an answer")
	empty, _ := ts.store.Create("", "")

	w := ts.do(t, http.MethodGet, "/admin/api/conversations", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	rows := decodeJSON(t, w)["data"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("listed %d conversations, want 2", len(rows))
	}

	byID := map[string]map[string]interface{}{}
	for _, r := range rows {
		row := r.(map[string]interface{})
		byID[row["id"].(string)] = row
	}

	got := byID[conv.ID]
	if got["message_count"].(float64) != 2 {
		t.Errorf("message_count = %v, want 2", got["message_count"])
	}
	if got["last_message"] != "an answer" {
		t.Errorf("last_message = %v", got["last_message"])
	}
	if got["last_message_at"] == nil {
		t.Error("last_message_at should be set")
	}

	emptyRow := byID[empty.ID]
	if emptyRow["message_count"].(float64) != 0 {
		t.Errorf("empty conversation message_count = %v", emptyRow["message_count"])
	}
	if emptyRow["last_message_at"] != nil {
		t.Errorf("empty conversation last_message_at = %v", emptyRow["last_message_at"])
	}
}

func TestConversationListPagination(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	for i := 0; i < 5; i++ {
		ts.store.Create("", "")
	}

	w := ts.do(t, http.MethodGet, "/admin/api/conversations?limit=2&offset=0", nil, ck)
	first := decodeJSON(t, w)["data"].([]interface{})
	if len(first) != 2 {
		t.Fatalf("page 1 has %d rows, want 2", len(first))
	}

	w = ts.do(t, http.MethodGet, "/admin/api/conversations?limit=2&offset=4", nil, ck)
	last := decodeJSON(t, w)["data"].([]interface{})
	if len(last) != 1 {
		t.Errorf("final page has %d rows, want 1", len(last))
	}
}

func TestConversationDetail(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	conv, _ := ts.store.Create("", "")
	ts.store.AppendMessage(conv.ID, models.RoleUser, "hello")

	w := ts.do(t, http.MethodGet, "/admin/api/conversations/"+conv.ID, nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	if data["id"] != conv.ID || data["status"] != "active" {
		t.Errorf("detail = %v", data)
	}
	msgs := data["messages"].([]interface{})
	if len(msgs) != 1 {
		t.Errorf("detail has %d messages, want 1", len(msgs))
	}

	w = ts.do(t, http.MethodGet, "/admin/api/conversations/cv-zzzzzz", nil, ck)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}
}

func TestKillAndReactivate(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	conv, _ := ts.store.Create("", "")

	w := ts.do(t, http.MethodPost, "/admin/api/conversations/"+conv.ID+"/kill", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("kill status = %d: %s", w.Code, w.Body.String())
	}
	got, _ := ts.store.Get(conv.ID)
	if got.Status != models.ConversationKilled {
		t.Errorf("status after kill = %q", got.Status)
	}

	w = ts.do(t, http.MethodPost, "/admin/api/conversations/"+conv.ID+"/reactivate", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("reactivate status = %d: %s", w.Code, w.Body.String())
	}
	got, _ = ts.store.Get(conv.ID)
	if got.Status != models.ConversationActive {
		t.Errorf("status after reactivate = %q", got.Status)
	}

	w = ts.do(t, http.MethodPost, "/admin/api/conversations/cv-zzzzzz/kill", nil, ck)
	if w.Code != http.StatusNotFound {
		t.Errorf("kill unknown: status = %d, want 404", w.Code)
	}
}

func TestMoodHistoryAndTrend(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	conv, _ := ts.store.Create("", "")
	// frustrated(2) -> neutral(3) -> happy(5) -> happy(5): 2 improving, 1 stable.
	for _, m := range []string{"frustrated", "neutral", "happy", "happy"} {
		if err := ts.store.RecordMood(conv.ID, m, ""); err != nil {
			t.Fatalf("record mood: %v", err)
		}
	}

	w := ts.do(t, http.MethodGet, "/admin/api/conversations/"+conv.ID+"/mood", nil, ck)
	entries := decodeJSON(t, w)["data"].([]interface{})
	if len(entries) != 4 {
		t.Fatalf("mood history has %d entries, want 4", len(entries))
	}
	if entries[0].(map[string]interface{})["mood"] != "frustrated" {
		t.Errorf("first entry = %v", entries[0])
	}

	w = ts.do(t, http.MethodGet, "/admin/api/conversations/"+conv.ID+"/trend", nil, ck)
	trend := decodeJSON(t, w)["data"].(map[string]interface{})
	improving := trend["improving"].(float64)
	declining := trend["declining"].(float64)
	stable := trend["stable"].(float64)
	if improving != 2 || declining != 0 || stable != 1 {
		t.Errorf("trend = %v", trend)
	}
	if improving+declining+stable != 3 {
		t.Errorf("trend buckets sum to %v, want n-1 = 3", improving+declining+stable)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	conv, _ := ts.store.Create("", "")

	w := ts.do(t, http.MethodGet, "/admin/api/conversations/"+conv.ID+"/summary", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if data := decodeJSON(t, w)["data"]; data != nil {
		t.Errorf("summary before any write = %v, want null", data)
	}

	ts.store.SaveSummary(conv.ID, "older")
	ts.store.SaveSummary(conv.ID, "newest summary")

	w = ts.do(t, http.MethodGet, "/admin/api/conversations/"+conv.ID+"/summary", nil, ck)
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	if data["body"] != "newest summary" {
		t.Errorf("summary body = %v", data["body"])
	}
}

func TestStatsAverages(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	// Three conversations with 2, 4, and 6 messages.
	for i, n := range []int{2, 4, 6} {
		conv, _ := ts.store.Create(fmt.Sprintf("c%d", i), "")
		for j := 0; j < n; j++ {
			role := models.RoleUser
			if j%2 == 1 {
				role = models.RoleAssistant
			}
			ts.store.AppendMessage(conv.ID, role, fmt.Sprintf("msg %d", j))
		}
	}

	w := ts.do(t, http.MethodGet, "/admin/api/stats", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	if data["total_conversations"].(float64) != 3 {
		t.Errorf("total_conversations = %v", data["total_conversations"])
	}
	if data["total_messages"].(float64) != 12 {
		t.Errorf("total_messages = %v", data["total_messages"])
	}
	if data["average_messages_per_conversation"].(float64) != 4 {
		t.Errorf("average = %v", data["average_messages_per_conversation"])
	}
	moods := data["mood_counts"].(map[string]interface{})
	if moods["neutral"].(float64) != 3 {
		t.Errorf("mood_counts = %v", moods)
	}
}

func TestProductCRUDOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ck := ts.login(t)

	// Create.
	w := ts.do(t, http.MethodPost, "/admin/api/products", map[string]interface{}{
		"name":        "E-Commerce Store Build",
		"price":       5000.0,
		"description": "Full storefront",
	}, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	created := decodeJSON(t, w)["data"].(map[string]interface{})
	id := int(created["id"].(float64))
	if id == 0 {
		t.Fatal("created product has no id")
	}

	// Validation failure.
	w = ts.do(t, http.MethodPost, "/admin/api/products", map[string]interface{}{
		"name": "", "price": -1.0,
	}, ck)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid create status = %d, want 400", w.Code)
	}

	// Update.
	w = ts.do(t, http.MethodPut, fmt.Sprintf("/admin/api/products/%d", id), map[string]interface{}{
		"price": 5500.0,
	}, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	updated := decodeJSON(t, w)["data"].(map[string]interface{})
	if updated["price"].(float64) != 5500 {
		t.Errorf("updated price = %v", updated["price"])
	}
	if updated["name"] != "E-Commerce Store Build" {
		t.Errorf("update clobbered name: %v", updated["name"])
	}

	// List.
	w = ts.do(t, http.MethodGet, "/admin/api/products", nil, ck)
	if got := len(decodeJSON(t, w)["data"].([]interface{})); got != 1 {
		t.Errorf("list has %d products, want 1", got)
	}

	// Delete.
	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/admin/api/products/%d", id), nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/admin/api/products/%d", id), nil, ck)
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", w.Code)
	}
}

func TestSessionStoreTTL(t *testing.T) {
	s := NewSessionStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	token, err := s.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !s.Valid(token) {
		t.Error("fresh token should be valid")
	}

	now = now.Add(2 * time.Minute)
	if s.Valid(token) {
		t.Error("expired token should be invalid")
	}
}

func TestSessionStorePurge(t *testing.T) {
	s := NewSessionStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	s.Create()
	s.Create()
	now = now.Add(2 * time.Minute)
	fresh, _ := s.Create()

	s.Purge()
	if s.Len() != 1 {
		t.Errorf("after purge Len = %d, want 1", s.Len())
	}
	if !s.Valid(fresh) {
		t.Error("fresh session should survive purge")
	}
}
