package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestChatHandlerReturnsReply(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := NewChatHandler(dispatcher, arbor.NewLogger())

	body := `{"session_id":"sess-1","message":"what are your prices?"}`
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "echo: what are your prices?", resp.Reply)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, "general", resp.Intent)
	assert.False(t, resp.Handoff)
}

func TestChatHandlerValidatesInput(t *testing.T) {
	h := NewChatHandler(&fakeDispatcher{}, arbor.NewLogger())

	tests := []struct {
		name string
		body string
	}{
		{"missing session", `{"message":"hi"}`},
		{"missing message", `{"session_id":"sess-1"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleMessage(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatHandlerRejectsGet(t *testing.T) {
	h := NewChatHandler(&fakeDispatcher{}, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/chat", nil)
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
