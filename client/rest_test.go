package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessagePostsAndDecodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bob", req["receiverId"])
		assert.Equal(t, "hello", req["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","content":"hello","senderId":"alice","receiverId":"bob","sender":{"id":"alice","name":"Alice"}}`))
	}))
	t.Cleanup(ts.Close)

	c := New(Config{BaseURL: ts.URL, Token: "test-token"})
	msg, err := c.SendMessage(context.Background(), "bob", "hello")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "Alice", msg.Sender.Name)
}

func TestRestSurfacesServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"content and receiverId are required"}`))
	}))
	t.Cleanup(ts.Close)

	c := New(Config{BaseURL: ts.URL, Token: "test-token"})
	_, err := c.SendMessage(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content and receiverId are required")
}

func TestHistoryAndUsersDecodeLists(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/messages":
			assert.Equal(t, "bob", r.URL.Query().Get("userId"))
			_, _ = w.Write([]byte(`[{"id":"m1","content":"hi","senderId":"bob","receiverId":"alice"}]`))
		case "/api/users":
			_, _ = w.Write([]byte(`[{"id":"u2","name":"Bob","email":"bob@example.com"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	c := New(Config{BaseURL: ts.URL, Token: "test-token"})

	msgs, err := c.History(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)

	users, err := c.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)
}

func TestRecordSentSuppressesEcho(t *testing.T) {
	c := New(Config{BaseURL: "http://example.invalid", Token: "t"})
	c.RecordSent("m1")

	c.mu.Lock()
	dup := c.dedup.Observe("m1")
	c.mu.Unlock()
	assert.True(t, dup)
}
