package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"0501234567":       "971501234567",
		"+971501234567":    "971501234567",
		"971501234567":     "971501234567",
		"+971 50 123 4567": "971501234567",
		"00971501234567":   "971501234567",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestSendTextMessage(t *testing.T) {
	var got SendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device-1/send/message", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "farm", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"message":"sent","data":{"message_id":"m1","status":"queued"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "farm", "secret", "/device-1")
	require.NoError(t, client.SendTextMessage(context.Background(), "0501234567", "hello"))
	assert.Equal(t, "971501234567@s.whatsapp.net", got.Phone)
	assert.Equal(t, "hello", got.Message)
}

func TestSendMessageGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "u", "p", "x")
	assert.Error(t, client.SendTextMessage(context.Background(), "0501234567", "hello"))
}

func TestSendMessageRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"device offline"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "u", "p", "x")
	_, err := client.SendMessage(context.Background(), "0501234567", "hello", false, 0)
	assert.ErrorContains(t, err, "device offline")
}
