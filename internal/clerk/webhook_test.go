package clerk

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"testing"
	"time"

	"reviewpilot-core/internal/apperror"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookHeader(id string, sent time.Time, signature string) http.Header {
	h := http.Header{}
	h.Set(HeaderWebhookID, id)
	h.Set(HeaderWebhookTimestamp, strconv.FormatInt(sent.Unix(), 10))
	h.Set(HeaderWebhookSignature, signature)
	return h
}

func TestWebhookVerifierKnownSignature(t *testing.T) {
	sent := time.Unix(1614265330, 0)
	v, err := NewWebhookVerifier("whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw", clockwork.NewFakeClockAt(sent))
	require.NoError(t, err)

	body := []byte(`{"test": 2432232314}`)
	h := webhookHeader("msg_p5jXN8AQM9LWM0D4loKWxJek", sent, "v1,g0hM9SsE+OTPJTGt/tmIKtSyZlE3uFJELVlNIOLJ1OE=")
	require.NoError(t, v.Verify(h, body))
	assert.Equal(t, "v1,g0hM9SsE+OTPJTGt/tmIKtSyZlE3uFJELVlNIOLJ1OE=", v.Sign("msg_p5jXN8AQM9LWM0D4loKWxJek", sent, body))
}

func TestWebhookVerifier(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	secret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("clerk-webhook-secret"))
	v, err := NewWebhookVerifier(secret, clockwork.NewFakeClockAt(now))
	require.NoError(t, err)

	other, err := NewWebhookVerifier("whsec_"+base64.StdEncoding.EncodeToString([]byte("someone-else")), clockwork.NewFakeClockAt(now))
	require.NoError(t, err)

	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	good := v.Sign("msg_1", now, body)

	tests := []struct {
		name   string
		header http.Header
		body   []byte
		ok     bool
	}{
		{"valid", webhookHeader("msg_1", now, good), body, true},
		{"one of several signatures", webhookHeader("msg_1", now, "v1,bm9wZQ== "+good), body, true},
		{"within tolerance", webhookHeader("msg_1", now.Add(-4*time.Minute), v.Sign("msg_1", now.Add(-4*time.Minute), body)), body, true},
		{"missing headers", http.Header{}, body, false},
		{"tampered body", webhookHeader("msg_1", now, good), []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`), false},
		{"different id", webhookHeader("msg_2", now, good), body, false},
		{"wrong secret", webhookHeader("msg_1", now, other.Sign("msg_1", now, body)), body, false},
		{"unknown version", webhookHeader("msg_1", now, "v2,"+good[3:]), body, false},
		{"stale", webhookHeader("msg_1", now.Add(-6*time.Minute), v.Sign("msg_1", now.Add(-6*time.Minute), body)), body, false},
		{"future", webhookHeader("msg_1", now.Add(6*time.Minute), v.Sign("msg_1", now.Add(6*time.Minute), body)), body, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.header, tt.body)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized), "got %v", err)
		})
	}
}

func TestNewWebhookVerifierRejectsBadSecret(t *testing.T) {
	_, err := NewWebhookVerifier("whsec_not base64!", clockwork.NewRealClock())
	assert.Error(t, err)

	_, err = NewWebhookVerifier("", clockwork.NewRealClock())
	assert.Error(t, err)
}
