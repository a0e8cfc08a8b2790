package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reviewpilot-core/internal/apperror"

	"github.com/jonboulle/clockwork"
)

// Headers Clerk (via Svix) sets on every webhook delivery
const (
	HeaderWebhookID        = "svix-id"
	HeaderWebhookTimestamp = "svix-timestamp"
	HeaderWebhookSignature = "svix-signature"
)

// WebhookTolerance bounds how far a delivery timestamp may drift from now
const WebhookTolerance = 5 * time.Minute

const secretPrefix = "whsec_"

// WebhookVerifier checks the signature Clerk attaches to webhook deliveries
type WebhookVerifier struct {
	key   []byte
	clock clockwork.Clock
}

// NewWebhookVerifier decodes a signing secret of the form whsec_<base64>
func NewWebhookVerifier(secret string, clock clockwork.Clock) (*WebhookVerifier, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil || len(key) == 0 {
		return nil, fmt.Errorf("invalid webhook signing secret")
	}
	return &WebhookVerifier{key: key, clock: clock}, nil
}

// Verify accepts the delivery when one of the listed v1 signatures matches
// the body and the timestamp is within WebhookTolerance.
func (v *WebhookVerifier) Verify(header http.Header, body []byte) error {
	id := header.Get(HeaderWebhookID)
	ts := header.Get(HeaderWebhookTimestamp)
	signatures := header.Get(HeaderWebhookSignature)
	if id == "" || ts == "" || signatures == "" {
		return apperror.Unauthorized("Missing webhook signature")
	}

	seconds, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return apperror.Unauthorized("Invalid webhook timestamp")
	}
	sent := time.Unix(seconds, 0)
	now := v.clock.Now()
	if sent.Before(now.Add(-WebhookTolerance)) || sent.After(now.Add(WebhookTolerance)) {
		return apperror.Unauthorized("Webhook timestamp out of range")
	}

	expected := v.sign(id, ts, body)
	for _, entry := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return apperror.Unauthorized("Invalid webhook signature")
}

// Sign returns the svix-signature header value for a delivery
func (v *WebhookVerifier) Sign(id string, sent time.Time, body []byte) string {
	return "v1," + base64.StdEncoding.EncodeToString(v.sign(id, strconv.FormatInt(sent.Unix(), 10), body))
}

func (v *WebhookVerifier) sign(id, ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}
