package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"io"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type stubEnqueuer struct {
	from, body string
	calls      int
	fail       bool
}

func (s *stubEnqueuer) EnqueueCommand(from, body string) error {
	s.calls++
	s.from, s.body = from, body
	if s.fail {
		return errors.New("queue unavailable")
	}
	return nil
}

func newWebhookApp(cfg config.Config, enq CommandEnqueuer) *fiber.App {
	app := fiber.New()
	m := middleware.NewSignatureMiddleware(cfg)
	h := NewWebhookHandler(enq)
	app.Post(cfg.WebhookPath, m.ValidateSignature(), h.Incoming)
	return app
}

// twilioSignature computes the signature Twilio attaches: HMAC-SHA1 over the
// full URL followed by the form parameters concatenated in key order.
func twilioSignature(token, fullURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := fullURL
	for _, k := range keys {
		payload += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postForm(params map[string]string) (*strings.Reader, string) {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	cfg := config.Config{
		WebhookPath:       "/whatsapp/incoming",
		PublicBaseURL:     "https://example.com",
		TwilioAuthToken:   "testtoken",
		ValidateSignature: true,
	}
	enq := &stubEnqueuer{}
	app := newWebhookApp(cfg, enq)

	params := map[string]string{
		"From": "whatsapp:+15550001111",
		"Body": "yes 3",
	}
	body, contentType := postForm(params)
	req := httptest.NewRequest("POST", "/whatsapp/incoming", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Twilio-Signature", twilioSignature(cfg.TwilioAuthToken, "https://example.com/whatsapp/incoming", params))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	respBody, _ := io.ReadAll(resp.Body)
	if string(respBody) != transfer.EmptyTwiML {
		t.Errorf("ack body = %q, want empty TwiML", respBody)
	}
	if enq.calls != 1 {
		t.Fatalf("enqueued %d commands, want 1", enq.calls)
	}
	if enq.from != "whatsapp:+15550001111" || enq.body != "yes 3" {
		t.Errorf("enqueued from=%q body=%q", enq.from, enq.body)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	cfg := config.Config{
		WebhookPath:       "/whatsapp/incoming",
		PublicBaseURL:     "https://example.com",
		TwilioAuthToken:   "testtoken",
		ValidateSignature: true,
	}
	enq := &stubEnqueuer{}
	app := newWebhookApp(cfg, enq)

	tests := []struct {
		name      string
		signature string
	}{
		{"missing signature", ""},
		{"wrong signature", "bm90IGEgcmVhbCBzaWduYXR1cmU="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := postForm(map[string]string{"From": "x", "Body": "list"})
			req := httptest.NewRequest("POST", "/whatsapp/incoming", body)
			req.Header.Set("Content-Type", contentType)
			if tt.signature != "" {
				req.Header.Set("X-Twilio-Signature", tt.signature)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != fiber.StatusForbidden {
				t.Errorf("status = %d, want 403", resp.StatusCode)
			}
			respBody, _ := io.ReadAll(resp.Body)
			if string(respBody) != transfer.EmptyTwiML {
				t.Errorf("rejection body = %q, want empty TwiML", respBody)
			}
			if enq.calls != 0 {
				t.Errorf("command was enqueued despite rejection")
			}
		})
	}
}

func TestWebhookRejectsWhenTokenMissing(t *testing.T) {
	cfg := config.Config{
		WebhookPath:       "/whatsapp/incoming",
		ValidateSignature: true,
	}
	enq := &stubEnqueuer{}
	app := newWebhookApp(cfg, enq)

	body, contentType := postForm(map[string]string{"From": "x", "Body": "list"})
	req := httptest.NewRequest("POST", "/whatsapp/incoming", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Twilio-Signature", "anything")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403 when auth token is not configured", resp.StatusCode)
	}
	if enq.calls != 0 {
		t.Errorf("command was enqueued despite missing token")
	}
}

func TestWebhookSignatureCheckDisabled(t *testing.T) {
	cfg := config.Config{
		WebhookPath:       "/whatsapp/incoming",
		ValidateSignature: false,
	}
	enq := &stubEnqueuer{}
	app := newWebhookApp(cfg, enq)

	body, contentType := postForm(map[string]string{"From": "x", "Body": "status"})
	req := httptest.NewRequest("POST", "/whatsapp/incoming", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200 with validation disabled", resp.StatusCode)
	}
	if enq.calls != 1 {
		t.Errorf("enqueued %d commands, want 1", enq.calls)
	}
}

func TestWebhookAcksEvenWhenEnqueueFails(t *testing.T) {
	cfg := config.Config{
		WebhookPath:       "/whatsapp/incoming",
		ValidateSignature: false,
	}
	enq := &stubEnqueuer{fail: true}
	app := newWebhookApp(cfg, enq)

	body, contentType := postForm(map[string]string{"From": "x", "Body": "list"})
	req := httptest.NewRequest("POST", "/whatsapp/incoming", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200; the ack only proves receipt", resp.StatusCode)
	}
}
