package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	config "github.com/maheshrc27/postpilot/configs"
)

// WhatsAppService sends operator notifications through the Twilio WhatsApp
// API. Transient send failures are retried with bounded backoff; the caller
// only learns the final outcome.
type WhatsAppService struct {
	client *twilio.RestClient
	from   string
	to     string
}

func NewWhatsAppService(cfg config.Config) *WhatsAppService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &WhatsAppService{
		client: client,
		from:   whatsAppAddress(cfg.TwilioWhatsAppFrom),
		to:     whatsAppAddress(cfg.OperatorWhatsAppTo),
	}
}

func (s *WhatsAppService) Send(ctx context.Context, body string, mediaURL string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(s.to)
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}

	err := retry.Do(
		func() error {
			_, err := s.client.Api.CreateMessage(params)
			return err
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("retrying WhatsApp send", "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	return nil
}

// whatsAppAddress ensures the channel prefix Twilio expects on both ends.
func whatsAppAddress(number string) string {
	if number == "" {
		return number
	}
	const prefix = "whatsapp:"
	if strings.HasPrefix(number, prefix) {
		return number
	}
	return prefix + number
}
