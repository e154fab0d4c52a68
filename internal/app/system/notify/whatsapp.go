// internal/app/system/notify/whatsapp.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/zap"
)

// MessageStatus is the delivery status reported by the messaging gateway.
type MessageStatus string

const (
	StatusQueued      MessageStatus = "QUEUED"
	StatusSent        MessageStatus = "SENT"
	StatusDelivered   MessageStatus = "DELIVERED"
	StatusFailed      MessageStatus = "FAILED"
	StatusUndelivered MessageStatus = "UNDELIVERED"
)

// WhatsAppSender delivers WhatsApp messages.
type WhatsAppSender interface {
	Send(ctx context.Context, toPhone, body string) (MessageStatus, error)
}

// TwilioConfig holds the Twilio messaging credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromPhone  string // E.164, e.g. +14155238886
	BaseURL    string // empty for the production API
}

const twilioBaseURL = "https://api.twilio.com"

// NewWhatsAppSender creates a sender. With an empty AccountSID it returns
// a noop sender that logs and drops messages.
func NewWhatsAppSender(cfg TwilioConfig, logger *zap.Logger) WhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AccountSID == "" {
		logger.Warn("twilio not configured, using noop whatsapp sender")
		return &noopWhatsApp{log: logger}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}
	return &twilioWhatsApp{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    logger,
	}
}

type twilioWhatsApp struct {
	cfg    TwilioConfig
	client *http.Client
	log    *zap.Logger
}

// Send posts the message and retries transient gateway failures. A 4xx
// response is permanent and fails immediately.
func (t *twilioWhatsApp) Send(ctx context.Context, toPhone, body string) (MessageStatus, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(t.cfg.BaseURL, "/"), t.cfg.AccountSID)

	form := url.Values{}
	form.Set("From", "whatsapp:"+t.cfg.FromPhone)
	form.Set("To", "whatsapp:"+toPhone)
	form.Set("Body", body)
	encoded := form.Encode()

	var status MessageStatus
	retrier := retry.NewRetrier(5, 100*time.Millisecond, time.Second)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return retry.Stop(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)

		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("twilio gateway error: status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return retry.Stop(fmt.Errorf("twilio rejected message: status %d body %s", resp.StatusCode, data))
		}

		var payload struct {
			Status string `json:"status"`
			SID    string `json:"sid"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return retry.Stop(fmt.Errorf("decode twilio response: %w", err))
		}

		status = mapTwilioStatus(payload.Status)
		t.log.Info("whatsapp message accepted",
			zap.String("sid", payload.SID),
			zap.String("status", string(status)))
		return nil
	})
	if err != nil {
		return StatusFailed, err
	}
	return status, nil
}

func mapTwilioStatus(s string) MessageStatus {
	switch strings.ToLower(s) {
	case "queued", "accepted":
		return StatusQueued
	case "sent", "sending":
		return StatusSent
	case "delivered":
		return StatusDelivered
	case "undelivered":
		return StatusUndelivered
	default:
		return StatusFailed
	}
}

type noopWhatsApp struct {
	log *zap.Logger
}

func (n *noopWhatsApp) Send(_ context.Context, toPhone, _ string) (MessageStatus, error) {
	n.log.Info("noop whatsapp sender: dropping message", zap.String("to", toPhone))
	return StatusQueued, nil
}
