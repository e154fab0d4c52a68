// internal/app/system/notify/mailer.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string // "ses" or "noop"
	FromAddress string
	FromName    string
	SES         SESConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES;
// "noop" or unknown logs and drops mail.
func NewMailer(cfg MailerConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: cfg.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					cfg.SES.AccessKeyID,
					cfg.SES.SecretAccessKey,
					"",
				),
			),
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: cfg.FromAddress,
			fromName:    cfg.FromName,
			log:         logger,
		}
	case "noop":
		return &noopMailer{log: logger}
	default:
		logger.Warn("unknown email provider, using noop", zap.String("provider", cfg.Provider))
		return &noopMailer{log: logger}
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	log         *zap.Logger
}

func (s *sesMailer) Send(ctx context.Context, e Email) error {
	source := s.fromAddress
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{e.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(e.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if e.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(e.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if e.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(e.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send email via SES: %w", err)
	}
	s.log.Info("email sent",
		zap.String("to", e.To),
		zap.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

type noopMailer struct {
	log *zap.Logger
}

func (n *noopMailer) Send(_ context.Context, e Email) error {
	n.log.Info("noop mailer: dropping email",
		zap.String("to", e.To),
		zap.String("subject", e.Subject))
	return nil
}
