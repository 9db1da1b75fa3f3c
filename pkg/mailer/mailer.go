package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"github.com/campushq/events-api/pkg/config"
)

// Mailer delivers outbound email. Implementations must be safe for
// concurrent use; callers treat delivery as fire-and-forget.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// New builds a mailer from config. Provider "ses" uses AWS SES; anything
// else falls back to a no-op mailer that only logs.
func New(cfg config.MailerConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: cfg.SESRegion,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.SESKeyID, cfg.SESSecret, ""),
			),
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: cfg.FromAddress,
			fromName:    cfg.FromName,
			logger:      logger,
		}
	default:
		if cfg.Provider != "" && cfg.Provider != "noop" {
			logger.Sugar().Warnw("unknown mail provider, using noop", "provider", cfg.Provider)
		}
		return &noopMailer{logger: logger}
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

func (m *sesMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	source := m.fromAddress
	if m.fromName != "" {
		source = fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(source),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body:    &types.Body{},
		},
	}
	if htmlBody != "" {
		input.Message.Body.Html = &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")}
	}
	if textBody != "" {
		input.Message.Body.Text = &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")}
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send email via ses: %w", err)
	}
	m.logger.Sugar().Infow("email sent", "to", to, "subject", subject, "message_id", aws.ToString(result.MessageId))
	return nil
}

type noopMailer struct {
	logger *zap.Logger
}

func (m *noopMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	m.logger.Sugar().Infow("email suppressed (noop mailer)", "to", to, "subject", subject)
	return nil
}
