package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesSender は sesv2.Client のうち送信で使う部分です。テストで差し替えます。
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer は AWS SES v2 でメールを送信します
type SESMailer struct {
	client sesSender
	from   string
}

// NewSESMailer は auth_type に応じて認証方法を切り替えて SES クライアントを作ります。
func NewSESMailer(ctx context.Context, cfg config.SESConfig, fallbackFrom string) (*SESMailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}

	switch cfg.AuthType {
	case "static_credentials":
		slog.Info("Configuring SES with static credentials.")
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, errors.New("ses: static_credentials requires access_key_id and secret_access_key")
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	case "iam_role":
		// SDK が環境から認証情報を探す
		slog.Info("Configuring SES with IAM Role credentials.")
	default:
		slog.Warn("Unknown SES auth_type specified, defaulting to IAM Role.", "type", cfg.AuthType)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: load aws config: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = fallbackFrom
	}
	return &SESMailer{client: sesv2.NewFromConfig(awsCfg), from: from}, nil
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		logger.Error("Failed to send email via SES", "error", err, "to", to)
		return fmt.Errorf("ses send: %w", err)
	}

	logger.Info("Email sent successfully via SES", "to", to, "subject", subject, "message_id", aws.ToString(out.MessageId))
	return nil
}
