// Package mail envia e-mails transacionais. O backend é escolhido por EMAIL_BACKEND.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/willjrcristo/go-assinaturas/internal/config"
)

// Mensagem é um e-mail de texto simples.
type Mensagem struct {
	Para    string
	Assunto string
	Corpo   string
}

// Sender é implementado pelos backends de e-mail.
type Sender interface {
	Send(ctx context.Context, msg Mensagem) error
}

// New monta o backend configurado.
func New(ctx context.Context, cfg config.Config) (Sender, error) {
	switch cfg.EmailBackend {
	case "", "console":
		return ConsoleSender{From: cfg.EmailFrom}, nil
	case "ses":
		return NewSESSender(ctx, cfg)
	default:
		return nil, fmt.Errorf("EMAIL_BACKEND desconhecido: %q", cfg.EmailBackend)
	}
}

// ConsoleSender só registra o e-mail no log. Útil em desenvolvimento.
type ConsoleSender struct {
	From string
}

func (c ConsoleSender) Send(_ context.Context, msg Mensagem) error {
	slog.Info("📧 E-mail (console)", "from", c.From, "to", msg.Para, "subject", msg.Assunto, "body", msg.Corpo)
	return nil
}

// SESAPI é o subconjunto do cliente SES que usamos.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender envia pelo Amazon SES.
type SESSender struct {
	client SESAPI
	from   string
}

// NewSESSender usa EMAIL_API_KEY/EMAIL_API_SECRET quando definidos;
// senão, a cadeia de credenciais padrão da AWS.
func NewSESSender(ctx context.Context, cfg config.Config) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.EmailAPIKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.EmailAPIKey, cfg.EmailAPISecret, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewSESSenderWithClient(ses.NewFromConfig(awsCfg), cfg.EmailFrom), nil
}

func NewSESSenderWithClient(client SESAPI, from string) *SESSender {
	return &SESSender{client: client, from: from}
}

func (s *SESSender) Send(ctx context.Context, msg Mensagem) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.Para},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Assunto)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Corpo)},
			},
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return fmt.Errorf("enviando e-mail para %s: %w", msg.Para, err)
	}
	return nil
}
