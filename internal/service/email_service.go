package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, toEmail, confirmURL, unsubscribeURL, idempotencyKey string) error
}

// NoopEmailService is used when no email provider is configured.
type NoopEmailService struct {
	logger *zap.Logger
}

func NewNoopEmailService(logger *zap.Logger) *NoopEmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopEmailService{logger: logger}
}

func (s *NoopEmailService) SendRegistrationConfirmation(ctx context.Context, toEmail, confirmURL, unsubscribeURL, idempotencyKey string) error {
	s.logger.Info("Noop email: registration confirmation",
		zap.String("to", MaskEmail(toEmail)),
		zap.String("confirm_url", confirmURL))
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
	logger *zap.Logger
}

func NewResendEmailService(apiKey, from string, logger *zap.Logger) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
		logger: logger,
	}, nil
}

func (s *ResendEmailService) SendRegistrationConfirmation(ctx context.Context, toEmail, confirmURL, unsubscribeURL, idempotencyKey string) error {
	if toEmail == "" || confirmURL == "" {
		return fmt.Errorf("toEmail and confirmURL are required")
	}

	text, htmlBody := registrationEmailBody(confirmURL, unsubscribeURL)
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Confirmar o endereço de email",
		Text:    text,
		Html:    htmlBody,
	}

	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			s.logger.Warn("Resend send failed, retrying",
				zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func registrationEmailBody(confirmURL, unsubscribeURL string) (string, string) {
	text := fmt.Sprintf(
		"Para confirmar o endereço de email e criar uma conta, utiliza este link: %s\n"+
			"O link de confirmação é válido por 1 hora.\n"+
			"Se não fez nenhum pedido, pode ignorar este email ou pedir a remoção da base de dados: %s\n",
		confirmURL, unsubscribeURL)

	c := html.EscapeString(confirmURL)
	u := html.EscapeString(unsubscribeURL)
	body := fmt.Sprintf(
		`<p>Para confirmar o endereço de email e criar uma conta, utiliza este link:</p>`+
			`<p><a href="%s">%s</a></p>`+
			`<p>O link de confirmação é válido por 1 hora.</p>`+
			`<p>Se não fez nenhum pedido, pode ignorar este email ou <a href="%s">pedir a remoção da base de dados.</a></p>`,
		c, c, u)
	return text, body
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
