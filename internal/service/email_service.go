package service

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	// SendQuizInvite отправляет приглашение с кодом доступа к приватной викторине
	SendQuizInvite(ctx context.Context, toEmail, quizTitle, accessCode string) error
}

// NoopEmailService is used when email delivery is disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendQuizInvite(ctx context.Context, toEmail, quizTitle, accessCode string) error {
	log.Printf("[EmailService] noop send quiz invite to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendQuizInvite(ctx context.Context, toEmail, quizTitle, accessCode string) error {
	if toEmail == "" || accessCode == "" {
		return fmt.Errorf("toEmail and accessCode are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("You are invited to the quiz %q", quizTitle),
		Text:    fmt.Sprintf("You have been invited to the quiz %q. Join with access code %s.", quizTitle, accessCode),
		Html: fmt.Sprintf("<p>You have been invited to the quiz <strong>%s</strong>.</p><p>Join with access code <strong>%s</strong>.</p>",
			quizTitle, accessCode),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send quiz invite: %w", err)
	}

	log.Printf("[EmailService] Приглашение отправлено to=%s id=%s", toEmail, sent.Id)
	return nil
}
