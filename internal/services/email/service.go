// File: internal/services/email/service.go
package email

import (
	"context"
	"fmt"
	"net/url"

	"gopkg.in/gomail.v2"

	"github.com/collabers/backend/internal/services/verification"
)

// Service delivers verification and password-reset email over SMTP. It
// implements verification.Notifier. With no SMTP host configured, sends are
// logged no-ops so local development works without a mail server (the auth
// handlers expose dev secrets in that mode instead).
type Service struct {
	dialer      *gomail.Dialer
	config      *Config
	logger      verification.Logger
	otpMinutes  int
	linkMinutes int
}

func NewService(config *Config, logger verification.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}
	s := &Service{
		config:      config,
		logger:      logger,
		otpMinutes:  int(config.OTPExpiry.Minutes()),
		linkMinutes: int(config.LinkExpiry.Minutes()),
	}
	if config.Configured() {
		s.dialer = gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPass)
	}
	return s, nil
}

func (s *Service) SendVerification(ctx context.Context, toEmail, otp, linkToken string) error {
	link := s.buildLink("/verify-email", linkToken)
	return s.send(ctx, toEmail, verificationSubject(), verificationBody(otp, link, s.otpMinutes, s.linkMinutes))
}

func (s *Service) SendPasswordReset(ctx context.Context, toEmail, otp, linkToken string) error {
	link := s.buildLink("/reset-password", linkToken)
	return s.send(ctx, toEmail, passwordResetSubject(), passwordResetBody(otp, link, s.otpMinutes, s.linkMinutes))
}

func (s *Service) buildLink(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", s.config.FrontendURL, path, url.QueryEscape(token))
}

func (s *Service) send(ctx context.Context, toEmail, subject, body string) error {
	if s.dialer == nil {
		s.logger.Info("SMTP not configured, skipping email delivery", "subject", subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
