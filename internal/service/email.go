package service

import (
	"fmt"
	"html"
	"net/smtp"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/pantry/backend/config"
	"github.com/pageza/pantry/backend/internal/models"
)

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	frontendURL  string
	log          *zap.Logger
	send         func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg *config.Config, log *zap.Logger) *EmailService {
	fromName := cfg.EmailFromName
	if fromName == "" {
		fromName = "Pantry"
	}
	frontendURL := cfg.FrontendURL
	if frontendURL == "" {
		frontendURL = "http://localhost:3000" // Development fallback
	}

	service := &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		fromName:     fromName,
		frontendURL:  frontendURL,
		log:          log,
		send:         smtp.SendMail,
	}

	log.Info("email service initialized",
		zap.String("smtp_host", service.smtpHost),
		zap.Bool("enabled", cfg.EmailEnabled()))

	return service
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	// If SMTP is not configured, log the envelope instead. The body may carry a reset token.
	if s.smtpHost == "" || s.smtpPort == "" {
		s.log.Info("SMTP not configured, logging email",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	var auth smtp.Auth
	if s.smtpUsername != "" {
		auth = smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	}

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendPasswordResetEmail mails the raw reset token; only its hash is stored
func (s *EmailService) SendPasswordResetEmail(user *models.User, token string, expiresIn time.Duration) error {
	subject := "Reset your Pantry password"
	body := s.buildPasswordResetEmailBody(user, token, expiresIn)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(user *models.User) error {
	subject := "Welcome to Pantry!"
	body := s.buildWelcomeEmailBody(user)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) buildPasswordResetEmailBody(user *models.User, token string, expiresIn time.Duration) string {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
	caser := cases.Title(language.English)

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Reset your password</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>Hello %s,</h2>
	<p>We received a request to reset the password for your Pantry account.</p>
	<p style="text-align: center; margin: 30px 0;">
		<a href="%s" style="background-color: #d9822b; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Choose a new password</a>
	</p>
	<p>This link expires in %s. If you did not ask for a reset you can ignore this email.</p>
</body>
</html>`, html.EscapeString(caser.String(user.Name)), html.EscapeString(resetURL), expiresIn)
}

func (s *EmailService) buildWelcomeEmailBody(user *models.User) string {
	caser := cases.Title(language.English)

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Welcome to Pantry</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>Welcome, %s!</h2>
	<p>Your account is ready. Start by adding your shop or sharing your first recipe.</p>
	<p><a href="%s">Open Pantry</a></p>
</body>
</html>`, html.EscapeString(caser.String(user.Name)), html.EscapeString(s.frontendURL))
}
