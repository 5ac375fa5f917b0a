package service

import (
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// EmailService delivers download links out of band. Without an API key
// (development) it logs the link instead of sending, so the flow stays
// testable locally. The token itself is only ever embedded in the link;
// it is never logged.
type EmailService struct {
	client    *resend.Client
	fromEmail string
	appURL    string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appURL:    appURL,
		appName:   appName,
		isDev:     isDev,
	}
}

// Enabled reports whether real delivery is configured.
func (s *EmailService) Enabled() bool {
	return s.client != nil
}

// SendDownloadLink emails the single-use download URL to the recipient.
// Best-effort: issuance already succeeded when this runs.
func (s *EmailService) SendDownloadLink(email, token string) error {
	link := fmt.Sprintf("%s/deck/download?token=%s", s.appURL, token)

	if s.client == nil {
		if s.isDev {
			slog.Info("email disabled, download link", "to", email, "link", link)
			return nil
		}
		return fmt.Errorf("email delivery not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.appName, s.fromEmail),
		To:      []string{email},
		Subject: fmt.Sprintf("%s — your deck download link", s.appName),
		Html: fmt.Sprintf(`<p>Your single-use download link is ready.</p>
<p><a href="%s">Download the deck</a></p>
<p>The link works exactly once and expires in 24 hours.</p>`, link),
	}

	_, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send download link: %w", err)
	}

	return nil
}
