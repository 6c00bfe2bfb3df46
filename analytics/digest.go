package analytics

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/resendlabs/resend-go"
)

// DigestMailer emails periodic traffic summaries through Resend.
type DigestMailer struct {
	resend    *resend.Client
	fromEmail string
	fromName  string
	recipient string
	service   *Service
}

// NewDigestMailer creates a mailer. Requires RESEND_API_KEY.
func NewDigestMailer(service *Service, recipient string) (*DigestMailer, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("DIGEST_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@y-shin.net"
	}

	fromName := os.Getenv("DIGEST_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "y-shin.net"
	}

	return &DigestMailer{
		resend:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		recipient: recipient,
		service:   service,
	}, nil
}

// Run sends a digest every interval until ctx is cancelled. Intended to run
// as a goroutine.
func (d *DigestMailer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.SendDigest(ctx); err != nil {
				log.Printf("ERROR: Analytics digest failed: %v", err)
			}
		}
	}
}

// SendDigest composes and sends one traffic summary email.
func (d *DigestMailer) SendDigest(ctx context.Context) error {
	stats, err := d.service.GetSiteStats(ctx)
	if err != nil {
		return fmt.Errorf("could not gather stats for digest: %w", err)
	}

	subject := fmt.Sprintf("y-shin.net traffic digest %s", time.Now().UTC().Format("2006-01-02"))
	html := fmt.Sprintf(`
		<h2>Site traffic, last 30 days</h2>
		<table cellpadding="6">
			<tr><td>Pageviews</td><td><strong>%d</strong></td></tr>
			<tr><td>Visitors</td><td><strong>%d</strong></td></tr>
			<tr><td>Visits</td><td><strong>%d</strong></td></tr>
			<tr><td>Bounces</td><td><strong>%d</strong></td></tr>
		</table>`,
		stats.Pageviews, stats.Visitors, stats.Visits, stats.Bounces)

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", d.fromName, d.fromEmail),
		To:      []string{d.recipient},
		Subject: subject,
		Html:    html,
	}

	if _, err := d.resend.Emails.Send(request); err != nil {
		return err
	}

	log.Printf("Analytics digest sent to %s", d.recipient)
	return nil
}
