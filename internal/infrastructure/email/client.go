// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendLeadNotificationEmail(toEmail string, record leads.Record) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@flipkraft.com"
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "FlipKraft"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendLeadNotificationEmail composes and sends the sales team notification
// for a freshly captured lead.
func (c *ResendClient) SendLeadNotificationEmail(toEmail string, record leads.Record) error {
	subject := fmt.Sprintf("New %s lead: %s at %s", record.LeadQuality, record.FullName, record.Company)

	content := templates.GetLeadNotificationContent(templates.LeadNotificationProps{
		FullName:       record.FullName,
		WorkEmail:      record.WorkEmail,
		Company:        record.Company,
		JobTitle:       record.JobTitle,
		Score:          record.QualificationScore,
		Quality:        record.LeadQuality,
		PagesVisited:   record.PagesVisited,
		QuestionsAsked: record.QuestionsAsked,
		TimeToCapture:  record.TimeToCaptureSeconds,
		ScrollPercent:  record.ScrollPercentage,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send lead notification via Resend: %w", err)
	}

	return nil
}
