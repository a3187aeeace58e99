package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"vocabduet/internal/models"
)

// EmailSender sends challenge notifications. Satisfied by *EmailService
// and by fakes in tests.
type EmailSender interface {
	SendChallengeNotification(ctx context.Context, toEmail, toName, fromName string, ch models.Challenge) error
}

// EmailService handles sending notification emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. An empty fromEmail
// produces a disabled service that skips all sends.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: EMAIL_SENDER not configured")
		return &EmailService{enabled: false}, nil
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendChallengeNotification tells the linked partner a new challenge is
// waiting for them
func (s *EmailService) SendChallengeNotification(ctx context.Context, toEmail, toName, fromName string, ch models.Challenge) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): challenge notification to %s", toEmail)
		return nil
	}

	challengeLink := fmt.Sprintf("%s/challenges/%s", s.appBaseURL, ch.ID)

	kind := "quiz"
	if ch.Type == models.ChallengeQuickFire {
		kind = fmt.Sprintf("quick-fire round (%ds)", ch.Config.TimeLimitSeconds)
	}

	subject := fmt.Sprintf("%s sent you a new challenge", fromName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>New challenge!</h1>
		<p>Hi %s,</p>
		<p>%s has sent you a %s: <strong>%s</strong> (%d words).</p>
		<p><a href="%s">Play it now</a></p>
		<p style="font-size: 12px; color: #666;">This is an automated email from VocabDuet. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, fromName, kind, ch.Title, len(ch.WordIDs), challengeLink)

	textBody := fmt.Sprintf(`Hi %s,

%s has sent you a %s: %s (%d words).

Play it now: %s

---
This is an automated email from VocabDuet. Please do not reply.
`, toName, fromName, kind, ch.Title, len(ch.WordIDs), challengeLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
