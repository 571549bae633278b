package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var (
	sesOnce   sync.Once
	sesClient *ses.Client
	sesErr    error
)

func mailClient(ctx context.Context) (*ses.Client, error) {
	sesOnce.Do(func() {
		region := os.Getenv("SES_REGION")
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		if region == "" {
			sesErr = fmt.Errorf("SES_REGION is not set")
			return
		}

		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			sesErr = err
			return
		}

		sesClient = ses.NewFromConfig(cfg)
	})

	return sesClient, sesErr
}

// SendPasswordResetEmail delivers the reset link for a requested password
// reset. Callers log failures instead of surfacing them, so the endpoint
// stays enumeration safe.
func SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	client, err := mailClient(ctx)

	if err != nil {
		return err
	}

	sender := os.Getenv("MAIL_FROM")
	if sender == "" {
		sender = "no-reply@funding-portal.local"
	}

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:5173"
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", clientURL, token)
	body := fmt.Sprintf(
		"We received a request to reset the password for your funding portal account.\n\n"+
			"Use the link below within the next hour to choose a new password:\n\n%s\n\n"+
			"If you did not request this, you can safely ignore this email.",
		resetLink,
	)

	input := &ses.SendEmailInput{
		Source: aws.String(sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data:    aws.String("Reset your funding portal password"),
				Charset: aws.String("UTF-8"),
			},
			Body: &sestypes.Body{
				Text: &sestypes.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
