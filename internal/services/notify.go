package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/MpenduloXulu/TTI-Website/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorBlue  = 3447003  // #3498DB - Application submitted
	ColorGreen = 65280    // #00FF00 - Application approved
	ColorRed   = 16711680 // #FF0000 - Application declined

	Username = "Funding Portal"
)

// SendApplicationSubmittedNotification posts a notice to the configured
// Discord and Slack webhooks when a new application lands.
func SendApplicationSubmittedNotification(app models.Application) error {
	discordURL := os.Getenv("DISCORD_WEBHOOK_URL")
	slackURL := os.Getenv("SLACK_WEBHOOK_URL")

	if discordURL != "" {
		if err := sendDiscordSubmitted(discordURL, app); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if slackURL != "" {
		if err := sendSlackSubmitted(slackURL, app); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

// SendDecisionNotification posts a notice when an admin approves or declines
// an application.
func SendDecisionNotification(app models.Application, decision string) error {
	discordURL := os.Getenv("DISCORD_WEBHOOK_URL")
	slackURL := os.Getenv("SLACK_WEBHOOK_URL")

	if discordURL != "" {
		if err := sendDiscordDecision(discordURL, app, decision); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if slackURL != "" {
		if err := sendSlackDecision(slackURL, app, decision); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func sendDiscordSubmitted(webhookURL string, app models.Application) error {
	submittedAt := app.SubmittedAt.Format("2006-01-02 15:04:05 UTC")

	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "📥 New funding application",
				Description: fmt.Sprintf("**%s** applied for **%s**.", app.ApplicantName, app.FundingTitle),
				Color:       ColorBlue,
				Fields: []DiscordWebhookField{
					{Name: "Applicant", Value: app.ApplicantName, Inline: true},
					{Name: "Email", Value: app.ApplicantEmail, Inline: true},
					{Name: "Funding Type", Value: app.FundingType, Inline: true},
					{Name: "Submitted At", Value: submittedAt, Inline: true},
				},
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Opportunity: %s", app.FundingTitle),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendDiscordWebhook(webhookURL, payload)
}

func sendDiscordDecision(webhookURL string, app models.Application, decision string) error {
	title := "✅ Application approved"
	color := ColorGreen

	if decision != "approved" {
		title = "❌ Application declined"
		color = ColorRed
	}

	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       title,
				Description: fmt.Sprintf("Application from **%s** for **%s** was %s.", app.ApplicantName, app.FundingTitle, decision),
				Color:       color,
				Fields: []DiscordWebhookField{
					{Name: "Applicant", Value: app.ApplicantName, Inline: true},
					{Name: "Decision", Value: decision, Inline: true},
					{Name: "Decided By", Value: app.DecisionBy, Inline: true},
				},
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Opportunity: %s", app.FundingTitle),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return sendDiscordWebhook(webhookURL, payload)
}

func sendSlackSubmitted(webhookURL string, app models.Application) error {
	submittedAt := app.SubmittedAt.Format("2006-01-02 15:04:05 UTC")

	payload := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":inbox_tray:",
		Text:      ":inbox_tray: *New funding application*",
		Attachments: []SlackAttachment{
			{
				Color: "#3498DB",
				Title: fmt.Sprintf("%s applied for %s", app.ApplicantName, app.FundingTitle),
				Fields: []SlackField{
					{Title: "Applicant", Value: app.ApplicantName, Short: true},
					{Title: "Email", Value: app.ApplicantEmail, Short: true},
					{Title: "Funding Type", Value: app.FundingType, Short: true},
					{Title: "Submitted At", Value: submittedAt, Short: true},
				},
				Footer:    fmt.Sprintf("Opportunity: %s", app.FundingTitle),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return sendSlackWebhook(webhookURL, payload)
}

func sendSlackDecision(webhookURL string, app models.Application, decision string) error {
	color := "good"
	text := ":white_check_mark: *Application approved*"

	if decision != "approved" {
		color = "danger"
		text = ":x: *Application declined*"
	}

	payload := SlackWebhookRequest{
		Username: Username,
		Text:     text,
		Attachments: []SlackAttachment{
			{
				Color: color,
				Title: fmt.Sprintf("Application from %s for %s", app.ApplicantName, app.FundingTitle),
				Fields: []SlackField{
					{Title: "Applicant", Value: app.ApplicantName, Short: true},
					{Title: "Decision", Value: decision, Short: true},
					{Title: "Decided By", Value: app.DecisionBy, Short: true},
				},
				Footer:    fmt.Sprintf("Opportunity: %s", app.FundingTitle),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return sendSlackWebhook(webhookURL, payload)
}

func sendDiscordWebhook(webhookURL string, payload DiscordWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func sendSlackWebhook(webhookURL string, payload SlackWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
