package ses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"facturas/internal/config"
	"facturas/internal/port"
)

// maxRawOutput bounds how much of the model output is copied into an alert.
const maxRawOutput = 4 << 10

type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client      sendEmailAPI
	fromAddress string
	fromName    string
	recipients  []string
}

// NewSESSender creates a DriftNotifier that mails operators through SES.
func NewSESSender(cfg *config.AlertsConfig) (port.DriftNotifier, error) {
	if len(cfg.Recipients) == 0 {
		return nil, errors.New("ses alerts need at least one recipient")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		recipients:  cfg.Recipients,
	}, nil
}

func (s *sesSender) NotifyMalformedOutput(ctx context.Context, alert port.DriftAlert) error {
	subject := fmt.Sprintf("[facturas] unusable model output from %s", alert.Provider)
	textBody := buildAlertText(alert)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildAlertText(alert port.DriftAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The completion model returned output that could not be used as an invoice.\n\n")
	fmt.Fprintf(&b, "Provider: %s\n", alert.Provider)
	fmt.Fprintf(&b, "Model:    %s\n", alert.Model)
	fmt.Fprintf(&b, "Reason:   %s\n", alert.Reason)
	fmt.Fprintf(&b, "Input:    %d characters\n\n", alert.TextLen)
	b.WriteString("Raw output")
	raw := alert.RawOutput
	if len(raw) > maxRawOutput {
		fmt.Fprintf(&b, " (first %d of %d bytes)", maxRawOutput, len(raw))
		raw = cutUTF8(raw, maxRawOutput)
	}
	b.WriteString(":\n")
	b.WriteString(raw)
	b.WriteString("\n")
	return b.String()
}

// cutUTF8 shortens s to at most n bytes without splitting a rune.
func cutUTF8(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
