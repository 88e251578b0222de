package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESNotifier struct {
	api    SESAPI
	sender string
}

var _ contractx.Notifier = (*SESNotifier)(nil)

func NewSESNotifier(api SESAPI, sender string) (*SESNotifier, error) {
	if api == nil {
		return nil, errors.New("ses client is required")
	}
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return nil, fmt.Errorf("%w: notification sender is required", contractx.ErrNotConfigured)
	}
	return &SESNotifier{api: api, sender: sender}, nil
}

func NewSESNotifierFromConfig(awsCfg aws.Config, sender string) (*SESNotifier, error) {
	return NewSESNotifier(ses.NewFromConfig(awsCfg), sender)
}

func (n *SESNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	_, err := n.api.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.sender),
		Destination: &sestypes.Destination{ToAddresses: []string{recipient}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: ses: %w", contractx.ErrNotify, err)
	}
	return nil
}
