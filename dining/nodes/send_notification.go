package nodes

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

func SendNotification(ctx context.Context, in *GraphState, notifier contractx.Notifier) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Notification.Subject == "" {
		return GraphOutput{}, fmt.Errorf("%w: notification was not composed", contractx.ErrValidation)
	}

	recipient := in.Request.Email
	if err := notifier.Send(ctx, recipient, in.Notification.Subject, in.Notification.Body); err != nil {
		return GraphOutput{}, fmt.Errorf("send notification: %w", err)
	}

	return GraphOutput{
		MessageID: in.MessageID,
		Recipient: recipient,
		Subject:   in.Notification.Subject,
		Matches:   len(in.Restaurants),
	}, nil
}
