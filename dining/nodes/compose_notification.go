package nodes

import (
	"fmt"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	"github.com/tanpawarit/dining-concierge/dining/notify"
)

func ComposeNotification(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	var (
		msg notify.Message
		err error
	)
	if len(in.Candidates) == 0 {
		msg, err = notify.NoMatch(in.Request)
	} else {
		msg, err = notify.Suggestions(in.Request, in.Restaurants)
	}
	if err != nil {
		return nil, err
	}

	in.Notification = msg
	return in, nil
}
