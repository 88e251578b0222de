package nodes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	"github.com/tanpawarit/dining-concierge/dining/notify"
	validatex "github.com/tanpawarit/dining-concierge/dining/validate"
)

var ErrEmptyBody = errors.New("message body is empty")

type GraphInput struct {
	Message contractx.QueueMessage
}

type GraphOutput struct {
	MessageID string
	Recipient string
	Subject   string
	Matches   int
}

type GraphState struct {
	MessageID string
	Request   contractx.FulfillmentRequest

	Candidates  []contractx.Candidate
	Restaurants []contractx.Detail

	Notification notify.Message
}

// NewRequestValidator returns a validator that understands the party size and
// email rules used by the dialog.
func NewRequestValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("partysize", func(fl validator.FieldLevel) bool {
		return validatex.ValidPartySize(fl.Field().String())
	})
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return validatex.ValidEmail(fl.Field().String())
	})
	return v
}

func ParseRequest(in GraphInput, v *validator.Validate) (*GraphState, error) {
	body := strings.TrimSpace(in.Message.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: %w", contractx.ErrMalformedRequest, ErrEmptyBody)
	}

	var req contractx.FulfillmentRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", contractx.ErrMalformedRequest, err)
	}
	if err := v.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", contractx.ErrMalformedRequest, err)
	}

	return &GraphState{
		MessageID: in.Message.ID,
		Request:   req,
	}, nil
}
