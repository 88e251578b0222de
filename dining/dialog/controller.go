package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	statex "github.com/tanpawarit/dining-concierge/dining/state"
	validatex "github.com/tanpawarit/dining-concierge/dining/validate"
	logx "github.com/tanpawarit/dining-concierge/pkg/logger"
	metricsx "github.com/tanpawarit/dining-concierge/pkg/metrics"
)

const (
	DefaultIntentName = "DiningSuggestionIntent"

	failureMessage = "Sorry, something went wrong."
)

type Config struct {
	IntentName string   `split_words:"true" default:"DiningSuggestionIntent"`
	Cuisines   []string `split_words:"true"`
}

type Option func(*Controller)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller turns one code hook invocation into a dialog directive.
// It keeps no state between turns; the dialog engine owns the slot values.
type Controller struct {
	queue      contractx.RequestQueue
	validator  *validatex.Validator
	intentName string
	logger     zerolog.Logger
	now        func() time.Time
}

func New(queue contractx.RequestQueue, cfg Config, opts ...Option) (*Controller, error) {
	if queue == nil {
		return nil, errors.New("request queue is required")
	}

	intentName := strings.TrimSpace(cfg.IntentName)
	if intentName == "" {
		intentName = DefaultIntentName
	}

	c := &Controller{
		queue:      queue,
		validator:  validatex.New(cfg.Cuisines),
		intentName: intentName,
		logger:     logx.Component("dialog"),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Controller) HandleTurn(ctx context.Context, turn contractx.Turn) (contractx.TurnResponse, error) {
	intentName := strings.TrimSpace(turn.IntentName)
	if intentName == "" {
		intentName = c.intentName
	}
	slots := turn.Slots.Clone()

	logger := c.logger.With().
		Str("session_id", turn.SessionID).
		Str("source", string(turn.InvocationSource)).
		Logger()

	switch turn.InvocationSource {
	case contractx.SourceDialogCodeHook:
		resp := c.validateTurn(intentName, slots)
		metricsx.DialogTurnsTotal.WithLabelValues(string(turn.InvocationSource), string(resp.DialogAction.Type)).Inc()
		logger.Debug().
			Str("action", string(resp.DialogAction.Type)).
			Str("slot_to_elicit", resp.DialogAction.SlotToElicit).
			Strs("missing", slots.Missing()).
			Msg("dialog turn validated")
		return resp, nil

	case contractx.SourceFulfillmentCodeHook:
		resp, err := c.fulfillTurn(ctx, intentName, slots)
		if err != nil {
			metricsx.DialogTurnsTotal.WithLabelValues(string(turn.InvocationSource), "error").Inc()
			logger.Error().Err(err).Msg("enqueue fulfillment request")
			return contractx.TurnResponse{}, err
		}
		metricsx.DialogTurnsTotal.WithLabelValues(string(turn.InvocationSource), string(resp.IntentState)).Inc()
		logger.Info().Msg("fulfillment request enqueued")
		return resp, nil

	default:
		metricsx.DialogTurnsTotal.WithLabelValues("unknown", string(contractx.IntentFailed)).Inc()
		logger.Warn().Msg("unrecognized invocation source")
		return contractx.TurnResponse{
			DialogAction: contractx.DialogAction{Type: contractx.ActionClose},
			IntentName:   intentName,
			IntentState:  contractx.IntentFailed,
			Messages:     []string{failureMessage},
		}, nil
	}
}

func (c *Controller) validateTurn(intentName string, slots statex.SlotSet) contractx.TurnResponse {
	outcome := c.validator.Validate(slots)
	if !outcome.Complete {
		return contractx.TurnResponse{
			DialogAction: contractx.DialogAction{
				Type:         contractx.ActionElicitSlot,
				SlotToElicit: outcome.Slot,
			},
			IntentName:  intentName,
			IntentState: contractx.IntentInProgress,
			Messages:    []string{outcome.Prompt},
		}
	}
	return contractx.TurnResponse{
		DialogAction: contractx.DialogAction{Type: contractx.ActionDelegate},
		IntentName:   intentName,
		IntentState:  contractx.IntentInProgress,
	}
}

func (c *Controller) fulfillTurn(ctx context.Context, intentName string, slots statex.SlotSet) (contractx.TurnResponse, error) {
	req := NewFulfillmentRequest(slots, c.now())

	payload, err := json.Marshal(req)
	if err != nil {
		return contractx.TurnResponse{}, fmt.Errorf("marshal fulfillment request: %w", err)
	}
	if err := c.queue.Send(ctx, payload); err != nil {
		metricsx.RequestsEnqueuedTotal.WithLabelValues("error").Inc()
		return contractx.TurnResponse{}, fmt.Errorf("%w: %w", contractx.ErrQueueSend, err)
	}
	metricsx.RequestsEnqueuedTotal.WithLabelValues("ok").Inc()

	return contractx.TurnResponse{
		DialogAction: contractx.DialogAction{Type: contractx.ActionClose},
		IntentName:   intentName,
		IntentState:  contractx.IntentFulfilled,
		Messages:     []string{ConfirmationMessage(req)},
	}, nil
}

// NewFulfillmentRequest snapshots the slot set into the queue payload, stamped in UTC.
func NewFulfillmentRequest(slots statex.SlotSet, now time.Time) contractx.FulfillmentRequest {
	return contractx.FulfillmentRequest{
		Cuisine:   slots.Value(statex.SlotCuisine),
		Location:  slots.Value(statex.SlotLocation),
		PartySize: slots.Value(statex.SlotPartySize),
		Date:      slots.Value(statex.SlotDate),
		Time:      slots.Value(statex.SlotTime),
		Email:     slots.Value(statex.SlotEmail),
		Timestamp: now.UTC().Format(contractx.TimestampLayout),
	}
}

func ConfirmationMessage(req contractx.FulfillmentRequest) string {
	return fmt.Sprintf("Great! I'll send you a list of %s restaurants in %s for %s on %s at %s.",
		req.Cuisine, req.Location, req.PartySize, req.Date, req.Time)
}

// DiscardQueue drops requests. Used when no queue is configured.
type DiscardQueue struct {
	Logger zerolog.Logger
}

func (d DiscardQueue) Send(_ context.Context, body []byte) error {
	d.Logger.Warn().Int("bytes", len(body)).Msg("request queue not configured, dropping fulfillment request")
	return nil
}
