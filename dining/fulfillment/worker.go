package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	nodex "github.com/tanpawarit/dining-concierge/dining/nodes"
	"github.com/tanpawarit/dining-concierge/dining/notify"
	logx "github.com/tanpawarit/dining-concierge/pkg/logger"
	metricsx "github.com/tanpawarit/dining-concierge/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "dining.fulfillment"

type Outcome string

const (
	OutcomeNotified Outcome = "notified"
	OutcomeNoMatch  Outcome = "no_match"
	OutcomeFailed   Outcome = "failed"
)

type ItemResult struct {
	MessageID string
	Outcome   Outcome
	Err       error
}

// Report lists per-message results in receive order.
type Report struct {
	Items []ItemResult
}

func (r Report) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// BatchResponse returns the partial-batch-failure payload. Failures is never nil.
func (r Report) BatchResponse() contractx.BatchResponse {
	failures := make([]contractx.BatchItemFailure, 0, r.Failed())
	for _, item := range r.Items {
		if item.Outcome == OutcomeFailed {
			failures = append(failures, contractx.BatchItemFailure{ItemIdentifier: item.MessageID})
		}
	}
	return contractx.BatchResponse{BatchItemFailures: failures}
}

type Option func(*Worker)

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(w *Worker) {
		if tracer != nil {
			w.tracer = tracer
		}
	}
}

// Worker drains the request queue and emails suggestions. Messages in a batch
// are processed one at a time and fail independently.
type Worker struct {
	consumer contractx.QueueConsumer
	search   contractx.SearchGateway
	details  contractx.DetailStore
	notifier contractx.Notifier
	cfg      Config
	validate *validator.Validate

	pipeline compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	logger zerolog.Logger
	tracer trace.Tracer
}

func New(
	consumer contractx.QueueConsumer,
	search contractx.SearchGateway,
	details contractx.DetailStore,
	notifier contractx.Notifier,
	cfg Config,
	opts ...Option,
) (*Worker, error) {
	if consumer == nil {
		return nil, errors.New("queue consumer is required")
	}
	if search == nil {
		return nil, errors.New("search gateway is required")
	}
	if details == nil {
		return nil, errors.New("detail store is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}

	w := &Worker{
		consumer: consumer,
		search:   search,
		details:  details,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
		validate: nodex.NewRequestValidator(),
		logger:   logx.Component("fulfillment"),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	pipeline, err := w.compilePipeline(context.Background())
	if err != nil {
		return nil, err
	}
	w.pipeline = pipeline

	return w, nil
}

// ProcessBatch runs one invocation. Only a receive failure is returned as an
// error; per-message failures are reported in the Report.
func (w *Worker) ProcessBatch(ctx context.Context) (Report, error) {
	ctx, span := w.tracer.Start(ctx, "fulfillment.process_batch")
	defer span.End()

	msgs, err := w.consumer.Receive(ctx, w.cfg.BatchSize, w.cfg.WaitTime)
	if err != nil {
		if !errors.Is(err, contractx.ErrQueueReceive) {
			err = fmt.Errorf("%w: %w", contractx.ErrQueueReceive, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	metricsx.FulfillmentBatchSize.Observe(float64(len(msgs)))
	span.SetAttributes(attribute.Int("batch.size", len(msgs)))

	report := Report{Items: make([]ItemResult, 0, len(msgs))}
	for _, msg := range msgs {
		result := w.processMessage(ctx, msg)
		metricsx.FulfillmentItemsTotal.WithLabelValues(string(result.Outcome)).Inc()
		report.Items = append(report.Items, result)
	}

	failed := report.Failed()
	span.SetAttributes(attribute.Int("batch.failed", failed))
	if len(msgs) > 0 {
		w.logger.Info().
			Int("received", len(msgs)).
			Int("failed", failed).
			Msg("fulfillment batch processed")
	}
	return report, nil
}

func (w *Worker) processMessage(ctx context.Context, msg contractx.QueueMessage) ItemResult {
	logger := w.logger.With().Str("message_id", msg.ID).Logger()

	out, err := w.pipeline.Invoke(ctx, nodex.GraphInput{Message: msg})
	if err != nil {
		logger.Warn().Err(err).Msg("fulfillment message failed")
		return ItemResult{MessageID: msg.ID, Outcome: OutcomeFailed, Err: err}
	}

	// A message that was notified but not deleted will be redelivered; report
	// it so the queue does not treat the batch as fully handled.
	if err := w.consumer.Delete(ctx, msg); err != nil {
		if !errors.Is(err, contractx.ErrQueueDelete) {
			err = fmt.Errorf("%w: %w", contractx.ErrQueueDelete, err)
		}
		logger.Error().Err(err).Msg("delete processed message")
		return ItemResult{MessageID: msg.ID, Outcome: OutcomeFailed, Err: err}
	}

	outcome := OutcomeNotified
	if out.Subject == notify.SubjectNoMatch {
		outcome = OutcomeNoMatch
	}
	logger.Debug().
		Str("outcome", string(outcome)).
		Int("matches", out.Matches).
		Msg("fulfillment message handled")
	return ItemResult{MessageID: msg.ID, Outcome: outcome}
}

// Run processes batches back to back, at most one per PollInterval, until ctx
// is cancelled. Receive failures are logged and retried on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(w.cfg.PollInterval), 1)
	w.logger.Info().
		Int("batch_size", w.cfg.BatchSize).
		Dur("wait_time", w.cfg.WaitTime).
		Dur("poll_interval", w.cfg.PollInterval).
		Msg("fulfillment worker started")

	for {
		if err := limiter.Wait(ctx); err != nil {
			// Wait fails early when the next token lies past the deadline.
			<-ctx.Done()
			w.logger.Info().Msg("fulfillment worker stopped")
			return nil
		}

		if _, err := w.ProcessBatch(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info().Msg("fulfillment worker stopped")
				return nil
			}
			w.logger.Error().Err(err).Msg("fulfillment batch failed")
		}
	}
}
