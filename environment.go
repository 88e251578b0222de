package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	"github.com/tanpawarit/dining-concierge/dining/detail"
	"github.com/tanpawarit/dining-concierge/dining/dialog"
	"github.com/tanpawarit/dining-concierge/dining/fulfillment"
	"github.com/tanpawarit/dining-concierge/dining/notify"
	"github.com/tanpawarit/dining-concierge/dining/queue"
	"github.com/tanpawarit/dining-concierge/dining/search"
	"github.com/tanpawarit/dining-concierge/pkg/awsx"
	configx "github.com/tanpawarit/dining-concierge/pkg/config"
	logx "github.com/tanpawarit/dining-concierge/pkg/logger"
	"go.opentelemetry.io/otel"
)

// environment builds collaborators from configuration and owns their lifetimes.
type environment struct {
	awsCfg  *aws.Config
	redisQ  *queue.RedisQueue
	closers []func() error
}

func newEnvironment() *environment {
	return &environment{}
}

func (e *environment) Close() {
	logger := logx.Component("main")
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			logger.Warn().Err(err).Msg("close collaborator")
		}
	}
}

func (e *environment) awsConfig(ctx context.Context) (aws.Config, error) {
	if e.awsCfg != nil {
		return *e.awsCfg, nil
	}
	cfg, err := configx.New[awsx.Config]("AWS")
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	awsCfg, err := awsx.Load(ctx, *cfg)
	if err != nil {
		return aws.Config{}, err
	}
	e.awsCfg = &awsCfg
	return awsCfg, nil
}

func (e *environment) redisQueue(ctx context.Context, cfg queue.Config) (*queue.RedisQueue, error) {
	if e.redisQ != nil {
		return e.redisQ, nil
	}
	q, err := queue.NewRedisQueueFromConfig(ctx, cfg, logx.Component("queue"))
	if err != nil {
		return nil, err
	}
	e.redisQ = q
	e.closers = append(e.closers, q.Close)
	return q, nil
}

// Producer returns the request queue used by the dialog. An SQS backend with no
// URL degrades to a queue that logs and drops requests.
func (e *environment) Producer(ctx context.Context) (contractx.RequestQueue, error) {
	cfg, err := configx.New[queue.Config]("QUEUE")
	if err != nil {
		return nil, fmt.Errorf("load queue config: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case queue.BackendRedis:
		return e.redisQueue(ctx, *cfg)
	case queue.BackendSQS, "":
		if strings.TrimSpace(cfg.URL) == "" {
			logger := logx.Component("queue")
			logger.Warn().Msg("QUEUE_URL is empty, fulfillment requests will be dropped")
			return dialog.DiscardQueue{Logger: logger}, nil
		}
		awsCfg, err := e.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return queue.NewSQSQueueFromConfig(awsCfg, cfg.URL)
	default:
		return nil, fmt.Errorf("%w: unknown queue backend %q", contractx.ErrNotConfigured, cfg.Backend)
	}
}

func (e *environment) Consumer(ctx context.Context) (contractx.QueueConsumer, error) {
	cfg, err := configx.New[queue.Config]("QUEUE")
	if err != nil {
		return nil, fmt.Errorf("load queue config: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case queue.BackendRedis:
		return e.redisQueue(ctx, *cfg)
	case queue.BackendSQS, "":
		awsCfg, err := e.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return queue.NewSQSQueueFromConfig(awsCfg, cfg.URL)
	default:
		return nil, fmt.Errorf("%w: unknown queue backend %q", contractx.ErrNotConfigured, cfg.Backend)
	}
}

func (e *environment) Search(ctx context.Context) (contractx.SearchGateway, error) {
	cfg, err := configx.New[search.Config]("SEARCH")
	if err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	awsCfg, err := e.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return search.NewOpenSearchFromConfig(*cfg, awsCfg)
}

func (e *environment) Details(ctx context.Context) (contractx.DetailStore, error) {
	cfg, err := configx.New[detail.Config]("DETAIL")
	if err != nil {
		return nil, fmt.Errorf("load detail config: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case detail.BackendPostgres:
		db, err := detail.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		store, err := detail.NewPostgresStore(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		e.closers = append(e.closers, store.Close)
		return store, nil
	case detail.BackendDynamoDB, "":
		awsCfg, err := e.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return detail.NewDynamoStoreFromConfig(awsCfg, cfg.Table)
	default:
		return nil, fmt.Errorf("%w: unknown detail backend %q", contractx.ErrNotConfigured, cfg.Backend)
	}
}

func (e *environment) Notifier(ctx context.Context) (contractx.Notifier, error) {
	cfg, err := configx.New[notify.Config]("NOTIFY")
	if err != nil {
		return nil, fmt.Errorf("load notify config: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case notify.BackendSMTP:
		return notify.NewSMTPNotifier(*cfg)
	case notify.BackendSES, "":
		awsCfg, err := e.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return notify.NewSESNotifierFromConfig(awsCfg, cfg.Sender)
	default:
		return nil, fmt.Errorf("%w: unknown notify backend %q", contractx.ErrNotConfigured, cfg.Backend)
	}
}

func (e *environment) Worker(ctx context.Context, cfg fulfillment.Config) (*fulfillment.Worker, error) {
	consumer, err := e.Consumer(ctx)
	if err != nil {
		return nil, err
	}
	searchGW, err := e.Search(ctx)
	if err != nil {
		return nil, err
	}
	details, err := e.Details(ctx)
	if err != nil {
		return nil, err
	}
	notifier, err := e.Notifier(ctx)
	if err != nil {
		return nil, err
	}
	return fulfillment.New(consumer, searchGW, details, notifier, cfg,
		fulfillment.WithLogger(logx.Component("worker")),
		fulfillment.WithTracer(otel.Tracer("dining-concierge/worker")),
	)
}
