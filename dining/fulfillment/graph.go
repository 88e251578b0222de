package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/dining-concierge/dining/nodes"
	metricsx "github.com/tanpawarit/dining-concierge/pkg/metrics"
	"go.opentelemetry.io/otel/codes"
)

// traced wraps a node so each step gets a span and a latency sample.
func traced[I, O any](w *Worker, step string, fn func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		ctx, span := w.tracer.Start(ctx, "fulfillment."+step)
		defer span.End()

		start := time.Now()
		out, err := fn(ctx, in)
		metricsx.PipelineStepSeconds.WithLabelValues(step).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return out, err
	}
}

func (w *Worker) compilePipeline(ctx context.Context) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("parse_request",
		compose.InvokableLambda(traced(w, "parse_request", func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ParseRequest(in, w.validate)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node parse_request: %w", err)
	}

	if err := graph.AddLambdaNode("search_candidates",
		compose.InvokableLambda(traced(w, "search_candidates", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SearchCandidates(ctx, in, w.search, w.cfg.TopN)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node search_candidates: %w", err)
	}

	if err := graph.AddLambdaNode("lookup_details",
		compose.InvokableLambda(traced(w, "lookup_details", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LookupDetails(ctx, in, w.details)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node lookup_details: %w", err)
	}

	if err := graph.AddLambdaNode("compose_notification",
		compose.InvokableLambda(traced(w, "compose_notification", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ComposeNotification(in)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node compose_notification: %w", err)
	}

	if err := graph.AddLambdaNode("send_notification",
		compose.InvokableLambda(traced(w, "send_notification", func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.SendNotification(ctx, in, w.notifier)
		})),
	); err != nil {
		return nil, fmt.Errorf("add node send_notification: %w", err)
	}

	edges := [][2]string{
		{compose.START, "parse_request"},
		{"parse_request", "search_candidates"},
		{"search_candidates", "lookup_details"},
		{"lookup_details", "compose_notification"},
		{"compose_notification", "send_notification"},
		{"send_notification", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("fulfillment.process_message"))
	if err != nil {
		return nil, fmt.Errorf("compile fulfillment graph: %w", err)
	}
	return runner, nil
}
