package nodes

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

// LookupDetails resolves candidates in one batched call. Candidates without a
// detail record are dropped; the rest keep search order.
func LookupDetails(ctx context.Context, in *GraphState, store contractx.DetailStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if len(in.Candidates) == 0 {
		return in, nil
	}

	ids := make([]string, 0, len(in.Candidates))
	for _, c := range in.Candidates {
		ids = append(ids, c.ID)
	}

	details, err := store.BatchGet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup details: %w", err)
	}

	in.Restaurants = joinDetails(in.Candidates, details)
	return in, nil
}

func joinDetails(candidates []contractx.Candidate, details map[string]contractx.Detail) []contractx.Detail {
	out := make([]contractx.Detail, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		d, ok := details[c.ID]
		if !ok {
			continue
		}
		seen[c.ID] = struct{}{}
		if d.ID == "" {
			d.ID = c.ID
		}
		out = append(out, d)
	}
	return out
}
