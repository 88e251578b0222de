package nodes

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

func SearchCandidates(
	ctx context.Context,
	in *GraphState,
	gateway contractx.SearchGateway,
	limit int,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	candidates, err := gateway.Search(ctx, in.Request.Cuisine, in.Request.Location, limit)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	in.Candidates = candidates
	return in, nil
}
