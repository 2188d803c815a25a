package seals

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentResolutions = 8

// VerifyRequest is a single seal to check within a batch.
type VerifyRequest struct {
	Definition SealDefinition
	Message    []byte
	Proof      *SealProof
}

// VerifyResult holds the outcome for the request at the same index.
type VerifyResult struct {
	Status SealStatus
	Err    error
}

// VerifyBatch resolves and verifies a set of seals concurrently against the
// same resolver. Per-seal failures are reported in the matching result slot,
// the returned error is non-nil only when the context is canceled before all
// resolutions complete.
func VerifyBatch(
	ctx context.Context, resolver Resolver, requests []VerifyRequest,
) ([]VerifyResult, error) {
	results := make([]VerifyResult, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolutions)

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			status, err := ResolveStatus(
				ctx, resolver, req.Definition, req.Message, req.Proof,
			)
			results[i] = VerifyResult{Status: status, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
