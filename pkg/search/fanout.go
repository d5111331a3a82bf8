package search

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tastemap/backend/pkg/place"
)

const (
	defaultCallTimeout = 5 * time.Second
	defaultConcurrency = 4
)

// Coordinator issues one logical query against every registered adapter
// concurrently. Adapters run independently: a slow or failing provider
// only shrinks the result, it never blocks or fails the others.
type Coordinator struct {
	locals      []LocalSearcher
	webs        []WebSearcher
	callTimeout time.Duration
	concurrency int
}

// NewCoordinatorParams configures a Coordinator. Zero values fall back
// to a 5s per-call timeout and a concurrency limit of 4.
type NewCoordinatorParams struct {
	Locals      []LocalSearcher
	Webs        []WebSearcher
	CallTimeout time.Duration
	Concurrency int
}

// NewCoordinator creates a Coordinator over the given adapters.
func NewCoordinator(params NewCoordinatorParams) *Coordinator {
	timeout := params.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Coordinator{
		locals:      params.Locals,
		webs:        params.Webs,
		callTimeout: timeout,
		concurrency: concurrency,
	}
}

// SearchLocal queries every local adapter and concatenates their outputs,
// each candidate stamped with its adapter's tag. Order within one source
// is the adapter's order; no ordering is promised across sources.
func (c *Coordinator) SearchLocal(ctx context.Context, query string, perSourceLimit int) []place.RawCandidate {
	perSource := make([][]place.RawCandidate, len(c.locals))

	eg := errgroup.Group{}
	eg.SetLimit(c.concurrency)
	for i, adapter := range c.locals {
		eg.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
			defer cancel()

			candidates := adapter.SearchLocal(callCtx, query, perSourceLimit)
			for j := range candidates {
				candidates[j].SourceTag = adapter.Tag()
			}
			perSource[i] = candidates
			return nil
		})
	}
	_ = eg.Wait() // adapters never return errors

	out := make([]place.RawCandidate, 0)
	for _, candidates := range perSource {
		out = append(out, candidates...)
	}
	return out
}

// SearchWeb queries every web adapter and concatenates their hits, each
// stamped with its adapter's tag.
func (c *Coordinator) SearchWeb(ctx context.Context, query string, perSourceLimit int) []WebHit {
	perSource := make([][]WebHit, len(c.webs))

	eg := errgroup.Group{}
	eg.SetLimit(c.concurrency)
	for i, adapter := range c.webs {
		eg.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
			defer cancel()

			hits := adapter.SearchWeb(callCtx, query, perSourceLimit)
			for j := range hits {
				hits[j].SourceTag = adapter.Tag()
			}
			perSource[i] = hits
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]WebHit, 0)
	for _, hits := range perSource {
		out = append(out, hits...)
	}
	return out
}
