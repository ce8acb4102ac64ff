package extract

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result pairs a document with its extraction outcome. Err is set for
// document-level failures; Items is nil in that case.
type Result struct {
	Doc   *Document
	Items []*Item
	Err   error
}

// ExtractAll runs independent documents through a bounded worker pool.
// Per-document extraction stays sequential; documents share no mutable
// state except the securities registry, which serializes itself. Results
// come back in input order regardless of completion order. A document
// failure is recorded in its Result, not returned, so one bad document
// never aborts the batch; only context cancellation stops the pool.
func (e *Engine) ExtractAll(ctx context.Context, docs []*Document, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items, err := e.Extract(doc)
			results[i] = Result{Doc: doc, Items: items, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
