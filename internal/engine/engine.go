package engine

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/queryir"
	"github.com/roach88/cinegraph/internal/store"
)

// DefaultConcurrency bounds ResolveAll when no option overrides it.
const DefaultConcurrency = 4

// Engine resolves plans over a loaded store and its index.
//
// Thread-safety: an Engine holds no mutable state after New and is safe
// for concurrent use.
type Engine struct {
	store       *store.Store
	index       *index.Index
	logger      *slog.Logger
	ids         QueryIDGenerator
	concurrency int
	locale      language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithQueryIDGenerator sets the query id source. Default: UUIDv7Generator.
func WithQueryIDGenerator(g QueryIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithConcurrency bounds the number of plans ResolveAll runs at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLocale sets the collation locale used by SortCollated.
// Default: language.Und (root collation).
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

// New creates an Engine. The store must be loaded and the index built
// from it before the first Resolve; New itself does not check.
func New(s *store.Store, idx *index.Index, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		index:       idx,
		logger:      slog.Default(),
		ids:         UUIDv7Generator{},
		concurrency: DefaultConcurrency,
		locale:      language.Und,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ResultEntity is one result row.
type ResultEntity struct {
	ID      model.EntityID `json:"id"`
	Kind    model.Kind     `json:"kind"`
	Display string         `json:"display"`
}

// Result is the ordered outcome of one Resolve call.
type Result struct {
	QueryID string         `json:"query_id"`
	Plan    string         `json:"plan,omitempty"`
	Rows    []ResultEntity `json:"rows"`
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Displays returns the display attribute of every row, in order.
func (r *Result) Displays() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Display
	}
	return out
}

// path is a partial traversal. Only the projected entity and the current
// tip are kept: predicates are applied as positions are reached.
type path struct {
	out model.EntityID
	tip model.EntityID
}

// Resolve runs plan and returns its rows.
//
// The plan is validated first; no traversal happens for an invalid plan.
// The context is checked between hops. Every error is a *QueryError
// carrying the query id.
func (e *Engine) Resolve(ctx context.Context, plan queryir.Plan) (*Result, error) {
	qid := e.ids.Generate()
	log := e.logger.With("query_id", qid)
	if plan.Name != "" {
		log = log.With("plan", plan.Name)
	}

	rows, err := e.resolve(ctx, log, plan)
	if err != nil {
		qe := newQueryError(qid, plan.Name, err)
		if qe.Code == ErrCodeUnknownEntity {
			log.Error("index and store out of sync", "error", err)
		}
		return nil, qe
	}

	log.Debug("query resolved",
		"start", plan.Start,
		"hops", len(plan.Hops),
		"distinct", plan.Distinct,
		"rows", len(rows))

	return &Result{QueryID: qid, Plan: plan.Name, Rows: rows}, nil
}

func (e *Engine) resolve(ctx context.Context, log *slog.Logger, plan queryir.Plan) ([]ResultEntity, error) {
	if err := queryir.Validate(plan); err != nil {
		return nil, err
	}
	if !e.store.Loaded() {
		return nil, ErrNotLoaded
	}

	byPos := make([][]queryir.Predicate, len(plan.Hops)+1)
	for _, f := range plan.Filters {
		byPos[f.At] = append(byPos[f.At], f.Predicate)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	starts, err := e.store.IDs(plan.Start)
	if err != nil {
		return nil, err
	}
	frontier := make([]path, 0, len(starts))
	for _, id := range starts {
		ok, err := e.admit(id, byPos[0])
		if err != nil {
			return nil, err
		}
		if ok {
			frontier = append(frontier, path{out: id, tip: id})
		}
	}

	for i, hop := range plan.Hops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pos := i + 1
		next := make([]path, 0, len(frontier))
		for _, p := range frontier {
			seq, err := e.index.Step(p.tip, hop.Rel, hop.Dir)
			if err != nil {
				return nil, err
			}
			for id := range seq {
				ok, err := e.admit(id, byPos[pos])
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				np := path{out: p.out, tip: id}
				if pos == plan.Output {
					np.out = id
				}
				next = append(next, np)
			}
		}
		log.Debug("hop expanded", "hop", pos, "rel", hop.Rel, "dir", hop.Dir, "paths", len(next))
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	ids := make([]model.EntityID, len(frontier))
	for i, p := range frontier {
		ids[i] = p.out
	}
	if plan.Distinct {
		ids = dedupe(ids)
	}

	rows := make([]ResultEntity, len(ids))
	for i, id := range ids {
		ent, err := e.store.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
		}
		rows[i] = ResultEntity{ID: id, Kind: ent.Kind(), Display: ent.Display()}
	}

	if err := e.sortRows(rows, plan.Sort); err != nil {
		return nil, err
	}
	if plan.Limit > 0 && len(rows) > plan.Limit {
		rows = rows[:plan.Limit]
	}
	return rows, nil
}

// admit looks up id and checks the predicates bound to its position.
func (e *Engine) admit(id model.EntityID, preds []queryir.Predicate) (bool, error) {
	ent, err := e.store.Lookup(id)
	if err != nil {
		return false, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	return matchAll(ent, preds)
}

// dedupe keeps the first occurrence of each id.
func dedupe(ids []model.EntityID) []model.EntityID {
	seen := make(map[model.EntityID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (e *Engine) sortRows(rows []ResultEntity, mode queryir.SortMode) error {
	switch mode {
	case "", queryir.SortNone:
		return nil
	case queryir.SortIdentity:
		slices.SortStableFunc(rows, func(a, b ResultEntity) int {
			return cmp.Or(cmp.Compare(a.Display, b.Display), cmp.Compare(a.ID, b.ID))
		})
		return nil
	case queryir.SortCollated:
		// Collators keep internal buffers; one per call.
		c := collate.New(e.locale)
		slices.SortStableFunc(rows, func(a, b ResultEntity) int {
			return cmp.Or(c.CompareString(a.Display, b.Display), cmp.Compare(a.ID, b.ID))
		})
		return nil
	}
	return &queryir.PlanError{Code: queryir.CodeInvalidPlan, Message: fmt.Sprintf("unknown sort mode %q", mode)}
}

// Count resolves plan and returns its row count.
func (e *Engine) Count(ctx context.Context, plan queryir.Plan) (int, error) {
	res, err := e.Resolve(ctx, plan)
	if err != nil {
		return 0, err
	}
	return res.Len(), nil
}

// ResolveAll resolves plans concurrently, at most WithConcurrency at a
// time, and returns results in input order. The first failure cancels the
// remaining plans and is returned.
func (e *Engine) ResolveAll(ctx context.Context, plans []queryir.Plan) ([]*Result, error) {
	results := make([]*Result, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, plan := range plans {
		g.Go(func() error {
			res, err := e.Resolve(gctx, plan)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
