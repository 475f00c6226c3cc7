package matcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/david-caro/inspire-matcher/internal/compiler"
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
	"github.com/david-caro/inspire-matcher/internal/logger"
	"github.com/david-caro/inspire-matcher/internal/metrics"
	matchinguc "github.com/david-caro/inspire-matcher/internal/usecase/matching"
)

// Outcome classifies a compilation result.
type Outcome = compiler.Outcome

// Compilation outcomes.
const (
	OutcomeQuery    = compiler.OutcomeQuery
	OutcomeNoSignal = compiler.OutcomeNoSignal
	OutcomeAbsent   = compiler.OutcomeAbsent
)

// Result is one compiled specification.
type Result struct {
	Type    string         // "exact" or "nested"
	Outcome Outcome        // query / no_signal / absent
	Query   map[string]any // search request body, nil when Outcome is absent
}

// HasSignal reports whether Query may be submitted to the search engine.
// A no_signal exact query has an empty should list and would match everything.
func (r Result) HasSignal() bool {
	return r.Outcome == OutcomeQuery
}

// Client is the matcher SDK entry point. It is safe for concurrent use.
type Client struct {
	svc    *matchinguc.Service
	logger *zap.Logger
}

// New creates a Client and validates every configured algorithm.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	algorithms := make([]match.Algorithm, 0, len(cfg.algorithms))
	seen := make(map[string]bool, len(cfg.algorithms))
	for _, a := range cfg.algorithms {
		if seen[a.name] {
			return nil, fmt.Errorf("matcher: duplicate algorithm %q", a.name)
		}
		seen[a.name] = true

		alg, err := match.DecodeAlgorithm(a.name, a.queries)
		if err != nil {
			return nil, fmt.Errorf("matcher: %w", err)
		}
		algorithms = append(algorithms, alg)
	}

	svc := matchinguc.New(algorithms, compiler.Options{CollectionsField: cfg.collectionsField})
	if cfg.metricsReg != nil {
		rec, err := metrics.NewCompileRecorder(cfg.metricsReg)
		if err != nil {
			return nil, fmt.Errorf("matcher: %w", err)
		}
		svc = svc.WithRecorder(rec)
	}

	return &Client{svc: svc, logger: cfg.logger}, nil
}

// Compile compiles one specification map against a record. The record is a
// generically decoded document: maps, slices and scalars.
func (c *Client) Compile(ctx context.Context, spec map[string]any, rec any) (Result, error) {
	s, err := match.Decode(spec)
	if err != nil {
		return Result{}, err
	}
	compiled, err := c.svc.Compile(c.context(ctx), s, record.FromAny(rec))
	if err != nil {
		return Result{}, err
	}
	return toResult(compiled)
}

// CompileAlgorithm compiles every specification of the named algorithm.
// Only results with match signal are returned.
func (c *Client) CompileAlgorithm(ctx context.Context, name string, rec any) ([]Result, error) {
	compiled, err := c.svc.CompileAlgorithm(c.context(ctx), name, record.FromAny(rec))
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(compiled))
	for _, cq := range compiled {
		r, err := toResult(cq)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Algorithms returns the configured algorithm names sorted.
func (c *Client) Algorithms() []string {
	algs := c.svc.Algorithms()
	names := make([]string, 0, len(algs))
	for _, a := range algs {
		names = append(names, a.Name)
	}
	return names
}

func (c *Client) context(ctx context.Context) context.Context {
	if c.logger == nil {
		return ctx
	}
	return logger.ContextWithLogger(ctx, c.logger)
}

func toResult(c compiler.Compiled) (Result, error) {
	r := Result{Type: string(c.Type), Outcome: c.Outcome}
	if c.Query.IsZero() {
		return r, nil
	}
	q, err := c.Query.Map()
	if err != nil {
		return Result{}, fmt.Errorf("matcher: encode query: %w", err)
	}
	r.Query = q
	return r, nil
}
