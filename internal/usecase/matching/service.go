package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/david-caro/inspire-matcher/internal/compiler"
	"github.com/david-caro/inspire-matcher/internal/domain"
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
	"github.com/david-caro/inspire-matcher/internal/logger"
)

// OutcomeError labels failed compilations in recorded metrics.
const OutcomeError = "error"

// Service compiles match specifications and configured algorithms against records.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	algorithms map[string]match.Algorithm
	opts       compiler.Options
	recorder   Recorder
}

// New creates a matching service over the given algorithms.
func New(algorithms []match.Algorithm, opts compiler.Options) *Service {
	byName := make(map[string]match.Algorithm, len(algorithms))
	for _, a := range algorithms {
		byName[a.Name] = a
	}
	return &Service{algorithms: byName, opts: opts}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// Compile compiles one specification against a record.
func (s *Service) Compile(
	ctx context.Context, spec match.Specification, rec record.Value,
) (compiler.Compiled, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	c, err := compiler.Compile(spec, rec, s.opts)

	elapsed := time.Since(start)
	matchType := match.Type("unknown")
	if spec != nil {
		matchType = spec.Type()
	}

	if err != nil {
		s.observe(matchType, OutcomeError, elapsed)
		log.Warn("Match specification rejected",
			zap.String("type", string(matchType)),
			zap.Error(err),
		)
		return compiler.Compiled{}, fmt.Errorf("compile %s: %w", matchType, err)
	}

	s.observe(matchType, string(c.Outcome), elapsed)
	log.Debug("Match specification compiled",
		zap.String("type", string(matchType)),
		zap.String("outcome", string(c.Outcome)),
		zap.Duration("duration", elapsed),
	)
	return c, nil
}

// CompileAlgorithm compiles every specification of the named algorithm in
// order. Results without match signal are dropped. A specification defect
// aborts the whole algorithm.
func (s *Service) CompileAlgorithm(
	ctx context.Context, name string, rec record.Value,
) ([]compiler.Compiled, error) {
	alg, err := s.Algorithm(name)
	if err != nil {
		return nil, err
	}

	ctx = logger.With(ctx, zap.String("algorithm", name))

	out := make([]compiler.Compiled, 0, len(alg.Queries))
	for i, spec := range alg.Queries {
		c, err := s.Compile(ctx, spec, rec)
		if err != nil {
			return nil, fmt.Errorf("algorithm %q query %d: %w", name, i, err)
		}
		if !c.HasSignal() {
			continue
		}
		out = append(out, c)
	}

	logger.FromContext(ctx).Debug("Algorithm compiled",
		zap.Int("queries", len(alg.Queries)),
		zap.Int("with_signal", len(out)),
	)
	return out, nil
}

// Algorithm returns the named algorithm.
func (s *Service) Algorithm(name string) (match.Algorithm, error) {
	alg, ok := s.algorithms[name]
	if !ok {
		return match.Algorithm{}, fmt.Errorf("%w: %q", domain.ErrAlgorithmNotFound, name)
	}
	return alg, nil
}

// Algorithms returns all algorithms sorted by name.
func (s *Service) Algorithms() []match.Algorithm {
	out := make([]match.Algorithm, 0, len(s.algorithms))
	for _, a := range s.algorithms {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) observe(matchType match.Type, outcome string, elapsed time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveCompile(matchType, outcome, elapsed)
	}
}
