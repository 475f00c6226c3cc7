package matcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type algorithmConfig struct {
	name    string
	queries []map[string]any
}

type clientConfig struct {
	algorithms       []algorithmConfig
	collectionsField string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithAlgorithm registers a named algorithm built from specification maps,
// in the same shape as the service configuration file.
func WithAlgorithm(name string, queries ...map[string]any) Option {
	return optionFunc(func(c *clientConfig) {
		c.algorithms = append(c.algorithms, algorithmConfig{name: name, queries: queries})
	})
}

// WithCollectionsField sets the search field used by exact collection filters.
// Defaults to "_collections".
func WithCollectionsField(field string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collectionsField = field
	})
}

// WithLogger enables structured logging for compilations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers compile metrics (outcome counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
