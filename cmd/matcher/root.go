package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/david-caro/inspire-matcher/internal/config"
	logpkg "github.com/david-caro/inspire-matcher/internal/logger"
	"github.com/david-caro/inspire-matcher/internal/metrics"
	matchinguc "github.com/david-caro/inspire-matcher/internal/usecase/matching"
)

var (
	envName    string
	configPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&envName, "env", "e", config.GetEnv(),
		"Environment: selects config/<env>.yaml and the log format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a config file (overrides --env lookup)")
}

var rootCmd = &cobra.Command{
	Use:           "matcher",
	Short:         "Compile record-matching specifications into search queries",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app is the wired service graph shared by the commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	matching *matchinguc.Service
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(envName)
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(envName, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	algorithms, err := cfg.Algorithms()
	if err != nil {
		return nil, fmt.Errorf("decode algorithms: %w", err)
	}

	recorder, err := metrics.NewCompileRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	svc := matchinguc.New(algorithms, cfg.Options()).WithRecorder(recorder)
	return &app{cfg: cfg, logger: logger, matching: svc}, nil
}
