package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/david-caro/inspire-matcher/internal/domain/match"
)

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List configured match algorithms and their specifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		type entry struct {
			Name    string           `yaml:"name"`
			Queries []map[string]any `yaml:"queries"`
		}
		algs := a.matching.Algorithms()
		out := make([]entry, 0, len(algs))
		for _, alg := range algs {
			e := entry{Name: alg.Name}
			for _, q := range alg.Queries {
				e.Queries = append(e.Queries, match.Encode(q))
			}
			out = append(out, e)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("write algorithms: %w", err)
		}
		return enc.Close()
	},
}
