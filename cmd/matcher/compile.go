package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/david-caro/inspire-matcher/internal/compiler"
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
	logpkg "github.com/david-caro/inspire-matcher/internal/logger"
)

var (
	specPath      string
	algorithmName string
	recordPath    string
	showAll       bool
)

func init() {
	compileCmd.Flags().StringVar(&specPath, "spec", "", "Path to a YAML or JSON match specification")
	compileCmd.Flags().StringVarP(&algorithmName, "algorithm", "a", "", "Name of a configured algorithm")
	compileCmd.Flags().StringVarP(&recordPath, "record", "r", "-", "Path to a JSON record (- for stdin)")
	compileCmd.Flags().BoolVar(&showAll, "all", false, "With --spec, print results without match signal too")
	compileCmd.MarkFlagsMutuallyExclusive("spec", "algorithm")
	compileCmd.MarkFlagsOneRequired("spec", "algorithm")
	rootCmd.AddCommand(compileCmd)
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a specification or a configured algorithm against a record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		rec, err := readRecord(cmd.InOrStdin(), recordPath)
		if err != nil {
			return err
		}
		ctx := logpkg.ContextWithLogger(cmd.Context(), a.logger)

		var results []compiler.Compiled
		if specPath != "" {
			spec, err := readSpecification(specPath)
			if err != nil {
				return err
			}
			c, err := a.matching.Compile(ctx, spec, rec)
			if err != nil {
				return err
			}
			if c.HasSignal() || showAll {
				results = append(results, c)
			}
		} else {
			results, err = a.matching.CompileAlgorithm(ctx, algorithmName, rec)
			if err != nil {
				return err
			}
		}

		return writeResults(cmd.OutOrStdout(), results)
	},
}

// readRecord parses a JSON record from a file or, for "-", from stdin.
func readRecord(stdin io.Reader, path string) (record.Value, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return record.Value{}, fmt.Errorf("read record: %w", err)
	}

	parsed, err := oj.Parse(data)
	if err != nil {
		return record.Value{}, fmt.Errorf("parse record: %w", err)
	}
	return record.FromAny(parsed), nil
}

// readSpecification decodes one match specification. JSON is valid YAML.
func readSpecification(path string) (match.Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read specification: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}
	if raw == nil {
		return nil, errors.New("parse specification: empty document")
	}
	return match.Decode(raw)
}

type compiledOutput struct {
	Type    match.Type       `json:"type"`
	Outcome compiler.Outcome `json:"outcome"`
	Body    any              `json:"body,omitempty"`
}

func writeResults(w io.Writer, results []compiler.Compiled) error {
	out := make([]compiledOutput, 0, len(results))
	for _, c := range results {
		o := compiledOutput{Type: c.Type, Outcome: c.Outcome}
		if !c.Query.IsZero() {
			o.Body = c.Query
		}
		out = append(out, o)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
