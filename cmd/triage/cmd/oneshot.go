package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/payshield/payment-triage/internal/failure"
	"github.com/payshield/payment-triage/internal/overlay"
	"github.com/payshield/payment-triage/internal/rules"
)

// readInput returns the message payload: the named file when an argument is
// given, stdin otherwise.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func printResult(text string, v interface{}) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Println(text)
	return nil
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a pasted or file-based message against the base rulesets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		raw, err := readInput(args)
		if err != nil {
			return err
		}

		report := a.engine.Validate(raw)
		return printResult(rules.FormatReport(report), report)
	},
}

var assessCmd = &cobra.Command{
	Use:   "assess [file]",
	Short: "Validate a message with the SR2026 overlay applied",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		raw, err := readInput(args)
		if err != nil {
			return err
		}

		report := a.assessor.Assess(raw)
		return printResult(overlay.FormatAssessment(report), report)
	},
}

var failureCmd = &cobra.Command{
	Use:   "failure [file]",
	Short: "Classify a payment-failure notification by reason code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		raw, err := readInput(args)
		if err != nil {
			return err
		}

		report := a.analyzer.Analyze(raw)
		return printResult(failure.FormatReport(report), report)
	},
}

var routeCmd = &cobra.Command{
	Use:   "route [file]",
	Short: "Classify the input kind and run the matching pipeline subset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		raw, err := readInput(args)
		if err != nil {
			return err
		}

		result := a.router.Route(cmd.Context(), raw)
		if jsonOutput {
			return printResult("", result)
		}

		fmt.Printf("Detected: %s\n", result.Kind)
		for _, s := range result.Sections {
			fmt.Printf("\n=== %s ===\n\n%s\n", s.Title, s.Body)
		}
		return nil
	},
}
