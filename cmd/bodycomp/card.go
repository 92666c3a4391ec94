// ABOUTME: CLI commands that score readings: card for a stored subject,
// ABOUTME: evaluate for ad-hoc values that are not saved.
package main

import (
	"errors"
	"fmt"

	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/report"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cardPolicy     string
	evaluateGender string
	evaluatePolicy string
)

var cardCmd = &cobra.Command{
	Use:     "card <subject>",
	Aliases: []string{"score"},
	Short:   "Show the latest score for a subject",
	Long: `Score a subject's latest measurement on all six axes and show their
daily protein target.

MISSING VALUES:

  By default an axis with no value scores 0 (worst_case). Use
  --policy exclude to leave unmeasured axes out of the overall score.

EXAMPLES:

  bodycomp card reneer
  bodycomp card ana --policy exclude`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := evaluatorWithPolicy(cardPolicy)
		if err != nil {
			return err
		}

		card, err := report.BuildCard(repo, args[0], ev)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("subject not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load card: %w", err)
		}

		fmt.Printf("%s %s\n", card.Subject.Name, faint.Sprintf("(%s, %s protein profile)", card.Subject.Gender, card.Subject.ProteinProfile))
		if card.Latest == nil {
			fmt.Println(faint.Sprint("  No measurements yet."))
			return nil
		}

		fmt.Printf("Week %d, %s\n\n", card.Latest.WeekNumber, card.Latest.MeasuredOn.Format("2006-01-02"))
		printEvaluation(*card.Evaluation)

		if card.Protein != nil {
			fmt.Println()
			fmt.Printf("Protein  %d-%d g/day, aim for %d g\n", card.Protein.Min, card.Protein.Max, card.Protein.Recommended)
			fmt.Println(faint.Sprintf("         %s", card.Guide.Rationale))
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:     "evaluate <field=value>...",
	Aliases: []string{"eval"},
	Short:   "Score values without saving them",
	Long: `Score a reading without storing it.

EXAMPLES:

  bodycomp evaluate --gender female weight=68 bmi=24.1 body_fat_percent=29
  bodycomp evaluate -g male bmi=22 --policy exclude`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gender, err := models.ParseGender(evaluateGender)
		if err != nil {
			return err
		}
		reading, err := parseValues(args)
		if err != nil {
			return err
		}
		ev, err := evaluatorWithPolicy(evaluatePolicy)
		if err != nil {
			return err
		}
		printEvaluation(ev.Evaluate(reading, gender))
		return nil
	},
}

// evaluatorWithPolicy returns the configured evaluator unless policy overrides it.
func evaluatorWithPolicy(policy string) (*scoring.Evaluator, error) {
	if policy == "" {
		return evaluator, nil
	}
	p, err := scoring.ParseMissingMetricPolicy(policy)
	if err != nil {
		return nil, err
	}
	return scoring.NewEvaluator(p), nil
}

func printEvaluation(eval scoring.Evaluation) {
	for _, m := range eval.PerMetric {
		value := m.RawDisplay
		if !m.Measured {
			value = faint.Sprint(value)
		}
		fmt.Printf("  %s %s %s %s %s\n",
			padRight(m.Name, 13),
			padRight(value, 8),
			faint.Sprint(padRight("ideal "+m.IdealDisplay, 17)),
			scoreBar(m.Score),
			fmt.Sprintf("%3.0f", m.Score))
	}
	fmt.Println()
	c := tierColor(eval.Overall.Tier)
	fmt.Printf("  Overall  %s %s\n", c.Sprintf("%d", eval.Overall.Score), c.Sprint(eval.Overall.Label))
}

func init() {
	cardCmd.Flags().StringVar(&cardPolicy, "policy", "", "missing-value policy: worst_case or exclude")
	evaluateCmd.Flags().StringVarP(&evaluateGender, "gender", "g", "", "male or female (required)")
	evaluateCmd.Flags().StringVar(&evaluatePolicy, "policy", "", "missing-value policy: worst_case or exclude")
	_ = evaluateCmd.MarkFlagRequired("gender")

	evaluateCmd.Annotations = skipStorage
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(evaluateCmd)
}
