package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/render"
	"github.com/cropwise-dev/cropwise/internal/cli/soil"
	"github.com/cropwise-dev/cropwise/internal/cli/userconfig"
)

// ErrInvalidInput is returned when the soil sample fails validation
var ErrInvalidInput = errors.New("invalid soil input")

// NewPredictCmd creates the predict command
func NewPredictCmd(env *Env) *cobra.Command {
	raw := make(map[string]*string, len(soil.Measurements))
	var chart bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Recommend a crop for a soil sample",
		Example: `  cropwise predict --N 90 --P 42 --K 43 --temperature 20.9 \
    --humidity 82 --ph 6.5 --rainfall 202.9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(raw))
			for _, m := range soil.Measurements {
				v := *raw[m.Key]
				if v == "" && env.Prompter.Interactive() {
					label := m.Label
					if m.Unit != "" {
						label = fmt.Sprintf("%s (%s)", m.Label, m.Unit)
					}
					var err error
					if v, err = env.Prompter.Input(label, "", nil); err != nil {
						return err
					}
				}
				values[m.Key] = v
			}
			return runPredict(cmd, env, soil.Parse(values), chart)
		},
	}

	for _, m := range soil.Measurements {
		raw[m.Key] = cmd.Flags().String(m.Key, "", flagUsage(m))
	}
	cmd.Flags().BoolVar(&chart, "chart", false, "Also chart the soil sample")

	return cmd
}

func flagUsage(m soil.Measurement) string {
	usage := fmt.Sprintf("%s, %g to %g", m.Label, m.Min, m.Max)
	if m.Unit != "" {
		usage += " " + m.Unit
	}
	return usage
}

func runPredict(cmd *cobra.Command, env *Env, input soil.Input, chart bool) error {
	check := soil.Validate(input)
	render.Validation(env.Err, check)
	if !check.OK() {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(check.Errors, "; "))
	}
	for _, w := range check.Warnings {
		env.Logger.Debug().Str("warning", w).Msg("Soil sample warning")
	}

	result, err := env.Client.Predict(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	render.Prediction(env.Out, result)
	if chart {
		fmt.Fprintln(env.Out)
		render.Soil(env.Out, input)
	}

	entry := userconfig.HistoryEntry{
		Time:            time.Now(),
		Input:           input,
		RecommendedCrop: result.RecommendedCrop,
		BestModel:       result.BestModel,
		Predictions:     result.Predictions,
	}
	if err := userconfig.AddHistory(entry); err != nil {
		env.Logger.Warn().Err(err).Msg("Failed to save local history")
	}

	return nil
}
