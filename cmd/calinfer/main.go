package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"calinfer/adapters/postgres"
	"calinfer/adapters/regression"
	"calinfer/adapters/rng"
	"calinfer/adapters/tabular"
	"calinfer/domain/model"
	"calinfer/internal/calibrate"
	"calinfer/internal/perturb"
	"calinfer/internal/report"
	"calinfer/internal/simulate"
	"calinfer/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for DATABASE_URL and friends
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "calinfer",
		Short: "Calibrated inference under distributional uncertainty",
	}

	rootCmd.AddCommand(
		newSampleCmd(),
		newModelsCmd(),
		newMomentsCmd(),
		newCoverageCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSampleCmd() *cobra.Command {
	var n int
	var delta, mean, sd float64
	var seed int64
	var draws int

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw perturbed Gaussian samples from one seed",
		Long: `Draw one or more samples from a perturbation seed and print them as CSV.

All draws share the seed's realized perturbation, so their sample moments
deviate from the nominal mean/sd in a correlated way.

Example: calinfer sample --n 500 --delta 2 --draws 3 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			streams := rngadapter()
			source, err := streams.Stream(cmd.Context(), "sample", seed)
			if err != nil {
				return err
			}
			s, err := perturb.NewSeed(source, n, delta)
			if err != nil {
				return err
			}

			samples := make([][]float64, draws)
			for d := range samples {
				if samples[d], err = s.Draw(source, mean, sd); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			headers := make([]string, draws)
			for d := range headers {
				headers[d] = fmt.Sprintf("draw%d", d+1)
			}
			fmt.Fprintln(out, strings.Join(headers, ","))
			for i := 0; i < n; i++ {
				cells := make([]string, draws)
				for d := range cells {
					cells[d] = strconv.FormatFloat(samples[d][i], 'g', -1, 64)
				}
				fmt.Fprintln(out, strings.Join(cells, ","))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 100, "Sample size")
	cmd.Flags().Float64Var(&delta, "delta", 0, "Perturbation strength")
	cmd.Flags().Float64Var(&mean, "mean", 0, "Nominal mean")
	cmd.Flags().Float64Var(&sd, "sd", 1, "Nominal standard deviation")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().IntVar(&draws, "draws", 1, "Number of samples to draw from the same seed")

	return cmd
}

func newModelsCmd() *cobra.Command {
	var dataPath, target, format string
	var specStrings []string
	var level float64
	var weighted, store bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Model-disagreement calibration over a dataset",
		Long: `Fit several candidate model specifications to one dataset and calibrate
the target coefficient against their disagreement.

Specifications use "response ~ p1 + p2" notation; the target predictor must
appear in every specification.

Example: calinfer models --data obs.csv --target x \
    --spec "y ~ x + z1" --spec "y ~ x + z1 + z2"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := tabular.NewReader(dataPath).ReadFrame()
			if err != nil {
				return err
			}
			specs := make([]model.ModelSpec, len(specStrings))
			for i, s := range specStrings {
				if specs[i], err = parseSpec(s); err != nil {
					return err
				}
			}

			result, err := calibrate.ModelsWithOptions(regression.NewOLS(), frame, specs, target,
				calibrate.Options{Level: level, PrecisionWeighted: weighted})
			if err != nil {
				return err
			}
			if store {
				if err := storeReport(cmd.Context(), result); err != nil {
					return err
				}
			}
			return emit(cmd, result, format)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Path to a .csv or .xlsx dataset (required)")
	cmd.Flags().StringVar(&target, "target", "", "Target predictor name (required)")
	cmd.Flags().StringArrayVar(&specStrings, "spec", nil, "Model specification, repeatable (required, at least 2)")
	cmd.Flags().Float64Var(&level, "level", calibrate.DefaultLevel, "Confidence level")
	cmd.Flags().BoolVar(&weighted, "weighted", false, "Use precision-weighted mean of candidates")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the report to DATABASE_URL")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html, json")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func newMomentsCmd() *cobra.Command {
	var dataPath, targetCol, format string
	var auxStrings []string
	var level float64
	var store bool

	cmd := &cobra.Command{
		Use:   "moments",
		Short: "Background-moment calibration of a sample mean",
		Long: `Calibrate the mean of a target column using auxiliary columns whose
population means are known.

Each --aux takes "column=populationMean".

Example: calinfer moments --data obs.csv --target-col income \
    --aux age=41.9 --aux height=170.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := tabular.NewReader(dataPath).ReadFrame()
			if err != nil {
				return err
			}
			sample, err := frame.Column(targetCol)
			if err != nil {
				return err
			}

			auxiliaries := make([]model.Auxiliary, len(auxStrings))
			for i, a := range auxStrings {
				name, popMean, err := parseAux(a)
				if err != nil {
					return err
				}
				values, err := frame.Column(name)
				if err != nil {
					return err
				}
				auxiliaries[i] = model.Auxiliary{Name: name, Values: values, PopulationMean: popMean}
			}

			result, err := calibrate.MomentsWithOptions(sample, auxiliaries,
				calibrate.Options{Level: level})
			if err != nil {
				return err
			}
			if store {
				if err := storeReport(cmd.Context(), result); err != nil {
					return err
				}
			}
			return emit(cmd, result, format)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Path to a .csv or .xlsx dataset (required)")
	cmd.Flags().StringVar(&targetCol, "target-col", "", "Target column name (required)")
	cmd.Flags().StringArrayVar(&auxStrings, "aux", nil, "Auxiliary column with known mean, repeatable (required)")
	cmd.Flags().Float64Var(&level, "level", calibrate.DefaultLevel, "Confidence level")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the report to DATABASE_URL")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown, html, json")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("target-col")
	_ = cmd.MarkFlagRequired("aux")

	return cmd
}

func newCoverageCmd() *cobra.Command {
	var n, replications, parallelism, optional, auxiliaries int
	var delta, effect, level float64
	var seed int64

	cmd := &cobra.Command{
		Use:   "coverage [causal|moments]",
		Short: "Empirical coverage experiment for the calibrated interval",
		Long: `Repeat a synthetic scenario many times and report how often the
calibrated and naive (sampling-only) intervals cover the truth.

Examples:
  calinfer coverage causal --n 500 --delta 2 --replications 1000
  calinfer coverage moments --n 100 --delta 10 --aux-count 4 --replications 1000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var scenario simulate.Scenario
			switch args[0] {
			case "causal":
				scenario = simulate.CausalScenario{
					N: n, Delta: delta, TrueEffect: effect,
					Confounders: 3, Optional: optional,
					Solver: regression.NewOLS(), Level: level,
				}
			case "moments":
				scenario = simulate.MomentScenario{
					N: n, Delta: delta, TrueMean: effect,
					Auxiliaries: auxiliaries, Level: level,
				}
			default:
				return fmt.Errorf("unknown scenario %q (want causal or moments)", args[0])
			}

			result, err := simulate.RunCoverage(cmd.Context(), rngadapter(), scenario, simulate.Config{
				Replications: replications,
				BaseSeed:     seed,
				Parallelism:  parallelism,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().IntVar(&n, "n", 500, "Sample size per replication")
	cmd.Flags().Float64Var(&delta, "delta", 2, "True perturbation strength")
	cmd.Flags().Float64Var(&effect, "truth", 1.0, "True effect (causal) or true mean (moments)")
	cmd.Flags().IntVar(&optional, "optional", 3, "Optional covariates; candidate models = 2^optional (causal)")
	cmd.Flags().IntVar(&auxiliaries, "aux-count", 4, "Auxiliary covariates (moments)")
	cmd.Flags().IntVar(&replications, "replications", 1000, "Number of replications")
	cmd.Flags().Float64Var(&level, "level", calibrate.DefaultLevel, "Confidence level")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Base random seed")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Concurrent replications (0 = all CPUs)")

	return cmd
}

func rngadapter() ports.RNGPort {
	return rng.New()
}

// parseSpec translates "y ~ x1 + x2" notation into a structured ModelSpec.
// This is the thin edge adapter; the core never parses formulas.
func parseSpec(s string) (model.ModelSpec, error) {
	parts := strings.SplitN(s, "~", 2)
	if len(parts) != 2 {
		return model.ModelSpec{}, fmt.Errorf("invalid spec %q: want \"response ~ p1 + p2\"", s)
	}
	predictors := strings.Split(parts[1], "+")
	spec := model.NewModelSpec(parts[0], predictors...)
	if err := spec.Validate(); err != nil {
		return model.ModelSpec{}, fmt.Errorf("invalid spec %q: %w", s, err)
	}
	return spec, nil
}

func parseAux(s string) (string, float64, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid aux %q: want \"column=populationMean\"", s)
	}
	popMean, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid aux %q: %v", s, err)
	}
	return strings.TrimSpace(parts[0]), popMean, nil
}

func emit(cmd *cobra.Command, result *model.CalibrationReport, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "text":
		fmt.Fprint(out, report.Text(result))
	case "markdown":
		fmt.Fprint(out, report.Markdown(result))
	case "html":
		_, err := out.Write(report.HTML(result))
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

func storeReport(ctx context.Context, result *model.CalibrationReport) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("--store requires DATABASE_URL")
	}
	db, err := postgres.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	return postgres.NewRunLedger(db).SaveReport(ctx, result)
}
