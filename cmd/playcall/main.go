package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"playcaller/game"
	"playcaller/logger"
	"playcaller/ml"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.S().Fatalf("playcall: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("playcall", flag.ContinueOnError)
	fs.SetOutput(out)
	modelDir := fs.String("model_dir", "./models/playcalling", "model artifact directory")
	format := fs.String("format", ml.FormatText, "artifact format: text or binary")
	scenario := fs.String("scenario", "", "built-in scenario name, or all")
	exportDir := fs.String("export_dir", "", "write the loaded model to this directory and exit")
	exportFormat := fs.String("export_format", ml.FormatBinary, "format for -export_dir")

	c := game.DefaultContext()
	fs.IntVar(&c.Quarter, "quarter", c.Quarter, "quarter (1-4)")
	fs.IntVar(&c.HalfSeconds, "half_seconds", c.HalfSeconds, "seconds left in the half")
	fs.IntVar(&c.Down, "down", c.Down, "down (0 for kickoffs and tries)")
	fs.IntVar(&c.Distance, "distance", c.Distance, "yards to go")
	fs.IntVar(&c.YardLine, "yard_line", c.YardLine, "yards from the offense's own goal line, above 50 is the opponent's half")
	fs.IntVar(&c.ScoreDiff, "score_diff", c.ScoreDiff, "offense score minus defense score")
	fs.IntVar(&c.OffTimeouts, "off_timeouts", c.OffTimeouts, "offense timeouts left")
	fs.IntVar(&c.DefTimeouts, "def_timeouts", c.DefTimeouts, "defense timeouts left")
	if err := fs.Parse(args); err != nil {
		return err
	}

	model, err := ml.LoadModel(*format, *modelDir)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	if *exportDir != "" {
		if err := ml.SaveModel(model, *exportFormat, *exportDir); err != nil {
			return fmt.Errorf("export model: %w", err)
		}
		fmt.Fprintf(out, "model exported to %s (%s)\n", *exportDir, *exportFormat)
		return nil
	}

	var runs []game.Scenario
	switch *scenario {
	case "":
		if err := c.Validate(); err != nil {
			return err
		}
		runs = []game.Scenario{{Name: "custom", Context: c}}
	case "all":
		runs = game.Scenarios()
	default:
		s, err := game.LookupScenario(*scenario)
		if err != nil {
			return err
		}
		runs = []game.Scenario{s}
	}

	for i, s := range runs {
		pred, err := ml.Predict(model, s.Context.Features())
		if err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		printPrediction(out, model.Labels(), s, pred)
	}
	return nil
}

func printPrediction(out io.Writer, labels []string, s game.Scenario, pred *ml.Prediction) {
	fmt.Fprintf(out, "Scenario: %s\n", strings.ReplaceAll(s.Name, "_", " "))
	fmt.Fprintf(out, "  %s\n", s.Context)
	fmt.Fprintf(out, "  Play call: %s (%.1f%%)\n", displayLabel(pred.Label), pred.Confidence*100)

	order := make([]int, len(pred.Distribution))
	for i := range order {
		order[i] = i
	}
	// stable keeps the model's class order among equal probabilities
	sort.SliceStable(order, func(a, b int) bool {
		return pred.Distribution[order[a]] > pred.Distribution[order[b]]
	})
	for _, k := range order {
		fmt.Fprintf(out, "    %-12s %6.2f%%\n", displayLabel(labels[k]), pred.Distribution[k]*100)
	}
}

// displayLabel prints known play calls in their canonical spelling and
// leaves any other label untouched.
func displayLabel(label string) string {
	if p, err := game.ParsePlayCall(label); err == nil {
		return p.String()
	}
	return label
}
