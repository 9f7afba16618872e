package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/calmora/calmora-cli/internal/calmora"
	"github.com/calmora/calmora-cli/pkg/output"
)

var trackerCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Daily mood and stress tracker",
}

var trackerPredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Submit today's metrics and get a prediction",
	Long: `Submit today's metrics and get a mood and stress prediction.

Only one prediction per day is accepted. Flags not given use the form
defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := calmora.TrackerInput{}
		fs := cmd.Flags()
		in.SleepHours, _ = fs.GetFloat64("sleep-hours")
		in.SleepQuality, _ = fs.GetString("sleep-quality")
		in.ScreenTime, _ = fs.GetFloat64("screen-time")
		in.PhysicalActivity, _ = fs.GetInt("physical-activity")
		in.SocialInteraction, _ = fs.GetFloat64("social-interaction")
		in.WorkProductivity, _ = fs.GetInt("work-productivity")
		in.Weather, _ = fs.GetString("weather")
		in.DietQuality, _ = fs.GetString("diet-quality")

		p, err := service().Predict(cmd.Context(), in)
		if err != nil {
			return err
		}

		if p.Rejected() {
			output.Warn("%s", p.Detail)
			return nil
		}
		if outputFmt != output.FormatTable {
			return output.Render(outputFmt, p, nil)
		}

		output.Success("Prediction saved")
		output.KeyValue([][2]string{
			{"Mood score", formatScore(p.MoodScore)},
			{"Stress level", formatScore(p.StressLevel)},
			{"Date", orDash(p.Date)},
		})
		if p.AIRecommendation != "" {
			output.Plain("")
			output.Info("Recommendation")
			output.Plain("%s", p.AIRecommendation)
		}
		return nil
	},
}

var trackerHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your most recent predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := service().History(cmd.Context())
		if err != nil {
			return err
		}

		if outputFmt == output.FormatTable && len(entries) == 0 {
			output.Info("No tracker entries yet. Run 'calmora tracker predict' to add one.")
			return nil
		}

		return output.Render(outputFmt, entries, func() *output.Table {
			table := output.NewTable([]string{"DATE", "MOOD", "STRESS", "SLEEP", "SCREEN", "ACTIVITY", "WEATHER"})
			for _, e := range entries {
				table.AddRow([]string{
					e.Date,
					strconv.FormatFloat(e.MoodScore, 'f', 1, 64),
					strconv.FormatFloat(e.StressLevel, 'f', 1, 64),
					strconv.FormatFloat(e.SleepHours, 'g', -1, 64),
					strconv.FormatFloat(e.ScreenTime, 'g', -1, 64),
					strconv.Itoa(e.PhysicalActivity),
					e.Weather,
				})
			}
			return table
		})
	},
}

var trackerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tracker entries as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" || path == "-" {
			_, err := service().Export(cmd.Context(), cmd.OutOrStdout())
			return err
		}

		n, err := exportToFile(cmd, path)
		if err != nil {
			return err
		}
		output.Success("Exported %d bytes to %s", n, path)
		return nil
	},
}

// exportToFile streams into a temp file beside path and renames it into
// place only once the export completed, so a failed export leaves an
// existing file untouched.
func exportToFile(cmd *cobra.Command, path string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmpName := tmp.Name()

	n, err := service().Export(cmd.Context(), tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write %s: %w", path, closeErr)
	}
	if err == nil {
		if err = os.Rename(tmpName, path); err != nil {
			err = fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err != nil {
		os.Remove(tmpName)
		return n, err
	}
	return n, nil
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func init() {
	rootCmd.AddCommand(trackerCmd)
	trackerCmd.AddCommand(trackerPredictCmd)
	trackerCmd.AddCommand(trackerHistoryCmd)
	trackerCmd.AddCommand(trackerExportCmd)

	def := calmora.DefaultTrackerInput()
	f := trackerPredictCmd.Flags()
	f.Float64("sleep-hours", def.SleepHours, "Hours slept (3-12)")
	f.String("sleep-quality", def.SleepQuality, "Sleep quality: Poor, Fair, Good, Excellent")
	f.Float64("screen-time", def.ScreenTime, "Screen time in hours (1-12)")
	f.Int("physical-activity", def.PhysicalActivity, "Physical activity in minutes (0-120)")
	f.Float64("social-interaction", def.SocialInteraction, "Social interaction in hours (0-10)")
	f.Int("work-productivity", def.WorkProductivity, "Work productivity score (1-10)")
	f.String("weather", def.Weather, "Weather: Cloudy, Rainy, Sunny")
	f.String("diet-quality", def.DietQuality, "Diet quality: Average, Good, Poor")

	trackerExportCmd.Flags().StringP("file", "f", "", "Write CSV to this file instead of stdout")
}
