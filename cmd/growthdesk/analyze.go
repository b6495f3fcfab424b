package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/abelbrown/growthdesk/internal/gateway"
	"github.com/abelbrown/growthdesk/internal/logging"
	"github.com/abelbrown/growthdesk/internal/metrics"
	"github.com/abelbrown/growthdesk/internal/model"
	"github.com/abelbrown/growthdesk/internal/otel"
)

var (
	analyzeChurn    bool
	analyzeRetrain  bool
	analyzeModels   bool
	analyzeEmotions bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <artist-id>",
	Short: "Run audience segmentation for an artist",
	Long: `Runs the backend segmentation pipeline for one artist and prints the
segment shares, cluster statistics and insights. With --churn the churn
risk buckets are fetched as well, training the churn model first when the
backend has none (--retrain always trains). --models compares clustering
models and --emotions prints the emotion mix of the artist's comments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events := otel.NewNullLogger()
		defer events.Close()
		client := newClient(events)
		ctx := cmdContext(cmd)

		res, err := client.Analyze(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := printAnalysis(out, res); err != nil {
			return err
		}
		if analyzeChurn || analyzeRetrain {
			churn, training, err := gateway.PredictChurn(ctx, client, args[0], analyzeRetrain)
			if err != nil {
				return err
			}
			if training != nil {
				printTraining(out, training)
			}
			if err := printChurn(out, churn); err != nil {
				return err
			}
		}
		if analyzeModels {
			cmp, err := client.ClusteringComparison(ctx, args[0])
			if err != nil {
				return err
			}
			if err := printModels(out, cmp); err != nil {
				return err
			}
		}
		if analyzeEmotions {
			emo, err := client.EmotionAnalysis(ctx, args[0])
			if err != nil {
				return err
			}
			if err := printEmotions(out, emo); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeChurn, "churn", false, "also print churn risk buckets")
	analyzeCmd.Flags().BoolVar(&analyzeRetrain, "retrain", false, "retrain the churn model before predicting (implies --churn)")
	analyzeCmd.Flags().BoolVar(&analyzeModels, "models", false, "also compare clustering models")
	analyzeCmd.Flags().BoolVar(&analyzeEmotions, "emotions", false, "also print the comment emotion mix")
}

func printAnalysis(out io.Writer, res *model.AnalysisResult) error {
	fmt.Fprintf(out, "Listeners: %d  Silhouette: %.3f\n\n", res.ListenerSegments.Total(), res.SilhouetteScore)

	seg := tablewriter.NewWriter(out)
	seg.Header([]string{"Segment", "Share"})
	for _, s := range metrics.SegmentPercentages(res) {
		if err := seg.Append([]string{s.Label, formatPct(s.Fraction * 100)}); err != nil {
			return fmt.Errorf("render segments: %w", err)
		}
	}
	if err := seg.Render(); err != nil {
		return fmt.Errorf("render segments: %w", err)
	}

	rows, faults := metrics.ClusterRows(res.ClusterStatistics)
	for _, f := range faults {
		logging.Warn("cluster statistics incomplete", "artist", res.ArtistID, "cluster", f.Cluster, "stat", f.Stat)
	}
	if len(rows) > 0 {
		best, _ := metrics.BestCluster(rows)
		clusters := tablewriter.NewWriter(out)
		clusters.Header([]string{"Cluster", "Engagement", "Loyalty", "Streams", "Listeners"})
		for _, r := range rows {
			name := r.Cluster
			if r.Cluster == best.Cluster {
				name += " *"
			}
			row := []string{
				name,
				strconv.FormatFloat(r.Engagement, 'f', 2, 64),
				strconv.FormatFloat(r.Loyalty, 'f', 2, 64),
				strconv.FormatFloat(r.TotalStreams, 'f', 0, 64),
				strconv.FormatFloat(r.Count, 'f', 0, 64),
			}
			if err := clusters.Append(row); err != nil {
				return fmt.Errorf("render clusters: %w", err)
			}
		}
		fmt.Fprintln(out)
		if err := clusters.Render(); err != nil {
			return fmt.Errorf("render clusters: %w", err)
		}
	}
	for _, f := range faults {
		fmt.Fprintf(out, "warning: %s\n", f)
	}

	s := res.Sentiment
	fmt.Fprintf(out, "\nSentiment: +%d  ~%d  -%d\n", s.Positive, s.Neutral, s.Negative)

	if len(res.KeyInsights) > 0 {
		fmt.Fprintln(out, "\nInsights:")
		for _, in := range res.KeyInsights {
			fmt.Fprintf(out, "  - %s\n", in)
		}
	}
	if len(res.Recommendations) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		for _, r := range res.Recommendations {
			fmt.Fprintf(out, "  [%s] %s\n", r.Priority, r.Text)
		}
	}
	return nil
}

func printChurn(out io.Writer, churn *model.ChurnPrediction) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Risk", "Listeners", "Share"})
	for _, b := range metrics.RiskBuckets(churn.Predictions.RiskSegments) {
		if err := table.Append([]string{b.Name, strconv.Itoa(b.Count), formatPct(b.Percentage)}); err != nil {
			return fmt.Errorf("render churn: %w", err)
		}
	}
	fmt.Fprintln(out)
	if err := table.Render(); err != nil {
		return fmt.Errorf("render churn: %w", err)
	}
	for _, r := range churn.Predictions.Recommendations {
		fmt.Fprintf(out, "  [%s] %s: %s\n", r.Priority, r.Target, r.Action)
	}
	return nil
}

func printTraining(out io.Writer, tr *model.ChurnTraining) {
	m := tr.TrainingResults.Metrics
	fmt.Fprintf(out, "\nChurn model trained: test accuracy %s, ROC AUC %.2f\n", formatPct(m.TestAccuracy*100), m.ROCAUC)
}

func printModels(out io.Writer, cmp *model.ClusteringComparison) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Model", "Silhouette", "Davies-Bouldin", "Note"})
	for _, r := range metrics.ModelRows(cmp) {
		name := r.Name
		if r.Best {
			name += " *"
		}
		row := []string{name, formatScore(r.Silhouette, r.HasSilhouette), formatScore(r.DaviesBouldin, r.HasDaviesBouldin), r.Note}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render models: %w", err)
		}
	}
	fmt.Fprintln(out)
	if err := table.Render(); err != nil {
		return fmt.Errorf("render models: %w", err)
	}
	if rec := cmp.BestModel.Recommendation; rec != "" {
		fmt.Fprintf(out, "  %s\n", rec)
	}
	return nil
}

func printEmotions(out io.Writer, emo *model.EmotionAnalysis) error {
	rep := emo.Analysis
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Emotion", "Comments", "Share", "Intensity"})
	for _, e := range metrics.EmotionShares(rep) {
		row := []string{e.Emotion, strconv.Itoa(e.Count), formatPct(e.Percentage), strconv.FormatFloat(e.Intensity, 'f', 2, 64)}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render emotions: %w", err)
		}
	}
	fmt.Fprintf(out, "\n%d comments analyzed\n", rep.TotalComments)
	if err := table.Render(); err != nil {
		return fmt.Errorf("render emotions: %w", err)
	}
	for _, in := range rep.Insights {
		fmt.Fprintf(out, "  - %s (%s)\n", in.Message, in.Action)
	}
	return nil
}

func formatScore(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
