package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/services/video"
	"github.com/nijaru/yt-notes/storage"
)

var runCmd = &cobra.Command{
	Use:   "run [youtube-url]",
	Short: "Run the translate, topics and notes stages over one video",
	Example: `  yt-notes run https://www.youtube.com/watch?v=dQw4w9WgXcQ
  yt-notes run --lang es --stage translate --stage notes https://youtu.be/dQw4w9WgXcQ
  yt-notes run --json -o report.json https://youtu.be/dQw4w9WgXcQ
  SPACES_BUCKET=notes yt-notes run --upload https://youtu.be/dQw4w9WgXcQ`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		stageNames, _ := cmd.Flags().GetStringSlice("stage")
		output, _ := cmd.Flags().GetString("output")
		asJSON, _ := cmd.Flags().GetBool("json")
		upload, _ := cmd.Flags().GetBool("upload")

		stages, err := models.ParseStages(stageNames)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if upload && !cfg.Storage.Enabled() {
			return fmt.Errorf("--upload needs SPACES_BUCKET to be set")
		}

		log, err := newLogger(cfg, true)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer app.Close()

		bar := newSpinner()
		report, err := app.video.Process(ctx, video.Request{
			URL:      args[0],
			Language: lang,
			Stages:   stages,
			Progress: func(step string) {
				bar.Describe(step)
				_ = bar.Add(1)
			},
		})
		_ = bar.Clear()
		if err != nil {
			return err
		}

		w := io.Writer(os.Stdout)
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		var markdown bytes.Buffer
		renderReport(&markdown, report)

		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else if _, err := w.Write(markdown.Bytes()); err != nil {
			return err
		}

		if upload {
			if err := uploadReport(ctx, cfg, report, markdown.Bytes()); err != nil {
				return err
			}
		}

		if report.Failed() {
			return fmt.Errorf("one or more stages failed")
		}
		return nil
	},
}

func uploadReport(ctx context.Context, cfg *config.Config, report *models.Report, markdown []byte) error {
	client, err := storage.NewSpacesClient(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	jsonKey, err := client.SaveReport(ctx, report)
	if err != nil {
		return err
	}
	mdKey, err := client.SaveRendered(ctx, report, ".md", "text/markdown; charset=utf-8", markdown)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Uploaded s3://%s/%s and s3://%s/%s\n", cfg.Storage.Bucket, jsonKey, cfg.Storage.Bucket, mdKey)
	return nil
}

func newSpinner() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Starting"),
		progressbar.OptionSetWidth(10),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
	)
}

// renderReport writes the report as Markdown with one section per stage.
func renderReport(w io.Writer, report *models.Report) {
	title := string(report.VideoID)
	if report.Video != nil && report.Video.Title != "" {
		title = report.Video.Title
	}
	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintf(w, "%s (language: %s)\n", report.VideoID.WatchURL(), report.Language)

	for _, res := range report.Results {
		fmt.Fprintf(w, "\n## %s\n\n", stageHeading(res.Stage))

		if !res.OK() {
			fmt.Fprintf(w, "Error: %s\n", res.Error)
			continue
		}

		if res.Topics != nil && len(res.Topics.Items) > 0 {
			for i, item := range res.Topics.Items {
				fmt.Fprintf(w, "%d. %s\n", i+1, item)
			}
			continue
		}

		if res.Artifact != nil {
			fmt.Fprintln(w, strings.TrimSpace(res.Artifact.Text))
		}
	}
}

func stageHeading(stage models.Stage) string {
	switch stage {
	case models.StageTranslate:
		return "Translation"
	case models.StageTopics:
		return "Main Topics"
	case models.StageNotes:
		return "Notes"
	default:
		return string(stage)
	}
}

func init() {
	runCmd.Flags().StringP("lang", "l", "", "Transcript language code (defaults to TRANSCRIPT_LANGUAGE)")
	runCmd.Flags().StringSliceP("stage", "s", nil, "Stage to run: translate, topics or notes (repeatable, default all)")
	runCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	runCmd.Flags().Bool("json", false, "Print the report as JSON")
	runCmd.Flags().Bool("upload", false, "Also upload the report to the SPACES_BUCKET export bucket")
	rootCmd.AddCommand(runCmd)
}
