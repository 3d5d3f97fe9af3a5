package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/validation"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript [youtube-url]",
	Short: "Print the plain-text transcript of a video",
	Example: `  yt-notes transcript https://www.youtube.com/watch?v=dQw4w9WgXcQ
  yt-notes transcript --lang es -o transcript.txt https://youtu.be/dQw4w9WgXcQ`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		output, _ := cmd.Flags().GetString("output")

		id, err := validation.ExtractVideoID(args[0])
		if err != nil {
			return err
		}

		// No model call here, so the credential is not required.
		cfg := config.FromEnv()
		log, err := newLogger(cfg, true)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app, _, err := newTranscriptApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer app.Close()

		tr, err := app.transcripts.Get(ctx, id, validation.NormalizeLanguage(lang, cfg.Transcript.DefaultLanguage))
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

		_, err = fmt.Fprintln(w, tr.Text)
		return err
	},
}

var videoIDCmd = &cobra.Command{
	Use:   "video-id [youtube-url]",
	Short: "Print the 11-character video identifier found in a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := validation.ExtractVideoID(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	transcriptCmd.Flags().StringP("lang", "l", "", "Transcript language code (defaults to TRANSCRIPT_LANGUAGE)")
	transcriptCmd.Flags().StringP("output", "o", "", "Write the transcript to a file instead of stdout")
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(videoIDCmd)
}
