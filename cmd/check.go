package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/whiterabbit74/kinopub-wnldr/internal/ffmpeg"
)

var checkCmd = &cobra.Command{
	Use:   "check-ffmpeg",
	Short: "Verify that ffmpeg is installed and usable",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		path, err := ffmpeg.Locate(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ffmpeg not found. Install it and make sure it is on PATH.")
			fmt.Fprintln(os.Stderr, "Probed locations:")
			for _, c := range ffmpeg.DefaultCandidates {
				fmt.Fprintf(os.Stderr, "  %s\n", c)
			}
			os.Exit(1)
		}
		fmt.Printf("ffmpeg found: %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
