package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks [source]",
	Short: "List the video and audio tracks of a playlist",
	Long: `tracks fetches an HLS master playlist and prints its video variants and
alternate audio renditions with the indexes used by 'get'. With no argument
the clipboard is consulted for a URL.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		source, err := resolveSource(args, settings.General.ClipboardFallback)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		orch, store, _ := buildOrchestrator()
		if store != nil {
			defer store.Close()
		}

		catalog, err := orch.ListTracks(context.Background(), source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(catalog); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		fmt.Println("Video:")
		for _, v := range catalog.Video {
			line := fmt.Sprintf("  [%d] %s", v.ID, formatBandwidth(v.Bandwidth))
			if v.Resolution != "" {
				line += "  " + v.Resolution
			}
			if v.Codecs != "" {
				line += "  " + v.Codecs
			}
			fmt.Println(line)
		}
		if len(catalog.Video) == 0 {
			fmt.Println("  (none)")
		}

		fmt.Println("Audio:")
		for _, a := range catalog.Audio {
			line := fmt.Sprintf("  [%d] %s", a.ID, a.Name)
			if a.Language != "" {
				line += fmt.Sprintf("  (%s)", a.Language)
			}
			if a.Default {
				line += "  default"
			}
			fmt.Println(line)
		}
		if len(catalog.Audio) == 0 {
			fmt.Println("  (none)")
		}

		if len(catalog.Subtitles) > 0 {
			fmt.Println("Subtitles:")
			for _, s := range catalog.Subtitles {
				fmt.Printf("  [%d] %s (%s)\n", s.ID, s.Name, s.Language)
			}
		}
	},
}

func init() {
	tracksCmd.Flags().Bool("json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(tracksCmd)
}
