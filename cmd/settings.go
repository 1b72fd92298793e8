package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whiterabbit74/kinopub-wnldr/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the current settings and where they live",
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		fmt.Printf("Settings file: %s\n\n", config.GetSettingsPath())

		data, err := json.Marshal(settings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		var flat map[string]map[string]any
		if err := json.Unmarshal(data, &flat); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		metadata := config.GetSettingsMetadata()
		for _, category := range config.CategoryOrder() {
			fmt.Printf("%s\n", category)
			values := flat[categoryKey(category)]
			for _, meta := range metadata[category] {
				fmt.Printf("  %-24s %v\n", meta.Label, values[meta.Key])
			}
			fmt.Println()
		}
	},
}

// categoryKey maps a display category to its JSON object key.
func categoryKey(category string) string {
	switch category {
	case "General":
		return "general"
	case "Network":
		return "network"
	case "Engine":
		return "engine"
	}
	return ""
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}
