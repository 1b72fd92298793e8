package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whiterabbit74/kinopub-wnldr/internal/config"
	"github.com/whiterabbit74/kinopub-wnldr/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent downloads",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := history.Open(config.GetHistoryPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Println("No downloads recorded yet.")
			return
		}

		for _, e := range entries {
			when := e.CreatedAt.Local().Format("2006-01-02 15:04")
			if e.Status == "completed" {
				fmt.Printf("%s  ok    %s  %s\n", when, formatSize(e.SizeBytes), e.OutputPath)
			} else {
				fmt.Printf("%s  fail  %s: %s\n", when, e.Source, e.Error)
			}
		}
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := history.Open(config.GetHistoryPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := store.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("History cleared.")
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 20, "Maximum entries to show")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
