package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downloadsPathCmd = &cobra.Command{
	Use:   "downloads-path",
	Short: "Print the configured download directory and authorized roots",
	Run: func(cmd *cobra.Command, args []string) {
		rc := loadSettings().ToRuntimeConfig()
		fmt.Println(rc.DefaultDownloadDir)

		guard := buildGuard(rc)
		roots := guard.Roots()
		if len(roots) > 1 {
			fmt.Println("Also authorized:")
			for _, root := range roots {
				if root != rc.DefaultDownloadDir {
					fmt.Printf("  %s\n", root)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(downloadsPathCmd)
}
