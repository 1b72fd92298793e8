package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
)

var revealCmd = &cobra.Command{
	Use:   "reveal <path>",
	Short: "Open a downloaded file's folder in the system file manager",
	Long: `reveal opens the folder containing the given file. Only paths inside
authorized download directories can be revealed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		rc := loadSettings().ToRuntimeConfig()
		guard := buildGuard(rc)
		if err := guard.Check(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := openFolder(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// openFolder hands the path to the platform file manager.
func openFolder(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", "-R", path).Start()
	case "windows":
		return exec.Command("explorer", "/select,", path).Start()
	default:
		return exec.Command("xdg-open", filepath.Dir(path)).Start()
	}
}

func init() {
	rootCmd.AddCommand(revealCmd)
}
