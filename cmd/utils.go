package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/whiterabbit74/kinopub-wnldr/internal/hls"
	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// errNoSource is returned when neither an argument nor the clipboard yields
// a playlist source.
var errNoSource = errors.New("no playlist source given (pass a URL or .m3u8 path)")

// resolveSource returns the playlist source: the first argument when present,
// otherwise a URL from the clipboard if that fallback is enabled.
func resolveSource(args []string, clipboardFallback bool) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if !clipboardFallback {
		return "", errNoSource
	}

	text, err := clipboard.ReadAll()
	if err != nil {
		return "", errNoSource
	}
	text = strings.TrimSpace(text)
	if text == "" || !hls.IsURL(text) {
		return "", errNoSource
	}
	utils.Debug("Using clipboard source %s", text)
	fmt.Printf("Using URL from clipboard: %s\n", text)
	return text, nil
}

// formatBandwidth renders bits per second the way players label streams.
func formatBandwidth(bps int64) string {
	switch {
	case bps >= 1_000_000:
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1_000_000)
	case bps >= 1_000:
		return fmt.Sprintf("%d kbps", bps/1_000)
	case bps > 0:
		return fmt.Sprintf("%d bps", bps)
	}
	return "unknown"
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
