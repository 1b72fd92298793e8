package cmd

import (
	"errors"
	"testing"
)

func TestResolveSource(t *testing.T) {
	t.Run("ArgumentWins", func(t *testing.T) {
		src, err := resolveSource([]string{"https://example.com/master.m3u8"}, true)
		if err != nil {
			t.Fatal(err)
		}
		if src != "https://example.com/master.m3u8" {
			t.Errorf("source = %q", src)
		}
	})

	t.Run("NoArgNoFallback", func(t *testing.T) {
		if _, err := resolveSource(nil, false); !errors.Is(err, errNoSource) {
			t.Errorf("err = %v, want errNoSource", err)
		}
	})
}

func TestFormatBandwidth(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "unknown"},
		{800, "800 bps"},
		{64_000, "64 kbps"},
		{1_280_000, "1.3 Mbps"},
		{12_800_000, "12.8 Mbps"},
	}
	for _, c := range cases {
		if got := formatBandwidth(c.in); got != c.want {
			t.Errorf("formatBandwidth(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, c := range cases {
		if got := formatSize(c.in); got != c.want {
			t.Errorf("formatSize(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
