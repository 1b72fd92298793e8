package hls

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestIsURL(t *testing.T) {
	valid := []string{
		"https://example.com/playlist.m3u8",
		"http://example.com/",
		"ftp://host/file",
	}
	for _, s := range valid {
		if !IsURL(s) {
			t.Errorf("IsURL(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"video.m3u8",
		"/tmp/video.m3u8",
		"relative/path/video.m3u8",
		"example.com/no-scheme",
		"file.m3u8?query=1",
	}
	for _, s := range invalid {
		if IsURL(s) {
			t.Errorf("IsURL(%q) = true, want false", s)
		}
	}
}

func TestMakeAbsolute(t *testing.T) {
	t.Run("AbsoluteURIPassesThrough", func(t *testing.T) {
		got := MakeAbsolute("https://cdn.example.com/video.m3u8", "https://example.com/hls/")
		if got != "https://cdn.example.com/video.m3u8" {
			t.Errorf("got %q, absolute URI must pass through regardless of base", got)
		}
	})

	t.Run("EmptyBaseReturnsURIUnchanged", func(t *testing.T) {
		if got := MakeAbsolute("video.m3u8", ""); got != "video.m3u8" {
			t.Errorf("got %q, want video.m3u8", got)
		}
	})

	t.Run("EmptyURI", func(t *testing.T) {
		if got := MakeAbsolute("", "https://example.com/hls/"); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("URLBase", func(t *testing.T) {
		got := MakeAbsolute("video.m3u8", "https://example.com/hls/master.m3u8")
		if got != "https://example.com/hls/video.m3u8" {
			t.Errorf("got %q, want https://example.com/hls/video.m3u8", got)
		}
	})

	t.Run("URLBaseWithParentReference", func(t *testing.T) {
		got := MakeAbsolute("../audio/en.m3u8", "https://example.com/hls/video/")
		if got != "https://example.com/hls/audio/en.m3u8" {
			t.Errorf("got %q, want https://example.com/hls/audio/en.m3u8", got)
		}
	})

	t.Run("FileBaseUsesFilesystemJoin", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("POSIX path layout")
		}
		got := MakeAbsolute("video.m3u8", "file:///data/streams/")
		want := filepath.Join("/data/streams", "video.m3u8")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("FileBaseDecodesEscapedPath", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("POSIX path layout")
		}
		got := MakeAbsolute("video.m3u8", "file:///data/my%20streams/")
		want := filepath.Join("/data/my streams", "video.m3u8")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		a := MakeAbsolute("v.m3u8", "https://example.com/a/b/")
		b := MakeAbsolute("v.m3u8", "https://example.com/a/b/")
		if a != b {
			t.Errorf("resolution must be deterministic: %q != %q", a, b)
		}
	})
}
