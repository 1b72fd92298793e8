package hls

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// IsURL reports whether s is a well-formed absolute URL with both a scheme
// and an authority component.
func IsURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// MakeAbsolute resolves a media URI found in a playlist against the
// manifest's base location.
//
// Already-absolute URIs pass through unchanged, as does any URI when the
// base is empty. A file:// base is joined with filesystem semantics so local
// playlists resolve to local paths; anything else follows standard URL
// relative resolution.
func MakeAbsolute(uri, baseURL string) string {
	if uri == "" {
		return ""
	}
	if IsURL(uri) {
		return uri
	}
	if baseURL == "" {
		return uri
	}

	if strings.HasPrefix(baseURL, "file://") {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return uri
		}
		basePath := parsed.Path
		if runtime.GOOS == "windows" {
			// file:///C:/dir decodes to /C:/dir
			basePath = strings.TrimPrefix(basePath, "/")
		}
		return filepath.Join(basePath, filepath.FromSlash(uri))
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}
