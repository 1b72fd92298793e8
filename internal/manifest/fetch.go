package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/vfaronov/httpheader"

	"github.com/whiterabbit74/kinopub-wnldr/internal/hls"
	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// Sentinel errors for source validation and retrieval.
var (
	// ErrUnsupportedScheme is returned for remote sources that are not HTTPS.
	ErrUnsupportedScheme = errors.New("only https sources are supported")

	// ErrUnsupportedFormat is returned for local files without an .m3u8 extension.
	ErrUnsupportedFormat = errors.New("only .m3u8 files are supported")

	// ErrNotFound is returned when a local source file does not exist or is unreadable.
	ErrNotFound = errors.New("source file not found or not readable")

	// ErrTooManyRedirects is returned when a redirect chain exceeds the hop limit.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// StatusError reports a non-success HTTP status from the manifest server.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch playlist: HTTP %d", e.Status)
}

const (
	maxRedirects = 10
	defaultUA    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// Manifest is the retrieved playlist plus the base location used to resolve
// the relative media URIs inside it.
type Manifest struct {
	Content string
	BaseURL string

	// LocalPath is the absolute path of the source file, empty for remote
	// sources. Carried for diagnostics and logging.
	LocalPath string
}

// Fetcher retrieves playlist content from HTTPS URLs or the local filesystem.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
}

// NewFetcher builds a fetcher with the given timeout and optional proxy URL.
// SOCKS5 proxies get a custom dialer; anything else goes through the
// standard transport proxy hook.
func NewFetcher(timeout time.Duration, proxyURL, userAgent string) *Fetcher {
	transport := &http.Transport{}

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			utils.Debug("Fetcher: invalid proxy URL %s: %v", proxyURL, err)
			transport.Proxy = http.ProxyFromEnvironment
		} else if strings.HasPrefix(parsed.Scheme, "socks5") {
			dialer, dialErr := proxy.SOCKS5("tcp", parsed.Host, nil, proxy.Direct)
			if dialErr != nil {
				utils.Debug("Fetcher: failed to create SOCKS5 dialer: %v", dialErr)
				transport.Proxy = http.ProxyFromEnvironment
			} else {
				transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
					return dialer.Dial(network, addr)
				}
			}
		} else {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	if userAgent == "" {
		userAgent = defaultUA
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Fetcher{
		Client: &http.Client{
			Transport: transport,
			// Redirects are followed manually so the chain can be bounded
			// and the final URL kept for base resolution
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent: userAgent,
		Timeout:   timeout,
	}
}

// Fetch retrieves the playlist named by source, which is either an HTTPS URL
// or a local .m3u8 path. The returned base URL is the source's directory
// prefix, used to resolve relative media URIs.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*Manifest, error) {
	if hls.IsURL(source) {
		return f.fetchRemote(ctx, source)
	}
	return f.fetchLocal(source)
}

func (f *Fetcher) fetchRemote(ctx context.Context, rawurl string) (*Manifest, error) {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}
	// Scheme is checked before any connection is attempted
	if !strings.EqualFold(parsed.Scheme, "https") {
		return nil, fmt.Errorf("%w (got %s)", ErrUnsupportedScheme, parsed.Scheme)
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	current := parsed
	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			return nil, fmt.Errorf("%w (limit %d)", ErrTooManyRedirects, maxRedirects)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", f.UserAgent)

		resp, err := f.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("playlist request failed: %w", err)
		}

		if isRedirect(resp.StatusCode) {
			location := resp.Header.Get("Location")
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if location == "" {
				return nil, fmt.Errorf("server returned redirect %d without a Location header", resp.StatusCode)
			}
			next, err := current.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("invalid redirect target %q: %w", location, err)
			}
			if !strings.EqualFold(next.Scheme, "https") {
				return nil, fmt.Errorf("%w (redirected to %s)", ErrUnsupportedScheme, next.Scheme)
			}
			utils.Debug("Following redirect %d -> %s", resp.StatusCode, next)
			current = next
			continue
		}

		if resp.StatusCode >= 400 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, &StatusError{Status: resp.StatusCode}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read playlist body: %w", err)
		}

		if mtype, _ := httpheader.ContentType(resp.Header); mtype != "" &&
			!strings.Contains(mtype, "mpegurl") && !strings.HasPrefix(mtype, "text/") {
			utils.Debug("Unexpected playlist content type %q from %s", mtype, current)
		}

		return &Manifest{
			Content: string(body),
			BaseURL: baseOf(current.String()),
		}, nil
	}
}

func (f *Fetcher) fetchLocal(source string) (*Manifest, error) {
	absPath := utils.EnsureAbsPath(source)

	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, absPath)
	}
	if !strings.EqualFold(filepath.Ext(absPath), ".m3u8") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(absPath))
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, absPath)
	}

	dir := filepath.Dir(absPath)
	baseURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(dir) + "/"}).String()

	return &Manifest{
		Content:   string(content),
		BaseURL:   baseURL,
		LocalPath: absPath,
	}, nil
}

// baseOf returns the URL up to and including its last slash, or the whole
// URL when no path slash exists.
func baseOf(rawurl string) string {
	if idx := strings.LastIndex(rawurl, "/"); idx >= 0 {
		// Don't cut inside the scheme's double slash
		if idx > strings.Index(rawurl, "://")+2 {
			return rawurl[:idx+1]
		}
	}
	return rawurl
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound,
		http.StatusSeeOther, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
