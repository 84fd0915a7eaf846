package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultLogoPageTimeout = 6 * time.Second
	DefaultLogoIconTimeout = 8 * time.Second
	DefaultLogoMaxBytes    = 200 * 1024

	maxPageBytes = 2 << 20
)

type LogoConfig struct {
	PageTimeout time.Duration
	IconTimeout time.Duration
	MaxBytes    int64
	UserAgent   string
}

// LogoResolver finds and downloads a site's icon
type LogoResolver struct {
	httpClient *http.Client
	config     LogoConfig
}

func NewLogoResolver(httpClient *http.Client, config LogoConfig) *LogoResolver {
	if config.PageTimeout <= 0 {
		config.PageTimeout = DefaultLogoPageTimeout
	}
	if config.IconTimeout <= 0 {
		config.IconTimeout = DefaultLogoIconTimeout
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultLogoMaxBytes
	}

	return &LogoResolver{
		httpClient: httpClient,
		config:     config,
	}
}

// Resolve returns the site icon for websiteURL, or nil when none could be
// fetched and validated.
func (r *LogoResolver) Resolve(ctx context.Context, websiteURL string) *Logo {
	iconURL, err := r.findIconURL(ctx, websiteURL)
	if err != nil {
		slog.Warn("Website HTML fetch failed", "url", websiteURL, "error", err)
	}

	if iconURL == "" {
		iconURL = faviconURL(websiteURL)
		if iconURL == "" {
			return nil
		}
	}

	logo, err := r.fetchIcon(ctx, iconURL)
	if err != nil {
		slog.Warn("Logo fetch failed", "url", iconURL, "error", err)
		return nil
	}

	return logo
}

// findIconURL returns the first <link rel="...icon..."> href of the page,
// resolved to an absolute URL. An empty result without error means the page
// declared no icon.
func (r *LogoResolver) findIconURL(ctx context.Context, pageURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.config.PageTimeout)
	defer cancel()

	resp, err := r.get(timeoutCtx, pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) || !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var href string
	doc.Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "icon") {
			return true
		}
		href, _ = s.Attr("href")
		href = strings.TrimSpace(href)
		return href == ""
	})
	if href == "" {
		return "", nil
	}

	base := resp.Request.URL
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("failed to parse icon href: %w", err)
	}

	return base.ResolveReference(ref).String(), nil
}

func (r *LogoResolver) fetchIcon(ctx context.Context, iconURL string) (*Logo, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.config.IconTimeout)
	defer cancel()

	resp, err := r.get(timeoutCtx, iconURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("unexpected content type %q", mime)
	}

	if resp.ContentLength > r.config.MaxBytes {
		return nil, fmt.Errorf("declared size %d exceeds %d bytes", resp.ContentLength, r.config.MaxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read icon: %w", err)
	}
	if int64(len(data)) > r.config.MaxBytes {
		return nil, fmt.Errorf("icon exceeds %d bytes", r.config.MaxBytes)
	}

	return &Logo{Data: data, MIME: mime}, nil
}

func (r *LogoResolver) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.config.UserAgent != "" {
		req.Header.Set("User-Agent", r.config.UserAgent)
	}

	return r.httpClient.Do(req)
}

func faviconURL(websiteURL string) string {
	u, err := url.Parse(websiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/favicon.ico"
}
