package web_fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/internal/telemetry"
	"github.com/mohammad-safakhou/oratriage/tools/web_fetch/chromedp"
)

const (
	DefaultTimeout  = 12 * time.Second
	MaxCharsDefault = 20000
)

// Downloader returns the full HTML of a page.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

type RendererType string

const (
	HTTPRenderer     RendererType = "http"
	ChromedpRenderer RendererType = "chromedp"
)

// httpDownloader is the plain GET used by both strategies.
type httpDownloader struct {
	client *httpclient.Client
}

func (d httpDownloader) Download(ctx context.Context, url string) (string, error) {
	return d.client.GetHTML(ctx, url)
}

// Extractor turns a URL into readable text: readability extraction first, then
// structural selector parsing of a plain HTTP download.
type Extractor struct {
	client   *httpclient.Client
	renderer Downloader
	plain    bool
	maxChars int
	timeout  time.Duration
	logger   *zap.Logger
}

func New(renderer RendererType, client *httpclient.Client, timeout time.Duration, maxChars int, logger *zap.Logger) (*Extractor, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{client: client, maxChars: maxChars, timeout: timeout, logger: logger.Named("fetch")}
	switch renderer {
	case HTTPRenderer, "":
		e.renderer = httpDownloader{client: client}
		e.plain = true
	case ChromedpRenderer:
		e.renderer = chromedp.Renderer{
			Timeout:          timeout,
			UserAgent:        client.UserAgent(),
			AcceptLanguage:   client.AcceptLanguage(),
			IgnoreCertErrors: client.InsecureSkipVerify(),
		}
	default:
		return nil, fmt.Errorf("unsupported renderer %q", renderer)
	}
	return e, nil
}

// Fetch returns the readable text of url, or false on network errors, non-200
// responses, or when neither strategy finds any text.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}

	page, err := e.download(ctx, e.renderer, rawURL)
	if err == nil {
		if text := e.readable(page, u); text != "" {
			telemetry.RecordFetch("readability", "ok")
			return e.truncate(text), true
		}
		telemetry.RecordFetch("readability", "empty")
	} else {
		telemetry.RecordFetch("readability", "error")
		e.logger.Debug("download failed", zap.String("url", rawURL), zap.Error(err))
		if e.plain {
			// the structural strategy would repeat the same request
			return "", false
		}
	}

	if !e.plain {
		page, err = e.download(ctx, httpDownloader{client: e.client}, rawURL)
		if err != nil {
			telemetry.RecordFetch("structural", "error")
			return "", false
		}
	}
	text, err := StructuralText(page)
	if err != nil || text == "" {
		telemetry.RecordFetch("structural", "empty")
		return "", false
	}
	telemetry.RecordFetch("structural", "ok")
	return e.truncate(text), true
}

func (e *Extractor) download(ctx context.Context, d Downloader, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return d.Download(ctx, url)
}

func (e *Extractor) readable(page string, u *url.URL) string {
	article, err := readability.FromReader(strings.NewReader(page), u)
	if err != nil {
		return ""
	}
	return tidy(article.TextContent)
}

func (e *Extractor) truncate(text string) string {
	r := []rune(text)
	if len(r) <= e.maxChars {
		return text
	}
	return strings.TrimSpace(string(r[:e.maxChars]))
}

// tidy trims every line and drops blank ones.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
