// Package chromedp renders pages in headless Chrome for sites that build their
// content client-side.
package chromedp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type Renderer struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
	// IgnoreCertErrors mirrors tls.insecure_skip_verify. Chrome keeps its own trust
	// store, so a custom CA bundle only reaches the plain HTTP strategies.
	IgnoreCertErrors bool
}

// flags are the Chrome command-line switches for this renderer.
func (r Renderer) flags() map[string]any {
	f := map[string]any{"headless": true}
	if r.IgnoreCertErrors {
		f["ignore-certificate-errors"] = true
	}
	if lang := primaryLanguage(r.AcceptLanguage); lang != "" {
		f["lang"] = lang
	}
	return f
}

func (r Renderer) headers() network.Headers {
	if r.AcceptLanguage == "" {
		return nil
	}
	return network.Headers{"Accept-Language": r.AcceptLanguage}
}

// primaryLanguage returns the first tag of an Accept-Language value.
func primaryLanguage(v string) string {
	first, _, _ := strings.Cut(v, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.TrimSpace(first)
}

// Download navigates to url and returns the rendered document HTML.
func (r Renderer) Download(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("invalid url")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range r.flags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if r.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.UserAgent))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	var actions chromedp.Tasks
	if h := r.headers(); h != nil {
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(h))
	}
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(bctx, actions); err != nil {
		return "", err
	}
	return html, nil
}
