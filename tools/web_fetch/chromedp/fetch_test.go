package chromedp

import (
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
)

func TestRendererFlagsFollowTransportSettings(t *testing.T) {
	r := Renderer{AcceptLanguage: "en-US,en;q=0.9", IgnoreCertErrors: true}
	assert.Equal(t, map[string]any{
		"headless":                  true,
		"ignore-certificate-errors": true,
		"lang":                      "en-US",
	}, r.flags())
	assert.Equal(t, network.Headers{"Accept-Language": "en-US,en;q=0.9"}, r.headers())
}

func TestRendererDefaults(t *testing.T) {
	r := Renderer{}
	assert.Equal(t, map[string]any{"headless": true}, r.flags())
	assert.Nil(t, r.headers())
}
