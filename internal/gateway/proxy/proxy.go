package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

// hop-by-hop headers are never copied back to the caller
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Upgrade":           true,
	"Content-Length":    true,
}

// ============================================================
// Proxy
// ============================================================

// Proxy forwards gateway requests to the designer service. The path below
// the mount prefix and the query string are kept as they are.
type Proxy struct {
	target string
	prefix string
	client *http.Client
	log    zerolog.Logger
}

func New(target, prefix string, timeout time.Duration, log zerolog.Logger) *Proxy {
	return &Proxy{
		target: strings.TrimSuffix(target, "/"),
		prefix: prefix,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "proxy").Logger(),
	}
}

// Handler proxies any method. Multipart bodies pass through unchanged since
// the boundary travels in the forwarded Content-Type.
func (p *Proxy) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		return p.forward(c, p.targetURL(c))
	}
}

func (p *Proxy) targetURL(c fiber.Ctx) string {
	path := strings.TrimPrefix(c.Path(), p.prefix)
	if path == "" {
		path = "/"
	}
	url := p.target + path
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		url += "?" + qs
	}
	return url
}

func (p *Proxy) forward(c fiber.Ctx, targetURL string) error {
	req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		p.log.Error().Err(err).Str("target", targetURL).Msg("build request failed")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}

	if ct := c.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if auth := c.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if accept := c.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Str("method", c.Method()).Str("target", targetURL).Msg("upstream unreachable")
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	p.log.Debug().Str("method", c.Method()).Str("target", targetURL).Int("status", resp.StatusCode).Msg("proxied")
	return p.copyResponse(c, resp)
}

func (p *Proxy) copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Warn().Err(err).Msg("read upstream response failed")
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 && !hopHeaders[key] {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}

// Ready is a health check that passes when the upstream's own readiness
// probe answers 200.
func (p *Proxy) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target+"/health/ready", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream not ready: %s", resp.Status)
	}
	return nil
}
