package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/micro-nova/an30259a/internal/models"
)

// client talks to the daemon's REST surface.
type client struct {
	base   string
	apiKey string
	http   *http.Client
}

func newClient(base, apiKey string) *client {
	return &client{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// do sends body (a string is sent verbatim, anything else as JSON) and
// decodes a successful response into out when out is non-nil.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
		contentType = "text/plain"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var appErr models.AppError
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &appErr) == nil && appErr.Message != "" {
			return &appErr
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) state(ctx context.Context) (models.State, error) {
	var st models.State
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &st)
	return st, err
}

func (c *client) knobs(ctx context.Context) ([]models.KnobValue, error) {
	var kvs []models.KnobValue
	err := c.do(ctx, http.MethodGet, "/api/knobs", nil, &kvs)
	return kvs, err
}

func (c *client) knob(ctx context.Context, name string) (models.KnobValue, error) {
	var kv models.KnobValue
	err := c.do(ctx, http.MethodGet, "/api/knobs/"+knobPath(name), nil, &kv)
	return kv, err
}

func (c *client) setKnob(ctx context.Context, name, value string) (models.KnobValue, error) {
	var kv models.KnobValue
	err := c.do(ctx, http.MethodPut, "/api/knobs/"+knobPath(name), value, &kv)
	return kv, err
}

func (c *client) pattern(ctx context.Context, p string) (models.State, error) {
	var st models.State
	err := c.do(ctx, http.MethodPost, "/api/pattern", models.PatternRequest{Pattern: p}, &st)
	return st, err
}

func (c *client) patterns(ctx context.Context) ([]string, error) {
	var names []string
	err := c.do(ctx, http.MethodGet, "/api/patterns", nil, &names)
	return names, err
}

func (c *client) blink(ctx context.Context, req models.BlinkRequest) (models.State, error) {
	var st models.State
	err := c.do(ctx, http.MethodPost, "/api/blink", req, &st)
	return st, err
}

// setChannel returns the channel as the daemon saw it. A brightness change
// may not be committed yet when this returns.
func (c *client) setChannel(ctx context.Context, ch string, upd models.ChannelUpdate) (models.Channel, error) {
	var out models.Channel
	err := c.do(ctx, http.MethodPatch, "/api/channels/"+url.PathEscape(ch), upd, &out)
	return out, err
}

func (c *client) setRaw(ctx context.Context, ch string, code int) (models.Channel, error) {
	var out models.Channel
	body := map[string]int{"code": code}
	err := c.do(ctx, http.MethodPut, "/api/channels/"+url.PathEscape(ch)+"/raw", body, &out)
	return out, err
}

func (c *client) setTunables(ctx context.Context, upd models.TunablesUpdate) (models.Tunables, error) {
	var out models.Tunables
	err := c.do(ctx, http.MethodPatch, "/api/tunables", upd, &out)
	return out, err
}

// subscribe streams raw SSE lines to fn until ctx ends or the server closes
// the stream. kinds is a comma-separated filter, empty for everything.
func (c *client) subscribe(ctx context.Context, kinds string, fn func(line string)) error {
	path := "/api/subscribe"
	if kinds != "" {
		path += "?kinds=" + url.QueryEscape(kinds)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
	// No client timeout on a stream.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subscribe: %s", resp.Status)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		fn(sc.Text())
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// knobPath escapes each segment of a knob name but keeps the slash.
func knobPath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
