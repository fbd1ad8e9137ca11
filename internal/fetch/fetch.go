// Package fetch issues GET requests against the music server, addressing resources by
// path segments: http://{host}:{port}/{seg1}/{seg2}/...
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/imroc/req/v3"
	"github.com/unclealex/devicesync/internal/version"
)

const (
	DefaultTimeout = 10 * time.Minute
	retryInterval  = time.Second
	// non-200 bodies are drained up to this many bytes so the connection can be reused
	drainLimit = 64 << 10
)

var UserAgent = fmt.Sprintf("DeviceSync/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// Server supplies the address of the music server. It is read on every request so that
// changes made through the configuration surface apply immediately.
type Server interface {
	Host() (string, error)
	Port() (int, error)
}

type Options struct {
	// Timeout bounds a whole request, body included. Zero uses DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of extra attempts after a transport error.
	// A response with a non-200 status is never retried.
	Retries int
}

type Fetcher struct {
	server Server
	client *req.Client
}

func New(server Server, opts *Options) *Fetcher {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := req.C().
		SetTimeout(timeout).
		SetUserAgent(UserAgent).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)
	if opts.Retries > 0 {
		client.SetCommonRetryCount(opts.Retries).
			SetCommonRetryFixedInterval(retryInterval)
	}

	return &Fetcher{server: server, client: client}
}

// LocatorOf returns the URL of a resource without requesting it.
// Each segment is percent-encoded on its own.
func (f *Fetcher) LocatorOf(segments ...string) (*url.URL, error) {
	host, err := f.server.Host()
	if err != nil {
		return nil, err
	}
	port, err := f.server.Port()
	if err != nil {
		return nil, err
	}

	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}

	return &url.URL{
		Scheme:  "http",
		Host:    net.JoinHostPort(host, strconv.Itoa(port)),
		Path:    "/" + strings.Join(segments, "/"),
		RawPath: "/" + strings.Join(escaped, "/"),
	}, nil
}

// LoadData streams the body of a 200 response into sink. Any other status is a *StatusError.
// The sink is left open; the response body is always closed.
func (f *Fetcher) LoadData(ctx context.Context, sink io.Writer, segments ...string) error {
	locator, err := f.LocatorOf(segments...)
	if err != nil {
		return err
	}
	target := locator.String()

	resp, err := f.client.R().
		SetContext(ctx).
		DisableAutoReadResponse().
		Get(target)
	if err != nil {
		closeBody(resp)
		return fmt.Errorf("%w: GET %s: %w", ErrIO, target, err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		slog.Debug("fetch", "url", target, "status", resp.StatusCode)
		return &StatusError{URL: target, Code: resp.StatusCode}
	}

	n, err := io.Copy(sink, resp.Body)
	if err != nil {
		return fmt.Errorf("%w: GET %s: read body: %w", ErrIO, target, err)
	}
	slog.Debug("fetch", "url", target, "status", resp.StatusCode, "bytes", n)
	return nil
}

// LoadJSON decodes a JSON object response into v.
func (f *Fetcher) LoadJSON(ctx context.Context, v any, segments ...string) error {
	var buf bytes.Buffer
	if err := f.LoadData(ctx, &buf, segments...); err != nil {
		return err
	}

	data := buf.Bytes()
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: /%s: body is not UTF-8", ErrFormat, strings.Join(segments, "/"))
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: /%s: body is not a JSON object", ErrFormat, strings.Join(segments, "/"))
	}
	if err := jsonUnmarshal(data, v); err != nil {
		return fmt.Errorf("%w: /%s: %w", ErrFormat, strings.Join(segments, "/"), err)
	}
	return nil
}

func closeBody(resp *req.Response) {
	if resp != nil && resp.Response != nil && resp.Body != nil {
		resp.Body.Close()
	}
}
