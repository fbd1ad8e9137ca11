package fetch

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclealex/devicesync/internal/prefs"
)

type fakeServer struct {
	host string
	port int
	err  error
}

func (s *fakeServer) Host() (string, error) { return s.host, s.err }
func (s *fakeServer) Port() (int, error)    { return s.port, nil }

func serverFor(t *testing.T, ts *httptest.Server) *fakeServer {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return &fakeServer{host: host, port: port}
}

// closeTracker records whether Close was called on a sink.
type closeTracker struct {
	bytes.Buffer
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestLocatorOf_EncodesSegmentsIndividually(t *testing.T) {
	f := New(&fakeServer{host: "h", port: 80}, nil)

	u, err := f.LocatorOf("music", "u", "AC/DC? Live", "100% #1.mp3")
	require.NoError(t, err)
	assert.Equal(t, "http://h:80/music/u/AC%2FDC%3F%20Live/100%25%20%231.mp3", u.String())
}

func TestLocatorOf_NotInitialised(t *testing.T) {
	f := New(&fakeServer{err: prefs.ErrNotInitialised}, nil)

	_, err := f.LocatorOf("changes")
	assert.ErrorIs(t, err, prefs.ErrNotInitialised)

	err = f.LoadData(context.Background(), &bytes.Buffer{}, "changes")
	assert.ErrorIs(t, err, prefs.ErrNotInitialised)
}

func TestLoadData_StreamsBodyOn200(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("DATA1"))
	}))
	defer ts.Close()

	f := New(serverFor(t, ts), nil)
	sink := &closeTracker{}
	require.NoError(t, f.LoadData(context.Background(), sink, "music", "u", "A", "B", "t.mp3"))

	assert.Equal(t, "/music/u/A/B/t.mp3", gotPath)
	assert.Equal(t, "DATA1", sink.String())
	assert.False(t, sink.closed, "the fetcher must not close the sink")
}

func TestLoadData_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	f := New(serverFor(t, ts), nil)
	var sink bytes.Buffer
	err := f.LoadData(context.Background(), &sink, "music", "u", "t.mp3")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrIO)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "status 500", err.Error())
	assert.Zero(t, sink.Len(), "error bodies must not reach the sink")
}

func TestLoadData_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server := serverFor(t, ts)
	ts.Close()

	err := New(server, nil).LoadData(context.Background(), &bytes.Buffer{}, "changes")
	assert.ErrorIs(t, err, ErrIO)
}

func TestLoadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"count": 4}`))
		case "/array":
			w.Write([]byte(`[1, 2]`))
		case "/broken":
			w.Write([]byte(`{"count": `))
		case "/latin1":
			w.Write([]byte{'{', '"', 0xe9, '"', ':', '1', '}'})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	f := New(serverFor(t, ts), nil)
	ctx := context.Background()

	var v struct {
		Count int `json:"count"`
	}
	require.NoError(t, f.LoadJSON(ctx, &v, "ok"))
	assert.Equal(t, 4, v.Count)

	assert.ErrorIs(t, f.LoadJSON(ctx, &v, "array"), ErrFormat)
	assert.ErrorIs(t, f.LoadJSON(ctx, &v, "broken"), ErrFormat)
	assert.ErrorIs(t, f.LoadJSON(ctx, &v, "latin1"), ErrFormat)

	err := f.LoadJSON(ctx, &v, "missing")
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrFormat)
}

func TestLoadData_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(serverFor(t, ts), nil).LoadData(ctx, &bytes.Buffer{}, "x")
	assert.ErrorIs(t, err, ErrIO)
}
