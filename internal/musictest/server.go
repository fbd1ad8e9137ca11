// Package musictest runs an in-process music server speaking the change catalogue
// protocol, for tests.
package musictest

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// Change is a wire change entry.
type Change struct {
	Action       string `json:"action"`
	RelativePath string `json:"relativePath"`
}

func Added(path string) Change   { return Change{Action: "added", RelativePath: path} }
func Removed(path string) Change { return Change{Action: "removed", RelativePath: path} }

// Entry is a wire changelog entry.
type Entry struct {
	ParentRelativePath string `json:"parentRelativePath"`
	At                 string `json:"at"`
	RelativePath       string `json:"relativePath"`
}

type Tags struct {
	AlbumArtist string `json:"albumArtist"`
	Album       string `json:"album"`
}

type Server struct {
	*httptest.Server
	host string
	port int

	mu        sync.Mutex
	changes   map[string][]Change
	tracks    map[string][]byte
	failures  map[string]int
	tags      map[string]Tags
	changelog map[string][]Entry
	requests  []string
	since     []string
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		changes:   make(map[string][]Change),
		tracks:    make(map[string][]byte),
		failures:  make(map[string]int),
		tags:      make(map[string]Tags),
		changelog: make(map[string][]Entry),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /changes/count/{user}/{since}", s.handleCount)
	mux.HandleFunc("GET /changes/{user}/{since}", s.handleChanges)
	mux.HandleFunc("GET /music/{user}/{path...}", s.handleMusic)
	mux.HandleFunc("GET /tags/{user}/{path...}", s.handleTags)
	mux.HandleFunc("GET /artwork/{user}/{path...}", s.handleArtwork)
	mux.HandleFunc("GET /changelog/{user}/{page}/{size}", s.handleChangelog)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)

	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatalf("musictest: parse url: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("musictest: split host: %v", err)
	}
	s.host = host
	s.port, _ = strconv.Atoi(port)
	return s
}

// Host and Port make the server usable wherever a fetch.Server is expected.
func (s *Server) Host() (string, error) { return s.host, nil }
func (s *Server) Port() (int, error)    { return s.port, nil }

// SetChanges sets what /changes returns for user, whatever the watermark.
func (s *Server) SetChanges(user string, changes ...Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes[user] = changes
}

func (s *Server) AddTrack(user, path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[user+"/"+path] = data
}

// Fail makes every request whose path ends with suffix answer with status.
func (s *Server) Fail(suffix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[suffix] = status
}

func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failures)
}

func (s *Server) SetTags(user, path string, tags Tags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[user+"/"+path] = tags
}

func (s *Server) SetChangelog(user string, entries ...Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changelog[user] = entries
}

// Requests returns the decoded paths of every request so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestsWithPrefix counts requests whose path starts with prefix.
func (s *Server) RequestsWithPrefix(prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// Watermarks returns the since values sent to /changes, in order.
func (s *Server) Watermarks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.since...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		status := 0
		for suffix, code := range s.failures {
			if strings.HasSuffix(r.URL.Path, suffix) {
				status = code
			}
		}
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.changes[r.PathValue("user")])
	s.mu.Unlock()
	writeJSON(w, map[string]int{"count": n})
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.since = append(s.since, r.PathValue("since"))
	changes := append([]Change{}, s.changes[r.PathValue("user")]...)
	s.mu.Unlock()
	writeJSON(w, map[string][]Change{"changes": changes})
}

func (s *Server) handleMusic(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.tracks[r.PathValue("user")+"/"+r.PathValue("path")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(data)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tags, ok := s.tags[r.PathValue("user")+"/"+r.PathValue("path")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, tags)
}

func (s *Server) handleArtwork(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/jpeg")
	fmt.Fprintf(w, "artwork:%s", r.PathValue("path"))
}

func (s *Server) handleChangelog(w http.ResponseWriter, r *http.Request) {
	page, err1 := strconv.Atoi(r.PathValue("page"))
	size, err2 := strconv.Atoi(r.PathValue("size"))
	if err1 != nil || err2 != nil || page < 0 || size <= 0 {
		http.Error(w, "bad page", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	entries := s.changelog[r.PathValue("user")]
	s.mu.Unlock()

	start := min(page*size, len(entries))
	end := min(start+size, len(entries))
	writeJSON(w, map[string]any{
		"total":     len(entries),
		"changelog": append([]Entry{}, entries[start:end]...),
	})
}
