package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclealex/devicesync/internal/changelog"
	"github.com/unclealex/devicesync/internal/changes"
	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/prefs"
	"github.com/unclealex/devicesync/internal/relpath"
	"github.com/unclealex/devicesync/internal/syncer"
	"github.com/unclealex/devicesync/internal/tags"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

type fakeSubmitter struct{ n int }

func (f *fakeSubmitter) Submit() *syncer.Request {
	f.n++
	return &syncer.Request{ID: fmt.Sprintf("req-%d", f.n)}
}

func TestSyncHandler_Now(t *testing.T) {
	worker := &fakeSubmitter{}
	h := NewSyncHandler(worker)

	c, w := testContext(http.MethodPost, "/v1/sync")
	h.Now(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp SyncResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.ID)
	assert.Equal(t, CodeOk, resp.Code)
}

// pageLoader appends one fixed item per call and can be held open.
type pageLoader struct {
	gate chan struct{}
}

func (l *pageLoader) LoadNextChangelogPage(ctx context.Context, _ *changes.Changelog) (bool, error) {
	if l.gate != nil {
		<-l.gate
	}
	return false, nil
}

func TestChangelogHandler_MoreRejectsWhileLoading(t *testing.T) {
	loader := &pageLoader{gate: make(chan struct{})}
	pager := changelog.NewPager(context.Background(), loader)
	h := NewChangelogHandler(pager)

	c, w := testContext(http.MethodPost, "/v1/changelog/more")
	h.More(c)
	assert.Equal(t, http.StatusAccepted, w.Code)

	c, w = testContext(http.MethodPost, "/v1/changelog/more")
	h.More(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), ErrCodeLoadInFlight)

	close(loader.gate)
	pager.Wait()

	c, w = testContext(http.MethodPost, "/v1/changelog/more")
	h.More(c)
	assert.Equal(t, http.StatusAccepted, w.Code)
	pager.Wait()
}

type staticPager struct {
	log *changes.Changelog
}

func (p staticPager) Changelog() *changes.Changelog { return p.log }
func (p staticPager) NearBottom() bool              { return true }
func (p staticPager) Loading() bool                 { return false }

func TestChangelogHandler_List(t *testing.T) {
	h := NewChangelogHandler(staticPager{log: changes.NewChangelog()})

	c, w := testContext(http.MethodGet, "/v1/changelog")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ChangelogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, -1, resp.Total)
	assert.Equal(t, 0, resp.Loaded)
	assert.True(t, resp.HasMore)
	assert.NotNil(t, resp.Items)
}

type fakeTags struct {
	tags *tags.Tags
	err  error
	got  relpath.RelativePath
}

func (f *fakeTags) LoadTags(_ context.Context, path relpath.RelativePath) (*tags.Tags, error) {
	f.got = path
	return f.tags, f.err
}

func TestTagsHandler_Get(t *testing.T) {
	cover, _ := url.Parse("http://music:8080/artwork/alex/Queen/Innuendo/01.mp3")
	loader := &fakeTags{tags: &tags.Tags{AlbumArtist: "Queen", Album: "Innuendo", CoverArt: cover}}
	h := NewTagsHandler(loader)

	c, w := testContext(http.MethodGet, "/v1/tags?path="+url.QueryEscape("Queen/Innuendo/01.mp3"))
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TagsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, TagsResponse{AlbumArtist: "Queen", Album: "Innuendo", CoverArt: cover.String()}, resp)
	assert.Equal(t, "Queen/Innuendo/01.mp3", loader.got.String())
}

func TestTagsHandler_Errors(t *testing.T) {
	for name, tc := range map[string]struct {
		query string
		err   error
		want  int
	}{
		"missing path":    {query: "", want: http.StatusBadRequest},
		"not initialised": {query: "a.mp3", err: prefs.ErrNotInitialised, want: http.StatusServiceUnavailable},
		"server error":    {query: "a.mp3", err: &fetch.StatusError{Code: 404}, want: http.StatusBadGateway},
		"other":           {query: "a.mp3", err: errors.New("boom"), want: http.StatusInternalServerError},
	} {
		h := NewTagsHandler(&fakeTags{err: tc.err})
		c, w := testContext(http.MethodGet, "/v1/tags?path="+tc.query)
		h.Get(c)
		assert.Equal(t, tc.want, w.Code, name)
		assert.NotEmpty(t, c.Errors, name)
	}
}

