package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/notify"
	"github.com/unclealex/devicesync/internal/prefs"
)

type fakeStatus struct {
	last       time.Time
	synced     bool
	lastErr    error
	pending    bool
	pendingErr error
	offset     int
	snap       notify.Snapshot
}

func (f *fakeStatus) LastSynchronised() (time.Time, bool, error) { return f.last, f.synced, f.lastErr }
func (f *fakeStatus) PendingChanges(context.Context) (bool, error) {
	return f.pending, f.pendingErr
}
func (f *fakeStatus) Notifications() notify.Snapshot { return f.snap }
func (f *fakeStatus) Offset() (int, error)           { return f.offset, nil }
func (f *fakeStatus) Running() string                { return "run-1" }
func (f *fakeStatus) Pending() int                   { return 2 }

func serveStatus(t *testing.T, f *fakeStatus) (*httptest.ResponseRecorder, StatusResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/status", nil)

	NewStatusHandler(f, f, f).Status(c)

	var resp StatusResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestStatusHandler_Status(t *testing.T) {
	f := &fakeStatus{
		last:    time.Date(2024, 2, 3, 4, 5, 6, 7_000_000, time.UTC),
		synced:  true,
		pending: true,
		offset:  3,
		snap:    notify.Snapshot{Clearable: "Synchronised 4 changes"},
	}
	w, resp := serveStatus(t, f)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Version)
	assert.Equal(t, "2024-02-03T04:05:06.007+0000", resp.LastSynchronised)
	assert.Equal(t, 3, resp.Offset)
	require.NotNil(t, resp.Pending)
	assert.True(t, *resp.Pending)
	assert.Equal(t, "run-1", resp.Running)
	assert.Equal(t, 2, resp.Queued)
	assert.Equal(t, "Synchronised 4 changes", resp.Notifications.Clearable)
}

func TestStatusHandler_NeverSynchronised(t *testing.T) {
	_, resp := serveStatus(t, &fakeStatus{})
	assert.Empty(t, resp.LastSynchronised)
	require.NotNil(t, resp.Pending)
	assert.False(t, *resp.Pending)
}

func TestStatusHandler_ServerDown(t *testing.T) {
	w, resp := serveStatus(t, &fakeStatus{pendingErr: fmt.Errorf("%w: connection refused", fetch.ErrIO)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, resp.Pending)
	assert.Contains(t, resp.PendingError, "connection refused")
}

func TestStatusHandler_Errors(t *testing.T) {
	w, _ := serveStatus(t, &fakeStatus{lastErr: errors.New("disk")})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w, _ = serveStatus(t, &fakeStatus{lastErr: prefs.ErrNotInitialised})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), ErrCodeNotInitialised)
}
