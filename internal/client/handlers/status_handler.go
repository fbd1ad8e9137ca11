package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/unclealex/devicesync/internal/iso8601"
	"github.com/unclealex/devicesync/internal/notify"
	"github.com/unclealex/devicesync/internal/version"
)

// StatusSource is implemented by *client.Client.
type StatusSource interface {
	LastSynchronised() (time.Time, bool, error)
	PendingChanges(ctx context.Context) (bool, error)
	Notifications() notify.Snapshot
}

type OffsetSource interface {
	Offset() (int, error)
}

type QueueSource interface {
	Running() string
	Pending() int
}

type StatusHandler struct {
	status StatusSource
	offset OffsetSource
	queue  QueueSource
}

func NewStatusHandler(status StatusSource, offset OffsetSource, queue QueueSource) *StatusHandler {
	return &StatusHandler{status: status, offset: offset, queue: queue}
}

// Status godoc
//
//	@Summary		Get status
//	@Description	Returns the watermark, resume offset, pending changes and notifications
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/v1/status [get]
func (h *StatusHandler) Status(c *gin.Context) {
	resp := &StatusResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       version.Version,
		Revision:      version.Revision,
		BuildDate:     version.BuildDate,
		Running:       h.queue.Running(),
		Queued:        h.queue.Pending(),
		Notifications: h.status.Notifications(),
	}

	at, ok, err := h.status.LastSynchronised()
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if ok {
		resp.LastSynchronised = iso8601.Format(at)
	}

	if resp.Offset, err = h.offset.Offset(); err != nil {
		abortWithDomainError(c, err)
		return
	}

	// an unreachable server is part of the status, not a failure of it
	pending, err := h.status.PendingChanges(c.Request.Context())
	if err != nil {
		resp.PendingError = err.Error()
	} else {
		resp.Pending = &pending
	}

	c.PureJSON(http.StatusOK, resp)
}
