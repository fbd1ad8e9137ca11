package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unclealex/devicesync/internal/syncer"
)

type Submitter interface {
	Submit() *syncer.Request
}

type SyncHandler struct {
	worker Submitter
}

func NewSyncHandler(worker Submitter) *SyncHandler {
	return &SyncHandler{worker: worker}
}

// Now godoc
//
//	@Summary		Queue a sync
//	@Description	Queues a run on the sync worker and returns its id
//	@Tags			sync
//	@Produce		json
//	@Success		202	{object}	SyncResponse
//	@Router			/v1/sync [post]
//	@Security		APIToken
func (h *SyncHandler) Now(c *gin.Context) {
	req := h.worker.Submit()
	c.PureJSON(http.StatusAccepted, SyncResponse{Code: CodeOk, ID: req.ID})
}
