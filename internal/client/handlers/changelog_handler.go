package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unclealex/devicesync/internal/changes"
	"github.com/unclealex/devicesync/internal/iso8601"
)

// Pager is implemented by *changelog.Pager.
type Pager interface {
	Changelog() *changes.Changelog
	NearBottom() bool
	Loading() bool
}

type ChangelogHandler struct {
	pager Pager
}

func NewChangelogHandler(pager Pager) *ChangelogHandler {
	return &ChangelogHandler{pager: pager}
}

// List returns every item loaded so far.
func (h *ChangelogHandler) List(c *gin.Context) {
	log := h.pager.Changelog()
	items := log.Items()

	resp := ChangelogResponse{
		Total:   log.Total(),
		Loaded:  len(items),
		Loading: h.pager.Loading(),
		HasMore: log.HasMore(),
		Items:   make([]ChangelogItem, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = ChangelogItem{
			ParentPath: item.ParentPath.String(),
			At:         iso8601.Format(item.At),
			Path:       item.Path.String(),
		}
	}
	c.PureJSON(http.StatusOK, resp)
}

// More is the near-bottom signal: it starts loading the next page unless one is loading.
func (h *ChangelogHandler) More(c *gin.Context) {
	if !h.pager.NearBottom() {
		AbortWithError(c, http.StatusConflict, ErrCodeLoadInFlight, errors.New("a page is already loading"))
		return
	}
	c.PureJSON(http.StatusAccepted, ControlPlaneResponse{Code: CodeOk})
}
