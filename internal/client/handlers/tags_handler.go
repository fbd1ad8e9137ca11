package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unclealex/devicesync/internal/relpath"
	"github.com/unclealex/devicesync/internal/tags"
)

type TagLoader interface {
	LoadTags(ctx context.Context, path relpath.RelativePath) (*tags.Tags, error)
}

type TagsHandler struct {
	tags TagLoader
}

func NewTagsHandler(tags TagLoader) *TagsHandler {
	return &TagsHandler{tags: tags}
}

// Get godoc
//
//	@Summary		Get track tags
//	@Tags			tags
//	@Produce		json
//	@Param			path	query		string	true	"Relative path of the track"
//	@Success		200		{object}	TagsResponse
//	@Failure		400		{object}	ControlPlaneError
//	@Failure		502		{object}	ControlPlaneError
//	@Router			/v1/tags [get]
//	@Security		APIToken
func (h *TagsHandler) Get(c *gin.Context) {
	path := relpath.Parse(c.Query("path"))
	if path.IsEmpty() {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, errors.New("path is required"))
		return
	}

	t, err := h.tags.LoadTags(c.Request.Context(), path)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	resp := TagsResponse{AlbumArtist: t.AlbumArtist, Album: t.Album}
	if t.CoverArt != nil {
		resp.CoverArt = t.CoverArt.String()
	}
	c.PureJSON(http.StatusOK, resp)
}
