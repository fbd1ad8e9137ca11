package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unclealex/devicesync/internal/fetch"
	"github.com/unclealex/devicesync/internal/prefs"
)

// abortWithDomainError maps the sync error kinds onto HTTP statuses.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, prefs.ErrNotInitialised):
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeNotInitialised, err)
	case errors.Is(err, fetch.ErrIO):
		AbortWithError(c, http.StatusBadGateway, ErrCodeServer, err)
	default:
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
	}
}
