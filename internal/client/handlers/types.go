package handlers

import "github.com/gin-gonic/gin"

const (
	CodeOk                 string = "OK"
	ErrCodeBadRequest      string = "ERR_BAD_REQUEST"
	ErrCodeUnknownError    string = "ERR_UNKNOWN_ERROR"
	ErrCodeNotInitialised  string = "ERR_NOT_INITIALISED"
	ErrCodeServer          string = "ERR_SERVER"
	ErrCodeLoadInFlight    string = "ERR_LOAD_IN_FLIGHT"
	ErrCodeSyncUnavailable string = "ERR_SYNC_UNAVAILABLE"
)

type ControlPlaneResponse struct {
	Code string `json:"code"`
}

type ControlPlaneError struct {
	ErrorCode string `json:"code"`
	Error     string `json:"error"`
}

func AbortWithError(c *gin.Context, status int, code string, err error) {
	c.Abort()
	c.Error(err)
	c.PureJSON(status, ControlPlaneError{
		ErrorCode: code,
		Error:     err.Error(),
	})
}
