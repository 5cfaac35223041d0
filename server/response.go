package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply.
type Response struct {
	Code int    `json:"code"`
	Data any    `json:"data"`
	Msg  string `json:"message"`
}

// Business codes carried in Response.Code.
const (
	CodeSuccess         = 0
	CodeError           = -1
	CodeNotFound        = 40400
	CodeValidationError = 40001
)

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: CodeSuccess, Data: data, Msg: "ok"})
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(httpStatus(code), Response{Code: code, Msg: msg})
}

func httpStatus(code int) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeSuccess:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
