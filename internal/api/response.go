package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abelzeko/plant-bot/internal/entities"
)

// Response is the envelope for every JSON answer that is not a raw collection
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// BadRequest writes a 400 envelope
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// NotFound writes a 404 envelope
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:    http.StatusNotFound,
		Message: message,
	})
}

// Conflict writes a 409 envelope
func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Response{
		Code:    http.StatusConflict,
		Message: message,
	})
}

// InternalServerError writes a 500 envelope
func InternalServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}

// respondError maps an error category onto a status code
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entities.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, entities.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, entities.ErrInconsistentState):
		Conflict(c, err.Error())
	default:
		InternalServerError(c, err.Error())
	}
}
