package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/middleware"
	"github.com/example/parlour/internal/models"
)

var errNotAnObject = errors.New("request body must be a JSON object")

// bindDocument decodes the body into a document. It answers 400 and returns
// false unless the body is a JSON object.
func bindDocument(c *gin.Context) (models.Document, bool) {
	var doc models.Document
	err := c.ShouldBindJSON(&doc)
	if err == nil && doc == nil {
		err = errNotAnObject
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return nil, false
	}
	return doc, true
}

// storeFailure logs err and answers 500.
func storeFailure(c *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Error(msg,
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg, Details: err.Error()})
}
