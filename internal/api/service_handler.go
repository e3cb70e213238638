package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/core"
)

// ServiceHandler handles the salon service catalog endpoints.
type ServiceHandler struct {
	catalog core.CatalogService
	logger  *zap.Logger
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(catalog core.CatalogService, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, logger: logger}
}

// CreateService handles POST /services.
func (h *ServiceHandler) CreateService(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.catalog.CreateService(c.Request.Context(), doc)
	if err != nil {
		storeFailure(c, h.logger, "Failed to create service", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListServices handles GET /services.
func (h *ServiceHandler) ListServices(c *gin.Context) {
	docs, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		storeFailure(c, h.logger, "Failed to list services", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// ListAllServices handles GET /allServices.
func (h *ServiceHandler) ListAllServices(c *gin.Context) {
	docs, err := h.catalog.ListAllServices(c.Request.Context())
	if err != nil {
		storeFailure(c, h.logger, "Failed to list services", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetService handles GET /services/:id. An unknown id yields null.
func (h *ServiceHandler) GetService(c *gin.Context) {
	doc, err := h.catalog.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, h.logger, "Failed to get service", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteService handles DELETE /services/:id.
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	res, err := h.catalog.DeleteService(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, h.logger, "Failed to delete service", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
