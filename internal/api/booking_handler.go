package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/core"
)

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	bookings core.BookingService
	logger   *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings core.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.bookings.CreateBooking(c.Request.Context(), doc)
	if err != nil {
		storeFailure(c, h.logger, "Failed to create booking", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	docs, err := h.bookings.ListBookings(c.Request.Context())
	if err != nil {
		storeFailure(c, h.logger, "Failed to list bookings", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	doc, err := h.bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, h.logger, "Failed to get booking", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateBooking handles PUT /bookings/:id. Fields absent from the body are
// left untouched.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.bookings.UpdateBooking(c.Request.Context(), c.Param("id"), doc)
	if err != nil {
		storeFailure(c, h.logger, "Failed to update booking", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	res, err := h.bookings.DeleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, h.logger, "Failed to delete booking", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
