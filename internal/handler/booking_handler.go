package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenpath/service-placement/internal/application"
	"github.com/havenpath/service-placement/internal/dates"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/stats/bookings", h.GetStats)

	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/history", h.GetHistory)
		bookings.GET("/:id/actions", h.GetActions)
		bookings.GET("/:id/turnarounds", h.GetTurnarounds)
		bookings.GET("/:id/overstay", h.AssessOverstay)
		bookings.POST("/:id/confirm", h.ConfirmBooking)
		bookings.POST("/:id/arrival", h.RecordArrival)
		bookings.PUT("/:id/arrival", h.ChangeArrivalDate)
		bookings.POST("/:id/departure", h.RecordDeparture)
		bookings.PUT("/:id/departure", h.CorrectDeparture)
		bookings.POST("/:id/extensions", h.ExtendBooking)
		bookings.POST("/:id/cancellations", h.CancelBooking)
		bookings.PUT("/:id/cancellations", h.CorrectCancellation)
		bookings.PUT("/:id/turnaround", h.ChangeTurnaround)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, result)
}

// ListBookings handles GET /api/v1/bookings. Optional reference, crn or
// bedspace_id query parameters narrow the listing.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	if reference := c.Query("reference"); reference != "" {
		result, err := h.service.GetBookingByReference(c.Request.Context(), reference)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, result)
		return
	}

	if crn := c.Query("crn"); crn != "" {
		result, err := h.service.GetPersonBookings(c.Request.Context(), crn, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPaginated(c, result.Items, result.Total, result.Page, result.Limit)
		return
	}

	if raw := c.Query("bedspace_id"); raw != "" {
		bedspaceID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid bedspace ID")
			return
		}
		result, err := h.service.GetBedspaceBookings(c.Request.Context(), bedspaceID, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPaginated(c, result.Items, result.Total, result.Page, result.Limit)
		return
	}

	result, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPaginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetStats handles GET /api/v1/stats/bookings.
func (h *BookingHandler) GetStats(c *gin.Context) {
	result, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetHistory handles GET /api/v1/bookings/:id/history.
func (h *BookingHandler) GetHistory(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBookingHistory(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetActions handles GET /api/v1/bookings/:id/actions.
func (h *BookingHandler) GetActions(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBookingActions(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetTurnarounds handles GET /api/v1/bookings/:id/turnarounds.
func (h *BookingHandler) GetTurnarounds(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetTurnarounds(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// AssessOverstay handles GET /api/v1/bookings/:id/overstay?date=2026-04-02.
func (h *BookingHandler) AssessOverstay(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	proposed, err := dates.ParseISO(c.Query("date"))
	if err != nil {
		badRequest(c, "invalid or missing date")
		return
	}

	result, err := h.service.AssessOverstay(c.Request.Context(), bookingID, proposed)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), bookingID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// RecordArrival handles POST /api/v1/bookings/:id/arrival.
func (h *BookingHandler) RecordArrival(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req application.ArrivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.RecordArrival(c.Request.Context(), bookingID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ChangeArrivalDate handles PUT /api/v1/bookings/:id/arrival.
func (h *BookingHandler) ChangeArrivalDate(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		ArrivalDate time.Time `json:"arrival_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.ChangeArrivalDate(c.Request.Context(), bookingID, req.ArrivalDate)
	if err != nil {
		respondSingleDateError(c, err)
		return
	}
	respondOK(c, result)
}

// RecordDeparture handles POST /api/v1/bookings/:id/departure.
func (h *BookingHandler) RecordDeparture(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req application.DepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.RecordDeparture(c.Request.Context(), bookingID, req)
	if err != nil {
		respondSingleDateError(c, err)
		return
	}
	respondOK(c, result)
}

// CorrectDeparture handles PUT /api/v1/bookings/:id/departure.
func (h *BookingHandler) CorrectDeparture(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req application.DepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.CorrectDeparture(c.Request.Context(), bookingID, req)
	if err != nil {
		respondSingleDateError(c, err)
		return
	}
	respondOK(c, result)
}

// ExtendBooking handles POST /api/v1/bookings/:id/extensions.
func (h *BookingHandler) ExtendBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req application.ExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.ExtendBooking(c.Request.Context(), bookingID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancellations.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req application.CancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// CorrectCancellation handles PUT /api/v1/bookings/:id/cancellations.
func (h *BookingHandler) CorrectCancellation(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req application.CancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.CorrectCancellation(c.Request.Context(), bookingID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ChangeTurnaround handles PUT /api/v1/bookings/:id/turnaround.
func (h *BookingHandler) ChangeTurnaround(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		WorkingDays *int `json:"working_days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.ChangeTurnaround(c.Request.Context(), bookingID, *req.WorkingDays)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
