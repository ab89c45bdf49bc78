package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gedemagt/booking/internal/api"
	"github.com/gedemagt/booking/internal/auth"
	"github.com/gedemagt/booking/internal/gym"
	"github.com/gedemagt/booking/internal/logger"
	"github.com/gedemagt/booking/internal/policy"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create books a slot. Policy violations come back as 422 with the violated
// check; system errors are logged and surface as a generic 500.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	zoneID, err := strconv.Atoi(c.Param("zoneID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid zone ID"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), userID, auth.GetUserRole(c), zoneID, req)
	if err != nil {
		h.respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) CreateRecurring(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	zoneID, err := strconv.Atoi(c.Param("zoneID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid zone ID"})
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	rb, err := h.service.CreateRecurring(c.Request.Context(), userID, auth.GetUserRole(c), zoneID, req)
	if err != nil {
		h.respondError(c, err, "Failed to create recurring booking")
		return
	}

	c.JSON(http.StatusCreated, rb)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, auth.GetUserRole(c), bookingID); err != nil {
		h.respondError(c, err, "Failed to delete booking")
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking deleted"})
}

func (h *Handler) DeleteRecurring(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("recurringID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid recurring booking ID"})
		return
	}

	if err := h.service.DeleteRecurring(c.Request.Context(), userID, auth.GetUserRole(c), id); err != nil {
		h.respondError(c, err, "Failed to delete recurring booking")
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Recurring booking deleted"})
}

func (h *Handler) UpdateNote(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.UpdateNote(c.Request.Context(), userID, bookingID, req.Note); err != nil {
		h.respondError(c, err, "Failed to update note")
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Note updated"})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Query("gym_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "gym_id query param required"})
		return
	}

	bookings, err := h.service.MyBookings(c.Request.Context(), gymID, userID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) ListByZone(c *gin.Context) {
	zoneID, err := strconv.Atoi(c.Param("zoneID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid zone ID"})
		return
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from date, use YYYY-MM-DD"})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to date, use YYYY-MM-DD"})
		return
	}

	bookings, err := h.service.ZoneBookings(c.Request.Context(), zoneID, from, to)
	if err != nil {
		h.respondError(c, err, "Failed to fetch bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// Occupancy returns the day map for ?date=YYYY-MM-DD, or the Monday-aligned
// week map for ?week=YYYY-MM-DD.
func (h *Handler) Occupancy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	zoneID, err := strconv.Atoi(c.Param("zoneID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid zone ID"})
		return
	}

	if week := c.Query("week"); week != "" {
		t, err := parseDate(week)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid week date, use YYYY-MM-DD"})
			return
		}

		m, err := h.service.WeekOccupancy(c.Request.Context(), zoneID, t, userID)
		if err != nil {
			h.respondError(c, err, "Failed to build occupancy")
			return
		}
		c.JSON(http.StatusOK, m)
		return
	}

	t, err := parseDate(c.DefaultQuery("date", time.Now().Format("2006-01-02")))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date, use YYYY-MM-DD"})
		return
	}

	m, err := h.service.DayOccupancy(c.Request.Context(), zoneID, t, userID)
	if err != nil {
		h.respondError(c, err, "Failed to build occupancy")
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var v *policy.Violation
	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusUnprocessableEntity, api.ViolationResponse{Error: v.Reason, Check: v.Check})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
	case errors.Is(err, gym.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Zone not found"})
	case errors.Is(err, gym.ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, ErrNotMember):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You are not a member of this gym"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Insufficient permissions"})
	default:
		logger.Error("booking request failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
