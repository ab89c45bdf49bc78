package gym

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gedemagt/booking/internal/api"
	"github.com/gedemagt/booking/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateGym(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
		Code string `json:"code" binding:"required,min=4,max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := h.service.CreateGym(c.Request.Context(), req.Name, req.Code, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create gym"})
		return
	}

	c.JSON(http.StatusCreated, g)
}

func (h *Handler) GetGym(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	g, err := h.service.GetGym(c.Request.Context(), gymID)
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch gym"})
		return
	}

	c.JSON(http.StatusOK, g)
}

func (h *Handler) Join(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := h.service.Join(c.Request.Context(), req.Code, userID)
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to join gym"})
		return
	}

	c.JSON(http.StatusOK, g)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := h.service.UpdateSettings(c.Request.Context(), gymID, userID, auth.GetUserRole(c), req)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (h *Handler) CreateZone(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	var req CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	z, err := h.service.CreateZone(c.Request.Context(), gymID, userID, auth.GetUserRole(c), req)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, z)
}

func (h *Handler) ListZones(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	zones, err := h.service.Zones(c.Request.Context(), gymID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, zones)
}

func (h *Handler) DeleteZone(c *gin.Context) {
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

	if err := h.service.DeleteZone(c.Request.Context(), zoneID, userID, auth.GetUserRole(c)); err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Zone deleted"})
}

func (h *Handler) SetAdmin(c *gin.Context) {
	h.setRole(c, h.service.SetAdmin)
}

func (h *Handler) SetInstructor(c *gin.Context) {
	h.setRole(c, h.service.SetInstructor)
}

type roleFunc func(ctx context.Context, gymID, actorID int, actorRole string, userID int, grant bool) error

func (h *Handler) setRole(c *gin.Context, apply roleFunc) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	var req struct {
		UserID int  `json:"user_id" binding:"required"`
		Grant  bool `json:"grant"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := apply(c.Request.Context(), gymID, actorID, auth.GetUserRole(c), req.UserID, req.Grant); err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Updated"})
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, ErrZoneNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Zone not found"})
	case errors.Is(err, ErrNotGymAdmin):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Gym admin required"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal error"})
	}
}
