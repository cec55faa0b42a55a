package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jobpilot/internal/service"
)

// ApplicationHandler handles application pipeline endpoints.
type ApplicationHandler struct {
	applicationService *service.ApplicationService
}

// NewApplicationHandler creates a new application handler.
func NewApplicationHandler(applicationService *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// List handles GET /api/v1/applications?status=.
func (h *ApplicationHandler) List(c *gin.Context) {
	apps, err := h.applicationService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(apps),
		"applications": apps,
	})
}

// Summary handles GET /api/v1/applications/summary.
func (h *ApplicationHandler) Summary(c *gin.Context) {
	summary, err := h.applicationService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Create handles POST /api/v1/applications.
// Saving an already saved job returns the existing application.
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req service.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	app, err := h.applicationService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// Get handles GET /api/v1/applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applicationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Update handles PATCH /api/v1/applications/:id.
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req service.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	app, err := h.applicationService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
