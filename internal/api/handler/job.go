package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jobpilot/internal/service"
)

// JobHandler handles job search and saved job endpoints.
type JobHandler struct {
	searchService      *service.SearchService
	applicationService *service.ApplicationService
}

// NewJobHandler creates a new job handler.
// Parameters:
//   - searchService: aggregator over job sources.
//   - applicationService: owner of saved jobs.
// Returns:
//   - *JobHandler: initialized handler.
func NewJobHandler(searchService *service.SearchService, applicationService *service.ApplicationService) *JobHandler {
	return &JobHandler{
		searchService:      searchService,
		applicationService: applicationService,
	}
}

// Search handles GET /api/v1/jobs/search.
// Query: keywords, location, remote_only, limit.
func (h *JobHandler) Search(c *gin.Context) {
	var req service.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Sources handles GET /api/v1/sources.
func (h *JobHandler) Sources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources": h.searchService.Sources(),
	})
}

// List handles GET /api/v1/jobs.
func (h *JobHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	jobs, err := h.applicationService.ListJobs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(jobs),
		"jobs":  jobs,
	})
}

// Get handles GET /api/v1/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.applicationService.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
