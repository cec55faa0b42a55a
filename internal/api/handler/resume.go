package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jobpilot/internal/service"
)

// ResumeHandler handles resume storage endpoints.
type ResumeHandler struct {
	resumeService *service.ResumeService
}

// NewResumeHandler creates a new resume handler.
func NewResumeHandler(resumeService *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService}
}

// List handles GET /api/v1/resumes.
func (h *ResumeHandler) List(c *gin.Context) {
	resumes, err := h.resumeService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(resumes),
		"resumes": resumes,
	})
}

// Primary handles GET /api/v1/resumes/primary.
func (h *ResumeHandler) Primary(c *gin.Context) {
	resume, err := h.resumeService.Primary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}

// Upload handles POST /api/v1/resumes/upload with multipart field "file".
func (h *ResumeHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field 'file' is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Unreadable upload: "+err.Error())
		return
	}
	defer f.Close()

	resume, err := h.resumeService.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resume)
}

// Download handles GET /api/v1/resumes/:id/download by streaming the file.
func (h *ResumeHandler) Download(c *gin.Context) {
	resume, rc, err := h.resumeService.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	size := resume.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, resume.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", resume.Filename),
	})
}
