package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/handlegpt/cv/internal/core/domain"
	"github.com/handlegpt/cv/internal/transport/http/middleware"
	"github.com/handlegpt/cv/internal/usecase"
)

// ResumeHandler exposes the owner-scoped resume CRUD endpoints.
type ResumeHandler struct {
	resumes *usecase.ResumeService
	tokens  *usecase.TokenService
}

// NewResumeHandler constructs ResumeHandler.
func NewResumeHandler(resumes *usecase.ResumeService, tokens *usecase.TokenService) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, tokens: tokens}
}

// RegisterRoutes binds resume routes. Every route requires an authenticated
// session; the gateway covers the prefix but route-level enforcement stays in
// place so the group is safe even if mounted elsewhere.
func (h *ResumeHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireAuth(h.tokens))

	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

func (h *ResumeHandler) create(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CreateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resume payload"))
		return
	}

	resume, err := h.resumes.Create(c.Request.Context(), userID, usecase.CreateResumeInput{
		Title:    req.Title,
		Content:  req.Content,
		Sections: req.Sections,
		Settings: req.Settings,
		Language: req.Language,
		Template: req.Template,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidResume) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to create resume"))
		return
	}

	c.JSON(http.StatusCreated, newResumeResponse(*resume))
}

func (h *ResumeHandler) list(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	summaries, err := h.resumes.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list resumes"))
		return
	}

	resp := ResumeListResponse{Resumes: make([]ResumeSummaryResponse, 0, len(summaries))}
	for _, summary := range summaries {
		resp.Resumes = append(resp.Resumes, newResumeSummaryResponse(summary))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ResumeHandler) get(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	resume, err := h.resumes.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrResumeNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "resume not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load resume"))
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*resume))
}

func (h *ResumeHandler) update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resume payload"))
		return
	}

	input := usecase.UpdateResumeInput{
		Title:    req.Title,
		Content:  req.Content,
		Sections: req.Sections,
		Settings: req.Settings,
		IsPublic: req.IsPublic,
	}
	if req.Status != nil {
		status := domain.ResumeStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		input.Status = &status
	}

	resume, err := h.resumes.Update(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrResumeNotFound):
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "resume not found"))
		case errors.Is(err, usecase.ErrInvalidResume):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to update resume"))
		}
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*resume))
}

func (h *ResumeHandler) delete(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.resumes.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, usecase.ErrResumeNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "resume not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to delete resume"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "resume deleted"})
}
