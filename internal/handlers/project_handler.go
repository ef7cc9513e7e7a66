package handlers

import (
	"net/http"

	"freelancehub/internal/middleware"
	"freelancehub/internal/models"
	"freelancehub/internal/services"
	"freelancehub/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	BaseHandler
	projectService services.ProjectService
}

func NewProjectHandler(base BaseHandler, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{BaseHandler: base, projectService: projectService}
}

func (h *ProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	projects := r.Group("/projects")
	{
		projects.POST("", middleware.RequireRoles(models.UserRoleClient), h.Create)
		projects.GET("", h.List)
		projects.GET("/:id", h.Get)
		projects.PUT("/:id", middleware.RequireRoles(models.UserRoleClient), h.Update)
		projects.DELETE("/:id", middleware.RequireRoles(models.UserRoleClient, models.UserRoleAdmin), h.Delete)
		projects.PUT("/:id/complete", middleware.RequireRoles(models.UserRoleClient), h.Complete)
		projects.PUT("/:id/cancel", middleware.RequireRoles(models.UserRoleClient), h.Cancel)
	}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(h.GetDB(c), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	var query dto.ProjectListQuery
	if !h.BindAndValidateQuery(c, &query) {
		return
	}

	resp, err := h.projectService.List(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.Get(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(h.GetDB(c), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	deleted, err := h.projectService.Delete(h.GetDB(c), middleware.GetUserID(c), middleware.GetUserRole(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *ProjectHandler) Complete(c *gin.Context) {
	project, err := h.projectService.Complete(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Cancel(c *gin.Context) {
	project, err := h.projectService.Cancel(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
