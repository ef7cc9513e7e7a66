package handlers

import (
	"net/http"

	"freelancehub/internal/middleware"
	"freelancehub/internal/models"
	"freelancehub/internal/services"
	"freelancehub/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	BaseHandler
	proposalService services.ProposalService
}

func NewProposalHandler(base BaseHandler, proposalService services.ProposalService) *ProposalHandler {
	return &ProposalHandler{BaseHandler: base, proposalService: proposalService}
}

func (h *ProposalHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/projects/:id/proposals", middleware.RequireRoles(models.UserRoleFreelancer), h.Submit)
	r.GET("/projects/:id/proposals", h.ListForProject)
	r.GET("/proposals/my", middleware.RequireRoles(models.UserRoleFreelancer), h.ListMine)
	r.PUT("/proposals/:id/accept", middleware.RequireRoles(models.UserRoleClient), h.Accept)
	r.PUT("/proposals/:id/reject", middleware.RequireRoles(models.UserRoleClient), h.Reject)
}

func (h *ProposalHandler) Submit(c *gin.Context) {
	var req dto.SubmitProposalRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	proposal, err := h.proposalService.Submit(h.GetDB(c), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

func (h *ProposalHandler) ListForProject(c *gin.Context) {
	resp, err := h.proposalService.ListForProject(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProposalHandler) ListMine(c *gin.Context) {
	resp, err := h.proposalService.ListForFreelancer(h.GetDB(c), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProposalHandler) Accept(c *gin.Context) {
	proposal, err := h.proposalService.Accept(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}

func (h *ProposalHandler) Reject(c *gin.Context) {
	proposal, err := h.proposalService.Reject(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}
