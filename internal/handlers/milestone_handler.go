package handlers

import (
	"net/http"

	"freelancehub/internal/middleware"
	"freelancehub/internal/models"
	"freelancehub/internal/services"

	"github.com/gin-gonic/gin"
)

type MilestoneHandler struct {
	BaseHandler
	milestoneService services.MilestoneService
}

func NewMilestoneHandler(base BaseHandler, milestoneService services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{BaseHandler: base, milestoneService: milestoneService}
}

func (h *MilestoneHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/projects/:id/milestones", h.ListForProject)

	milestones := r.Group("/milestones")
	{
		milestones.PUT("/:id/submit", middleware.RequireRoles(models.UserRoleFreelancer), h.SubmitForReview)
		milestones.PUT("/:id/approve", middleware.RequireRoles(models.UserRoleClient), h.Approve)
		milestones.PUT("/:id/reject", middleware.RequireRoles(models.UserRoleClient), h.RejectWork)
		milestones.POST("/:id/payment-intent", middleware.RequireRoles(models.UserRoleClient), h.CreatePaymentIntent)
		milestones.POST("/:id/confirm-payment", middleware.RequireRoles(models.UserRoleClient), h.ConfirmPayment)
	}
}

func (h *MilestoneHandler) ListForProject(c *gin.Context) {
	milestones, err := h.milestoneService.ListForProject(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

func (h *MilestoneHandler) SubmitForReview(c *gin.Context) {
	milestone, err := h.milestoneService.SubmitForReview(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *MilestoneHandler) Approve(c *gin.Context) {
	milestone, err := h.milestoneService.Approve(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *MilestoneHandler) RejectWork(c *gin.Context) {
	milestone, err := h.milestoneService.RejectWork(h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *MilestoneHandler) CreatePaymentIntent(c *gin.Context) {
	resp, err := h.milestoneService.CreatePaymentIntent(c.Request.Context(), h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MilestoneHandler) ConfirmPayment(c *gin.Context) {
	milestone, err := h.milestoneService.ConfirmPayment(c.Request.Context(), h.GetDB(c), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}
