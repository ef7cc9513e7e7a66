package handlers

import (
	"net/http"
	"strconv"

	"freelancehub/internal/validator"
	"freelancehub/pkg/apperrors"
	"freelancehub/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) BaseHandler {
	return BaseHandler{validator: v}
}

// GetDB returns the request-scoped gorm handle placed by DBMiddleware.
// Tests may inject a transaction under the same key.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	return c.MustGet(string(contextkeys.DBContextKey)).(*gorm.DB)
}

// BindAndValidateJSON decodes the body and runs struct validation.
// Responds with 400 and returns false when either step fails.
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": apperrors.CodeValidationFailed, "message": "invalid request body: " + err.Error()},
		})
		return false
	}
	return h.validate(c, obj)
}

// BindAndValidateQuery does the same for query parameters.
func (h *BaseHandler) BindAndValidateQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": apperrors.CodeValidationFailed, "message": "invalid query parameters: " + err.Error()},
		})
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj any) bool {
	if err := h.validator.Validate(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": apperrors.CodeValidationFailed, "message": err.Error()},
		})
		return false
	}
	return true
}

// HandleServiceError maps a service error to its HTTP response.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
}

// ParsePagination reads limit/offset with sane bounds.
func ParsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
