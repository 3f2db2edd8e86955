package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MiteshDarda/pw-genius/internal/domain"
	"github.com/MiteshDarda/pw-genius/internal/repository"
	"github.com/MiteshDarda/pw-genius/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler serves the review-console endpoints. All routes are behind the
// admin group middleware.
type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// --- DTOs ---

type UpdateStatusRequest struct {
	Status  domain.Status `json:"status" binding:"required,oneof=pending approved rejected"`
	Remarks *string       `json:"remarks"`
}

type BulkUpdateStatusRequest struct {
	IDs     []string      `json:"ids" binding:"required,min=1"`
	Status  domain.Status `json:"status" binding:"required,oneof=pending approved rejected"`
	Remarks *string       `json:"remarks"`
}

func nominationIDFromPath(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid nomination ID format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// mapAdminError translates service errors into HTTP responses.
func mapAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNominationNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoAttachment):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTransitionNotAllowed):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAttachmentDownload):
		abortWithError(c, http.StatusBadGateway, "Failed to retrieve the stored file.")
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal server error.")
	}
}

// ListNominations handles GET /admin/nominations with optional filters.
func (h *AdminHandler) ListNominations(c *gin.Context) {
	filter := repository.NominationFilter{
		Search: c.Query("search"),
		Class:  c.Query("class"),
		Exam:   c.Query("exam"),
		Status: domain.Status(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		abortWithError(c, http.StatusBadRequest, "Invalid status filter.")
		return
	}

	list, err := h.adminService.ListNominations(c.Request.Context(), filter)
	if err != nil {
		mapAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetNominationDetail handles GET /admin/nominations/:id.
func (h *AdminHandler) GetNominationDetail(c *gin.Context) {
	id, ok := nominationIDFromPath(c)
	if !ok {
		return
	}

	detail, err := h.adminService.GetNominationDetail(c.Request.Context(), id)
	if err != nil {
		mapAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetUserNomination handles GET /admin/user/:userId.
func (h *AdminHandler) GetUserNomination(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		abortWithError(c, http.StatusBadRequest, "userId is required")
		return
	}

	detail, err := h.adminService.GetUserNomination(c.Request.Context(), userID)
	if err != nil {
		mapAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateStatus handles PUT /admin/nominations/:id/status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := nominationIDFromPath(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.adminService.SetStatus(c.Request.Context(), id, req.Status, req.Remarks)
	if err != nil {
		mapAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BulkUpdateStatus handles POST /admin/nominations/bulk-status.
// With ?strict=true the response also lists ids that matched no record.
func (h *AdminHandler) BulkUpdateStatus(c *gin.Context) {
	var req BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid nomination ID: %s", raw))
			return
		}
		ids = append(ids, id)
	}

	strict, _ := strconv.ParseBool(c.Query("strict"))

	result, err := h.adminService.BulkSetStatus(c.Request.Context(), ids, req.Status, req.Remarks, strict)
	if err != nil {
		mapAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStatistics handles GET /admin/statistics.
func (h *AdminHandler) GetStatistics(c *gin.Context) {
	stats, err := h.adminService.GetStatistics(c.Request.Context())
	if err != nil {
		mapAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DownloadAttachment handles GET /admin/nominations/:id/download, framing the
// stored bytes as a file download.
func (h *AdminHandler) DownloadAttachment(c *gin.Context) {
	id, ok := nominationIDFromPath(c)
	if !ok {
		return
	}

	payload, err := h.adminService.DownloadAttachment(c.Request.Context(), id)
	if err != nil {
		mapAdminError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.FileName))
	c.Header("Content-Length", strconv.Itoa(len(payload.Content)))
	c.Data(http.StatusOK, payload.FileMimeType, payload.Content)
}

// DeleteNomination handles DELETE /admin/nominations/:id.
func (h *AdminHandler) DeleteNomination(c *gin.Context) {
	id, ok := nominationIDFromPath(c)
	if !ok {
		return
	}

	if err := h.adminService.DeleteNomination(c.Request.Context(), id); err != nil {
		mapAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Nomination deleted successfully"})
}
