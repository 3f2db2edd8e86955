package api

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/MiteshDarda/pw-genius/internal/service"

	"github.com/gin-gonic/gin"
)

// NominationHandler serves the nominee-facing endpoints.
type NominationHandler struct {
	nominationService service.NominationService
	maxAttachmentSize int64
}

func NewNominationHandler(nominationService service.NominationService, maxAttachmentSize int64) *NominationHandler {
	return &NominationHandler{
		nominationService: nominationService,
		maxAttachmentSize: maxAttachmentSize,
	}
}

// --- DTOs ---

// SubmitNominationRequest is the multipart form carrying the nomination
// fields. The optional "file" part is read separately.
type SubmitNominationRequest struct {
	UserID      string `form:"userId" binding:"required"`
	StudentName string `form:"studentName" binding:"required"`
	Class       string `form:"class" binding:"required"`
	FatherName  string `form:"fatherName" binding:"required"`
	MotherName  string `form:"motherName" binding:"required"`
	ExamName    string `form:"examName" binding:"required"`
	Performance string `form:"performance" binding:"required"`
	Year        string `form:"year" binding:"required"`
	Reason      string `form:"reason" binding:"required"`
	Dream       string `form:"dream" binding:"required"`
}

// validateAttachment enforces the upload constraints (size limit, .zip only)
// before the service layer is invoked; the service trusts these checks.
func (h *NominationHandler) validateAttachment(header *multipart.FileHeader) string {
	if header.Size > h.maxAttachmentSize {
		return "Attachment exceeds the maximum allowed size"
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".zip") {
		return "Attachment must be a .zip file"
	}
	return ""
}

// SubmitNomination handles POST /register.
func (h *NominationHandler) SubmitNomination(c *gin.Context) {
	var req SubmitNominationRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if submitterID, err := getUserIDFromContext(c); err == nil && submitterID != req.UserID {
		log.Printf("INFO: Submission for user %s initiated by token subject %s", req.UserID, submitterID)
	}

	var attachment *service.Attachment
	header, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		abortWithError(c, http.StatusBadRequest, "Invalid file upload: "+err.Error())
		return
	}
	if header != nil {
		if msg := h.validateAttachment(header); msg != "" {
			abortWithError(c, http.StatusBadRequest, msg)
			return
		}

		file, err := header.Open()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Unable to read uploaded file")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/zip"
		}

		attachment = &service.Attachment{
			FileName:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Content:     file,
		}
	}

	result, err := h.nominationService.Submit(c.Request.Context(), service.SubmissionInput{
		UserID:      req.UserID,
		StudentName: req.StudentName,
		Class:       req.Class,
		FatherName:  req.FatherName,
		MotherName:  req.MotherName,
		ExamName:    req.ExamName,
		Performance: req.Performance,
		Year:        req.Year,
		Reason:      req.Reason,
		Dream:       req.Dream,
	}, attachment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateSubmission):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrAttachmentUpload):
			abortWithError(c, http.StatusBadGateway, "Failed to store the uploaded file. Please try again.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to submit nomination.")
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// CheckRegistration handles GET /register/check/:userId.
func (h *NominationHandler) CheckRegistration(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		abortWithError(c, http.StatusBadRequest, "userId is required")
		return
	}

	result, err := h.nominationService.CheckRegistration(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to check registration status.")
		return
	}

	c.JSON(http.StatusOK, result)
}
