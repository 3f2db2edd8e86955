package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/MiteshDarda/pw-genius/internal/domain"
	"github.com/MiteshDarda/pw-genius/internal/repository"
	"github.com/MiteshDarda/pw-genius/internal/storage"
)

// --- Error Definitions ---
var (
	ErrDuplicateSubmission  = errors.New("user has already submitted a registration, duplicate submissions are not allowed")
	ErrNominationNotFound   = errors.New("nomination not found")
	ErrNoAttachment         = errors.New("no file available for this nomination")
	ErrAttachmentUpload     = errors.New("failed to upload file to storage")
	ErrAttachmentDownload   = errors.New("failed to download file")
	ErrInvalidStatus        = errors.New("invalid nomination status")
	ErrTransitionNotAllowed = errors.New("status can no longer be changed for this nomination")
)

// Attachment carries an upload already validated by the transport layer
// (size limit and .zip content type are enforced before the service runs).
type Attachment struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// SubmissionInput holds the nomination form fields. All are required and
// validated by the handler; the record is immutable after creation.
type SubmissionInput struct {
	UserID      string `json:"userId"`
	StudentName string `json:"studentName"`
	Class       string `json:"class"`
	FatherName  string `json:"fatherName"`
	MotherName  string `json:"motherName"`
	ExamName    string `json:"examName"`
	Performance string `json:"performance"`
	Year        string `json:"year"`
	Reason      string `json:"reason"`
	Dream       string `json:"dream"`
}

// SubmissionData echoes the accepted submission back to the caller.
type SubmissionData struct {
	SubmissionInput
	FileUploaded bool   `json:"fileUploaded"`
	FileName     string `json:"fileName,omitempty"`
	FileURL      string `json:"fileUrl,omitempty"`
}

// SubmissionResult is the response envelope for a successful submission.
type SubmissionResult struct {
	Message string         `json:"message"`
	Data    SubmissionData `json:"data"`
	Status  string         `json:"status"`
	LogID   string         `json:"logId"`
}

// RegistrationSummary is the field subset exposed by the self-service check.
type RegistrationSummary struct {
	StudentName string        `json:"studentName"`
	Class       string        `json:"class"`
	ExamName    string        `json:"examName"`
	Year        string        `json:"year"`
	Status      domain.Status `json:"status"`
}

// RegistrationCheck is the tagged result of CheckRegistration. Absence of a
// registration is a valid result, never an error.
type RegistrationCheck struct {
	HasRegistered    bool                 `json:"hasRegistered"`
	Status           domain.Status        `json:"status,omitempty"`
	RegistrationDate *time.Time           `json:"registrationDate,omitempty"`
	Message          string               `json:"message"`
	Data             *RegistrationSummary `json:"data,omitempty"`
}

// NominationService exposes the nominee-facing operations.
type NominationService interface {
	Submit(ctx context.Context, input SubmissionInput, attachment *Attachment) (*SubmissionResult, error)
	CheckRegistration(ctx context.Context, userID string) (*RegistrationCheck, error)
}

// nominationService implements the NominationService interface.
type nominationService struct {
	nominationRepo repository.NominationRepository
	fileStorage    storage.FileStorage
}

// NewNominationService creates a new instance of nominationService.
func NewNominationService(nominationRepo repository.NominationRepository, fileStorage storage.FileStorage) NominationService {
	return &nominationService{
		nominationRepo: nominationRepo,
		fileStorage:    fileStorage,
	}
}

// Submit records a new nomination. The attachment, if any, must be durably
// stored before the record is written: a failed upload produces no record,
// and a record with fileUploaded=true always has a resolvable fileUrl.
func (s *nominationService) Submit(ctx context.Context, input SubmissionInput, attachment *Attachment) (*SubmissionResult, error) {
	if input.UserID == "" {
		return nil, errors.New("userId is required")
	}

	// Fast-path duplicate check. The unique userId index catches the race
	// where two submissions pass this check concurrently.
	_, err := s.nominationRepo.GetByUserID(ctx, input.UserID)
	if err == nil {
		return nil, ErrDuplicateSubmission
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	nomination := &domain.Nomination{
		UserID:      input.UserID,
		StudentName: input.StudentName,
		Class:       input.Class,
		FatherName:  input.FatherName,
		MotherName:  input.MotherName,
		ExamName:    input.ExamName,
		Performance: input.Performance,
		Year:        input.Year,
		Reason:      input.Reason,
		Dream:       input.Dream,
		Status:      domain.StatusPending,
	}

	if attachment != nil {
		objectKey := fmt.Sprintf("uploads/%d-%s", time.Now().UnixMilli(), attachment.FileName)

		fileURL, err := s.fileStorage.Upload(ctx, objectKey, attachment.ContentType, attachment.Content)
		if err != nil {
			log.Printf("ERROR: Attachment upload failed for user %s: %v", input.UserID, err)
			return nil, ErrAttachmentUpload
		}

		nomination.FileUploaded = true
		nomination.FileName = attachment.FileName
		nomination.FileURL = fileURL
		nomination.FileSize = attachment.Size
		nomination.FileMimeType = attachment.ContentType
	}

	logID, err := s.nominationRepo.Create(ctx, nomination)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost the race after uploading; don't leave an orphaned object.
			if nomination.FileUploaded {
				if delErr := s.fileStorage.Delete(ctx, nomination.FileURL); delErr != nil {
					log.Printf("ERROR: Failed to clean up orphaned attachment %s: %v", nomination.FileURL, delErr)
				}
			}
			return nil, ErrDuplicateSubmission
		}
		return nil, err
	}

	return &SubmissionResult{
		Message: "Registration submitted successfully!",
		Data: SubmissionData{
			SubmissionInput: input,
			FileUploaded:    nomination.FileUploaded,
			FileName:        nomination.FileName,
			FileURL:         nomination.FileURL,
		},
		Status: "success",
		LogID:  logID.Hex(),
	}, nil
}

// CheckRegistration reports whether the user has already submitted.
func (s *nominationService) CheckRegistration(ctx context.Context, userID string) (*RegistrationCheck, error) {
	nomination, err := s.nominationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &RegistrationCheck{
				HasRegistered: false,
				Message:       "User has not registered yet",
			}, nil
		}
		return nil, err
	}

	createdAt := nomination.CreatedAt
	return &RegistrationCheck{
		HasRegistered:    true,
		Status:           nomination.Status,
		RegistrationDate: &createdAt,
		Message:          "User has already registered",
		Data: &RegistrationSummary{
			StudentName: nomination.StudentName,
			Class:       nomination.Class,
			ExamName:    nomination.ExamName,
			Year:        nomination.Year,
			Status:      nomination.Status,
		},
	}, nil
}
