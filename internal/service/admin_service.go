package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MiteshDarda/pw-genius/internal/domain"
	"github.com/MiteshDarda/pw-genius/internal/repository"
	"github.com/MiteshDarda/pw-genius/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NominationListItem is the row shape of the admin listing. Parent names and
// file size/mime are withheld here and only returned by the detail view.
type NominationListItem struct {
	ID           string        `json:"id"`
	StudentName  string        `json:"studentName"`
	Class        string        `json:"class"`
	Exam         string        `json:"exam"`
	Status       domain.Status `json:"status"`
	Year         string        `json:"year"`
	Performance  string        `json:"performance"`
	Reason       string        `json:"reason"`
	Dream        string        `json:"dream"`
	Remarks      string        `json:"remarks,omitempty"`
	FileUploaded bool          `json:"fileUploaded"`
	FileName     string        `json:"fileName,omitempty"`
	FileURL      string        `json:"fileUrl,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NominationList is the admin listing response.
type NominationList struct {
	Nominations []NominationListItem `json:"nominations"`
	Total       int                  `json:"total"`
}

// NominationDetail is the full record returned by the detail views.
type NominationDetail struct {
	NominationListItem
	FileSize     int64  `json:"fileSize,omitempty"`
	FileMimeType string `json:"fileMimeType,omitempty"`
	FatherName   string `json:"fatherName"`
	MotherName   string `json:"motherName"`
}

// StatusSummary is the compact shape returned after a status transition.
type StatusSummary struct {
	ID          string        `json:"id"`
	StudentName string        `json:"studentName"`
	Status      domain.Status `json:"status"`
	Remarks     string        `json:"remarks,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// StatusUpdateResult is the response of a single status transition.
type StatusUpdateResult struct {
	Message    string        `json:"message"`
	Nomination StatusSummary `json:"nomination"`
}

// BulkStatusResult reports a bulk transition. Ids without a record are
// absorbed into the counts; UnmatchedIDs is populated only in strict mode.
type BulkStatusResult struct {
	Message        string   `json:"message"`
	UpdatedCount   int64    `json:"updatedCount"`
	TotalRequested int      `json:"totalRequested"`
	UnmatchedIDs   []string `json:"unmatchedIds,omitempty"`
}

// StatusBreakdown holds per-status totals for the statistics view.
type StatusBreakdown struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Statistics is the admin dashboard aggregate.
type Statistics struct {
	TotalNominations  int64                   `json:"totalNominations"`
	StatusBreakdown   StatusBreakdown         `json:"statusBreakdown"`
	ClassDistribution []repository.FieldCount `json:"classDistribution"`
	ExamDistribution  []repository.FieldCount `json:"examDistribution"`
	RecentNominations int64                   `json:"recentNominations"`
	LastUpdated       time.Time               `json:"lastUpdated"`
}

// AttachmentDownload carries the attachment bytes plus the metadata the
// transport layer needs to frame the response.
type AttachmentDownload struct {
	FileName     string
	FileSize     int64
	FileMimeType string
	StudentName  string
	Content      []byte
}

// AdminService exposes the review-console operations over the nomination store.
type AdminService interface {
	ListNominations(ctx context.Context, filter repository.NominationFilter) (*NominationList, error)
	GetNominationDetail(ctx context.Context, id primitive.ObjectID) (*NominationDetail, error)
	GetUserNomination(ctx context.Context, userID string) (*NominationDetail, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.Status, remarks *string) (*StatusUpdateResult, error)
	BulkSetStatus(ctx context.Context, ids []primitive.ObjectID, status domain.Status, remarks *string, strict bool) (*BulkStatusResult, error)
	GetStatistics(ctx context.Context) (*Statistics, error)
	DownloadAttachment(ctx context.Context, id primitive.ObjectID) (*AttachmentDownload, error)
	DeleteNomination(ctx context.Context, id primitive.ObjectID) error
}

// adminService implements the AdminService interface.
type adminService struct {
	nominationRepo repository.NominationRepository
	fileStorage    storage.FileStorage
	policy         domain.TransitionPolicy
}

// NewAdminService creates a new instance of adminService.
func NewAdminService(nominationRepo repository.NominationRepository, fileStorage storage.FileStorage, policy domain.TransitionPolicy) AdminService {
	if policy == "" {
		policy = domain.PolicyPermissive
	}
	return &adminService{
		nominationRepo: nominationRepo,
		fileStorage:    fileStorage,
		policy:         policy,
	}
}

func toListItem(n *domain.Nomination) NominationListItem {
	return NominationListItem{
		ID:           n.ID.Hex(),
		StudentName:  n.StudentName,
		Class:        n.Class,
		Exam:         n.ExamName,
		Status:       n.Status,
		Year:         n.Year,
		Performance:  n.Performance,
		Reason:       n.Reason,
		Dream:        n.Dream,
		Remarks:      n.Remarks,
		FileUploaded: n.FileUploaded,
		FileName:     n.FileName,
		FileURL:      n.FileURL,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

func toDetail(n *domain.Nomination) *NominationDetail {
	return &NominationDetail{
		NominationListItem: toListItem(n),
		FileSize:           n.FileSize,
		FileMimeType:       n.FileMimeType,
		FatherName:         n.FatherName,
		MotherName:         n.MotherName,
	}
}

// ListNominations returns the filtered set plus its count. An empty filter
// returns everything.
func (s *adminService) ListNominations(ctx context.Context, filter repository.NominationFilter) (*NominationList, error) {
	nominations, err := s.nominationRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]NominationListItem, 0, len(nominations))
	for i := range nominations {
		items = append(items, toListItem(&nominations[i]))
	}

	return &NominationList{
		Nominations: items,
		Total:       len(items),
	}, nil
}

// GetNominationDetail returns the full record including file metadata.
func (s *adminService) GetNominationDetail(ctx context.Context, id primitive.ObjectID) (*NominationDetail, error) {
	nomination, err := s.nominationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNominationNotFound
		}
		return nil, err
	}
	return toDetail(nomination), nil
}

// GetUserNomination is the per-user admin detail view.
func (s *adminService) GetUserNomination(ctx context.Context, userID string) (*NominationDetail, error) {
	nomination, err := s.nominationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNominationNotFound
		}
		return nil, err
	}
	return toDetail(nomination), nil
}

// SetStatus transitions one nomination. Remarks are replaced only when
// supplied; a nil remarks pointer keeps whatever was there.
func (s *adminService) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.Status, remarks *string) (*StatusUpdateResult, error) {
	if !status.IsAssignable() {
		return nil, ErrInvalidStatus
	}

	nomination, err := s.nominationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNominationNotFound
		}
		return nil, err
	}

	if !s.policy.CanTransition(nomination.Status, status) {
		return nil, ErrTransitionNotAllowed
	}

	updated, err := s.nominationRepo.UpdateStatus(ctx, id, repository.StatusPatch{
		Status:  status,
		Remarks: remarks,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNominationNotFound
		}
		return nil, err
	}

	return &StatusUpdateResult{
		Message: "Nomination status updated successfully",
		Nomination: StatusSummary{
			ID:          updated.ID.Hex(),
			StudentName: updated.StudentName,
			Status:      updated.Status,
			Remarks:     updated.Remarks,
			UpdatedAt:   updated.UpdatedAt,
		},
	}, nil
}

// BulkSetStatus applies the same transition to every existing id. Missing ids
// are absorbed into the counts; with strict=true they are also listed so the
// caller can tell "didn't exist" apart from "already in that status".
func (s *adminService) BulkSetStatus(ctx context.Context, ids []primitive.ObjectID, status domain.Status, remarks *string, strict bool) (*BulkStatusResult, error) {
	if !status.IsAssignable() {
		return nil, ErrInvalidStatus
	}
	if len(ids) == 0 {
		return nil, errors.New("at least one nomination id is required")
	}

	var unmatched []string
	if strict {
		existing, err := s.nominationRepo.ExistingIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		existingSet := make(map[primitive.ObjectID]struct{}, len(existing))
		for _, id := range existing {
			existingSet[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := existingSet[id]; !ok {
				unmatched = append(unmatched, id.Hex())
			}
		}
	}

	result, err := s.nominationRepo.UpdateStatusBulk(ctx, ids, repository.StatusPatch{
		Status:   status,
		Remarks:  remarks,
		OnlyFrom: s.policy.AllowedSources(status),
	})
	if err != nil {
		return nil, err
	}

	return &BulkStatusResult{
		Message:        fmt.Sprintf("Successfully updated %d nominations", result.ModifiedCount),
		UpdatedCount:   result.ModifiedCount,
		TotalRequested: len(ids),
		UnmatchedIDs:   unmatched,
	}, nil
}

// GetStatistics computes the admin dashboard aggregates at call time.
func (s *adminService) GetStatistics(ctx context.Context) (*Statistics, error) {
	total, err := s.nominationRepo.Count(ctx, repository.NominationFilter{})
	if err != nil {
		return nil, err
	}

	breakdown := StatusBreakdown{}
	for _, entry := range []struct {
		status domain.Status
		target *int64
	}{
		{domain.StatusPending, &breakdown.Pending},
		{domain.StatusApproved, &breakdown.Approved},
		{domain.StatusRejected, &breakdown.Rejected},
	} {
		count, err := s.nominationRepo.Count(ctx, repository.NominationFilter{Status: entry.status})
		if err != nil {
			return nil, err
		}
		*entry.target = count
	}

	classDist, err := s.nominationRepo.CountByClass(ctx)
	if err != nil {
		return nil, err
	}

	examDist, err := s.nominationRepo.CountByExam(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recent, err := s.nominationRepo.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	return &Statistics{
		TotalNominations:  total,
		StatusBreakdown:   breakdown,
		ClassDistribution: classDist,
		ExamDistribution:  examDist,
		RecentNominations: recent,
		LastUpdated:       now,
	}, nil
}

// DownloadAttachment fetches the stored attachment for a nomination.
func (s *adminService) DownloadAttachment(ctx context.Context, id primitive.ObjectID) (*AttachmentDownload, error) {
	nomination, err := s.nominationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNominationNotFound
		}
		return nil, err
	}

	if !nomination.HasAttachment() {
		return nil, ErrNoAttachment
	}

	content, err := s.fileStorage.Download(ctx, nomination.FileURL)
	if err != nil {
		log.Printf("ERROR: Attachment download failed for nomination %s: %v", id.Hex(), err)
		return nil, ErrAttachmentDownload
	}

	return &AttachmentDownload{
		FileName:     nomination.FileName,
		FileSize:     nomination.FileSize,
		FileMimeType: nomination.FileMimeType,
		StudentName:  nomination.StudentName,
		Content:      content,
	}, nil
}

// DeleteNomination removes the record and, best-effort, its stored object.
func (s *adminService) DeleteNomination(ctx context.Context, id primitive.ObjectID) error {
	nomination, err := s.nominationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNominationNotFound
		}
		return err
	}

	if err := s.nominationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNominationNotFound
		}
		return err
	}

	if nomination.HasAttachment() {
		if err := s.fileStorage.Delete(ctx, nomination.FileURL); err != nil {
			// The record is gone; an orphaned object is acceptable.
			log.Printf("ERROR: Failed to delete attachment for nomination %s: %v", id.Hex(), err)
		}
	}

	return nil
}
