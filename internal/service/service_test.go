package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/MiteshDarda/pw-genius/internal/domain"
	"github.com/MiteshDarda/pw-genius/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeNominationRepo is an in-memory NominationRepository with the same
// observable semantics as the mongo implementation.
type fakeNominationRepo struct {
	records map[primitive.ObjectID]*domain.Nomination
	order   []primitive.ObjectID

	createErr error
}

func newFakeNominationRepo() *fakeNominationRepo {
	return &fakeNominationRepo{records: map[primitive.ObjectID]*domain.Nomination{}}
}

func (r *fakeNominationRepo) Create(_ context.Context, nomination *domain.Nomination) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	for _, existing := range r.records {
		if existing.UserID == nomination.UserID {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	clone := *nomination
	clone.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	if clone.Status == "" {
		clone.Status = domain.StatusPending
	}
	r.records[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	nomination.ID = clone.ID
	return clone.ID, nil
}

func (r *fakeNominationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Nomination, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *fakeNominationRepo) GetByUserID(_ context.Context, userID string) (*domain.Nomination, error) {
	for _, id := range r.order {
		if r.records[id].UserID == userID {
			clone := *r.records[id]
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func matches(n *domain.Nomination, filter repository.NominationFilter) bool {
	if filter.Search != "" && !strings.Contains(strings.ToLower(n.StudentName), strings.ToLower(filter.Search)) {
		return false
	}
	if filter.Class != "" && n.Class != filter.Class {
		return false
	}
	if filter.Exam != "" && !strings.Contains(strings.ToLower(n.ExamName), strings.ToLower(filter.Exam)) {
		return false
	}
	if filter.Status != "" && n.Status != filter.Status {
		return false
	}
	return true
}

func (r *fakeNominationRepo) Find(_ context.Context, filter repository.NominationFilter) ([]domain.Nomination, error) {
	result := []domain.Nomination{}
	for _, id := range r.order {
		if matches(r.records[id], filter) {
			result = append(result, *r.records[id])
		}
	}
	return result, nil
}

func (r *fakeNominationRepo) Count(_ context.Context, filter repository.NominationFilter) (int64, error) {
	var count int64
	for _, record := range r.records {
		if matches(record, filter) {
			count++
		}
	}
	return count, nil
}

func applyPatch(record *domain.Nomination, patch repository.StatusPatch) {
	record.Status = patch.Status
	if patch.Remarks != nil {
		record.Remarks = *patch.Remarks
	}
	// updatedAt always changes, so every matched record counts as modified,
	// matching the mongo implementation.
	record.UpdatedAt = time.Now().UTC()
}

func (r *fakeNominationRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, patch repository.StatusPatch) (*domain.Nomination, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	applyPatch(record, patch)
	clone := *record
	return &clone, nil
}

func (r *fakeNominationRepo) UpdateStatusBulk(_ context.Context, ids []primitive.ObjectID, patch repository.StatusPatch) (repository.BulkUpdateResult, error) {
	result := repository.BulkUpdateResult{}
	for _, id := range ids {
		record, ok := r.records[id]
		if !ok {
			continue
		}
		if len(patch.OnlyFrom) > 0 {
			allowed := false
			for _, from := range patch.OnlyFrom {
				if record.Status == from {
					allowed = true
					break
				}
			}
			if !allowed {
				continue
			}
		}
		result.MatchedCount++
		result.ModifiedCount++
		applyPatch(record, patch)
	}
	return result, nil
}

func (r *fakeNominationRepo) ExistingIDs(_ context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	existing := []primitive.ObjectID{}
	for _, id := range ids {
		if _, ok := r.records[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func (r *fakeNominationRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.records, id)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeNominationRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, record := range r.records {
		if !record.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeNominationRepo) groupBy(field func(*domain.Nomination) string) []repository.FieldCount {
	buckets := map[string]int64{}
	for _, record := range r.records {
		buckets[field(record)]++
	}
	counts := make([]repository.FieldCount, 0, len(buckets))
	for value, count := range buckets {
		counts = append(counts, repository.FieldCount{Value: value, Count: count})
	}
	return counts
}

func (r *fakeNominationRepo) CountByClass(_ context.Context) ([]repository.FieldCount, error) {
	counts := r.groupBy(func(n *domain.Nomination) string { return n.Class })
	sort.Slice(counts, func(i, j int) bool { return counts[i].Value < counts[j].Value })
	return counts, nil
}

func (r *fakeNominationRepo) CountByExam(_ context.Context) ([]repository.FieldCount, error) {
	counts := r.groupBy(func(n *domain.Nomination) string { return n.ExamName })
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

// fakeStorage keeps uploaded objects in memory, keyed by the URL it returns.
type fakeStorage struct {
	objects map[string][]byte

	uploadErr   error
	downloadErr error
	deleted     []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, objectKey string, _ string, body io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://test-bucket.s3.us-west-2.amazonaws.com/%s", objectKey)
	s.objects[url] = data
	return url, nil
}

func (s *fakeStorage) Download(_ context.Context, fileURL string) ([]byte, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[fileURL]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *fakeStorage) Delete(_ context.Context, fileURL string) error {
	delete(s.objects, fileURL)
	s.deleted = append(s.deleted, fileURL)
	return nil
}

// Shared test helpers.

func testInput(userID string) SubmissionInput {
	return SubmissionInput{
		UserID:      userID,
		StudentName: "Ananya Sharma",
		Class:       "10",
		FatherName:  "Rakesh Sharma",
		MotherName:  "Priya Sharma",
		ExamName:    "Science Olympiad",
		Performance: "Rank 3",
		Year:        "2024",
		Reason:      "Outstanding performance at the national level",
		Dream:       "Become a research scientist",
	}
}

func zipAttachment(content []byte) *Attachment {
	return &Attachment{
		FileName:    "certificates.zip",
		ContentType: "application/zip",
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	}
}
