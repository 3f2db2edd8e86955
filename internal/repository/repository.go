package repository

import (
	"context"
	"time"

	"github.com/MiteshDarda/pw-genius/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// NominationFilter holds the optional admin listing predicates.
// Zero values mean "not filtered"; set predicates combine with AND.
type NominationFilter struct {
	Search string        // studentName substring, case-insensitive
	Class  string        // exact match
	Exam   string        // examName substring, case-insensitive
	Status domain.Status // exact match
}

// StatusPatch is the only mutation applied to a nomination after creation.
// Remarks is a pointer so "not supplied" (keep existing) is distinguishable
// from "supplied but empty". OnlyFrom, when non-empty, restricts bulk updates
// to records currently in one of the listed statuses; nil means unrestricted.
type StatusPatch struct {
	Status   domain.Status
	Remarks  *string
	OnlyFrom []domain.Status
}

// BulkUpdateResult reports the outcome of a multi-id status update.
type BulkUpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// FieldCount is one bucket of a group-by aggregation.
type FieldCount struct {
	Value string `bson:"_id" json:"value"`
	Count int64  `bson:"count" json:"count"`
}

// NominationRepository defines the interface for nomination persistence.
type NominationRepository interface {
	// Create inserts a new record, assigning ID and timestamps.
	// A second record for the same userId fails with ErrDuplicateKey
	// (unique index on userId).
	Create(ctx context.Context, nomination *domain.Nomination) (primitive.ObjectID, error)

	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Nomination, error)

	// GetByUserID returns ErrNotFound when the user has not submitted;
	// callers treat that as a meaningful result, not a failure.
	GetByUserID(ctx context.Context, userID string) (*domain.Nomination, error)

	Find(ctx context.Context, filter NominationFilter) ([]domain.Nomination, error)
	Count(ctx context.Context, filter NominationFilter) (int64, error)

	// UpdateStatus applies the patch to one record, refreshes updatedAt and
	// returns the updated document, or ErrNotFound if the id does not exist.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, patch StatusPatch) (*domain.Nomination, error)

	// UpdateStatusBulk applies the patch to every existing id in the set.
	// Missing ids are skipped silently; only the counts reflect them.
	UpdateStatusBulk(ctx context.Context, ids []primitive.ObjectID, patch StatusPatch) (BulkUpdateResult, error)

	// ExistingIDs returns the subset of ids that have a record. Used by the
	// strict bulk mode to report unmatched ids.
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)

	Delete(ctx context.Context, id primitive.ObjectID) error

	// Statistics support.
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountByClass(ctx context.Context) ([]FieldCount, error) // sorted by class label ascending
	CountByExam(ctx context.Context) ([]FieldCount, error)  // sorted by count descending
}
