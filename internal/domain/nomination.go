package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status of a nomination in the review workflow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusError is reserved for submissions that failed mid-flight.
	// No service transition produces it today, but stored records may carry it.
	StatusError Status = "error"
)

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusError:
		return true
	}
	return false
}

// IsAssignable reports whether an admin may set s via the status endpoints.
// "error" is excluded: it is set only by the submission path, never by hand.
func (s Status) IsAssignable() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Nomination is the canonical record of one student nomination.
// Exactly one exists per submitting user (unique index on userId).
// The attachment itself lives in object storage; only its metadata is here.
type Nomination struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"userId"` // Unique per user
	StudentName string             `bson:"studentName" json:"studentName"`
	Class       string             `bson:"class" json:"class"`
	FatherName  string             `bson:"fatherName" json:"fatherName"`
	MotherName  string             `bson:"motherName" json:"motherName"`
	ExamName    string             `bson:"examName" json:"examName"`
	Performance string             `bson:"performance" json:"performance"`
	Year        string             `bson:"year" json:"year"`
	Reason      string             `bson:"reason" json:"reason"`
	Dream       string             `bson:"dream" json:"dream"`

	// Remarks is set by admins during status transitions, never by the nominee.
	Remarks string `bson:"remarks,omitempty" json:"remarks,omitempty"`

	Status Status `bson:"status" json:"status"`

	// Attachment metadata. FileUploaded=true implies FileURL resolves to a
	// stored object; false implies all file fields are absent.
	FileUploaded bool   `bson:"fileUploaded" json:"fileUploaded"`
	FileName     string `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileURL      string `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	FileSize     int64  `bson:"fileSize,omitempty" json:"fileSize,omitempty"`
	FileMimeType string `bson:"fileMimeType,omitempty" json:"fileMimeType,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasAttachment reports whether a downloadable object exists for this record.
func (n *Nomination) HasAttachment() bool {
	return n.FileUploaded && n.FileURL != ""
}

// TransitionPolicy decides which status transitions admins may perform.
// The admin UI describes approved/rejected as terminal while the original
// service accepted any transition; which one is intended is an integrator
// decision, so both behaviors are available.
type TransitionPolicy string

const (
	// PolicyPermissive allows any assignable target status at any time.
	PolicyPermissive TransitionPolicy = "permissive"
	// PolicyFinal treats approved and rejected as terminal states.
	PolicyFinal TransitionPolicy = "final"
)

// CanTransition reports whether the policy permits moving from -> to.
func (p TransitionPolicy) CanTransition(from, to Status) bool {
	if !to.IsAssignable() {
		return false
	}
	if p == PolicyFinal && (from == StatusApproved || from == StatusRejected) {
		return from == to
	}
	return true
}

// AllowedSources lists the statuses a record may currently hold for the
// transition to "to" to be permitted. A nil result means unrestricted.
// Bulk updates use this as a filter so ineligible records are skipped
// rather than failing the whole batch.
func (p TransitionPolicy) AllowedSources(to Status) []Status {
	if p != PolicyFinal {
		return nil
	}
	sources := []Status{StatusPending, StatusError}
	if to == StatusApproved || to == StatusRejected {
		sources = append(sources, to)
	}
	return sources
}
