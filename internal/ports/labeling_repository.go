package ports

import (
	"context"
	"time"

	"photolabel/internal/domain/labeling"
)

// Image is one photo document. AssignedTo plus StatusInProgress means a
// worker holds the task lock; TaskExpiresAt is the reclaim deadline.
type Image struct {
	ImageID                  string
	Status                   labeling.ImageStatus
	QAStatus                 labeling.QAStatus
	AssignedTo               *string
	PropertyID               *string
	BBURL                    string
	ImageURL                 string
	TimestampUploaded        *time.Time
	TimestampAssigned        *time.Time
	TimestampLabeled         *time.Time
	TimestampConfirmed       *time.Time
	TimestampReviewRequested *time.Time
	TaskExpiresAt            *time.Time
	Flagged                  bool
	QAFeedback               *string
	ConfirmedBy              *string
	ReviewRequestedBy        *string
	ResolverFailureCount     int64
	LastResolverError        *string
	Version                  uint64
}

// Label is the current annotation document for one image, 1:1 by image id.
// PayloadJSON holds the full structured payload; LabeledBy and Flagged are
// denormalized for querying.
type Label struct {
	ImageID          string
	LabeledBy        string
	Flagged          bool
	SchemaVersion    int
	PayloadJSON      string
	TimestampCreated time.Time
	UpdatedAt        time.Time
}

// Revision is an immutable snapshot of a label payload taken just before it
// was overwritten.
type Revision struct {
	RevisionID  string
	ImageID     string
	PayloadJSON string
	EditedBy    string
	EditedAt    time.Time
}

// User is one worker or admin account. The counters are denormalized
// aggregates maintained by the persistence engine and reconcilable by the
// recount admin operation.
type User struct {
	Username             string
	Role                 labeling.Role
	Enabled              bool
	PasswordHash         string
	CurrentPropertyID    *string
	ImagesConfirmed      int64
	ImagesToReview       int64
	ImagesProcessed      int64
	LastLabeledImageID   *string
	TimestampLastLabeled *time.Time
	Version              uint64
}

// InProgressFilter narrows ListInProgress for the unlock tooling.
type InProgressFilter struct {
	AssignedTo    string
	ExpiredBefore *time.Time
}

// CounterDeltas are applied atomically in one update.
type CounterDeltas struct {
	Confirmed int64
	ToReview  int64
	Processed int64
}

// LabelingReadRepository is the query side. All methods honor a transaction
// handle carried in context and otherwise run on the base connection.
type LabelingReadRepository interface {
	GetImage(ctx context.Context, imageID string) (Image, error)
	FindReviewImage(ctx context.Context, userID string) (Image, bool, error)
	FindInProgressImage(ctx context.Context, userID string) (Image, bool, error)
	ListUnlabeledOldest(ctx context.Context, limit int) ([]Image, error)
	ListInProgress(ctx context.Context, filter InProgressFilter) ([]Image, error)
	ListFlagged(ctx context.Context, assignedTo string, limit int) ([]Image, error)
	ListByQAStatus(ctx context.Context, qa labeling.QAStatus, assignedTo string, limit int) ([]Image, error)
	ListResolverFailures(ctx context.Context, limit int) ([]Image, error)

	GetLabel(ctx context.Context, imageID string) (Label, error)
	ListLabelsByUser(ctx context.Context, userID string, limit int) ([]Label, error)
	ListLabelsByUserPage(ctx context.Context, userID string, offset, limit int) ([]Label, error)
	ListLabelsPage(ctx context.Context, offset, limit int) ([]Label, error)
	ListRevisions(ctx context.Context, imageID string) ([]Revision, error)

	GetUser(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	PropertyHeldByOther(ctx context.Context, propertyID, excludeUser string) (bool, error)
}

// LabelingRepository adds the mutation side. Methods taking expectedVersion
// implement optimistic locking: they update WHERE version = expectedVersion
// and return labeling.ErrConflict when the row moved underneath the caller.
type LabelingRepository interface {
	LabelingReadRepository

	CreateImage(ctx context.Context, img Image) error
	LockImage(ctx context.Context, imageID, userID string, expiresAt time.Time, expectedVersion uint64) error
	ReleaseImage(ctx context.Context, imageID string) error
	MarkImageLabeled(ctx context.Context, imageID string, flagged bool, expectedVersion uint64) error
	ConfirmImage(ctx context.Context, imageID, adminID string, expectedVersion uint64) error
	SetImageReview(ctx context.Context, imageID, labelerID, adminID, feedback string) error
	ResetImageQA(ctx context.Context, imageID, labelerID string) error
	AssignImage(ctx context.Context, imageID, labelerID string, expiresAt time.Time) error
	RetireImage(ctx context.Context, imageID string) error
	UnlockImage(ctx context.Context, imageID string) error
	SetImageFlag(ctx context.Context, imageID string, flagged bool) error
	ResetImageForWipe(ctx context.Context, imageID string) error
	RecordResolverFailure(ctx context.Context, imageID, message string) error

	CreateLabel(ctx context.Context, label Label) error
	UpdateLabel(ctx context.Context, label Label) error
	AppendRevision(ctx context.Context, rev Revision) error
	DeleteLabel(ctx context.Context, imageID string) error
	ReassignLabels(ctx context.Context, fromUser, toUser string, preserveOriginal bool) (int64, error)

	EnsureUser(ctx context.Context, username string) error
	UpsertUserAccount(ctx context.Context, username string, role labeling.Role, passwordHash string, enabled bool) error
	SetUserEnabled(ctx context.Context, username string, enabled bool) error
	SetCurrentProperty(ctx context.Context, username string, propertyID *string, expectedVersion uint64) error
	ClearCurrentProperty(ctx context.Context, username string) error
	AddUserCounters(ctx context.Context, username string, deltas CounterDeltas) error
	SetUserCounters(ctx context.Context, username string, confirmed, toReview, processed int64) error
	TouchUserLabeled(ctx context.Context, username, imageID string) error
}
