package labeling

// ImageStatus is the labeling lifecycle of an image.
type ImageStatus string

const (
	StatusUnlabeled  ImageStatus = "unlabeled"
	StatusInProgress ImageStatus = "in_progress"
	StatusLabeled    ImageStatus = "labeled"
	StatusRemoved    ImageStatus = "removed"
)

// QAStatus is the review lifecycle of a submitted label. An image that was
// never labeled has no QA status (empty string).
type QAStatus string

const (
	QANone      QAStatus = ""
	QAPending   QAStatus = "pending"
	QAReview    QAStatus = "review"
	QAConfirmed QAStatus = "confirmed"
)

// Role controls what a user may do. Admins can override the confirmed-image
// freeze and run QA actions.
type Role string

const (
	RoleLabeler  Role = "labeler"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// ValidRole reports whether s is a known role name.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleLabeler, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}
