package labeling

import (
	"context"
	"errors"
	"fmt"

	domain "photolabel/internal/domain/labeling"
)

// RequestRevision sends a labeled image back to a labeler: qa_status moves
// to review, the image is reassigned, and the feedback text is stored on
// the image. An empty labelerID routes the image back to whoever authored
// its label; passing one explicitly lets an admin redirect the revision,
// even for an image whose label row is gone. Counters do not move; the
// to-review slot stays open until the image is eventually confirmed. Only
// admins request revisions.
func (s *Service) RequestRevision(ctx context.Context, adminID, imageID, labelerID, feedback string) error {
	return s.runInTx(ctx, "request revision", func(txCtx context.Context) error {
		admin, err := s.repo.GetUser(txCtx, adminID)
		if err != nil {
			return err
		}
		if !admin.Role.IsAdmin() {
			return fmt.Errorf("request revision as %s: %w", adminID, domain.ErrPermissionDenied)
		}

		if labelerID == "" {
			label, err := s.repo.GetLabel(txCtx, imageID)
			if err != nil {
				if errors.Is(err, domain.ErrLabelNotFound) {
					return fmt.Errorf("request revision for %s: no labeler to route to: %w", imageID, err)
				}
				return err
			}
			labelerID = label.LabeledBy
		}
		return s.repo.SetImageReview(txCtx, imageID, labelerID, adminID, feedback)
	})
}
