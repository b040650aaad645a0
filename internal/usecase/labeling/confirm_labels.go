package labeling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/ports"
)

// ConfirmLabels marks an image QA-confirmed on behalf of adminID and moves
// the labeler's counters (confirmed up, to-review down) in the same
// transaction, so repeated confirms cannot double count. Confirming a
// missing or already confirmed image is a no-op; an image without a label
// row is still confirmed, just with no counters to move. Only admins
// confirm.
func (s *Service) ConfirmLabels(ctx context.Context, adminID, imageID string) error {
	return s.runInTx(ctx, "confirm labels", func(txCtx context.Context) error {
		admin, err := s.repo.GetUser(txCtx, adminID)
		if err != nil {
			return err
		}
		if !admin.Role.IsAdmin() {
			return fmt.Errorf("confirm labels as %s: %w", adminID, domain.ErrPermissionDenied)
		}

		img, err := s.repo.GetImage(txCtx, imageID)
		if errors.Is(err, domain.ErrImageNotFound) {
			logging.Warn(txCtx, "confirm on missing image ignored", slog.String("image", imageID))
			return nil
		}
		if err != nil {
			return err
		}
		if img.QAStatus == domain.QAConfirmed {
			return nil
		}

		label, err := s.repo.GetLabel(txCtx, imageID)
		hasLabel := err == nil
		if err != nil && !errors.Is(err, domain.ErrLabelNotFound) {
			return err
		}

		if err := s.repo.ConfirmImage(txCtx, imageID, adminID, img.Version); err != nil {
			return err
		}
		if !hasLabel {
			// An image can be confirmed with no label on record, after a
			// wipe for instance. There is no labeler to credit then.
			logging.Warn(txCtx, "confirm without label", slog.String("image", imageID))
			return nil
		}
		return s.repo.AddUserCounters(txCtx, label.LabeledBy, ports.CounterDeltas{
			Confirmed: 1,
			ToReview:  -1,
		})
	})
}
