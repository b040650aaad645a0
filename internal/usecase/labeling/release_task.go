package labeling

import (
	"context"
	"errors"

	domain "photolabel/internal/domain/labeling"
)

// ReleaseTask hands an in-progress image back to the pool: the lock is
// cleared and the image becomes unlabeled again. Calls for images the user
// does not hold, or that are not in progress, are silent no-ops so clients
// can always release on navigation without first checking state.
func (s *Service) ReleaseTask(ctx context.Context, userID, imageID string) error {
	return s.runInTx(ctx, "release task", func(txCtx context.Context) error {
		img, err := s.repo.GetImage(txCtx, imageID)
		if errors.Is(err, domain.ErrImageNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if img.Status != domain.StatusInProgress {
			return nil
		}
		if img.AssignedTo == nil || *img.AssignedTo != userID {
			return nil
		}
		return s.repo.ReleaseImage(txCtx, imageID)
	})
}
