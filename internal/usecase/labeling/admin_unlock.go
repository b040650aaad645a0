package labeling

import (
	"context"
	"log/slog"
	"time"

	"photolabel/internal/bootstrap/logging"
	"photolabel/internal/ports"
)

// ListLockedTasks returns in-progress images, optionally narrowed to one
// user or to locks whose expiry is already past.
func (s *Service) ListLockedTasks(ctx context.Context, assignedTo string, expiredOnly bool) ([]ports.Image, error) {
	filter := ports.InProgressFilter{AssignedTo: assignedTo}
	if expiredOnly {
		now := time.Now().UTC()
		filter.ExpiredBefore = &now
	}
	return s.repo.ListInProgress(ctx, filter)
}

// UnlockTasks force-releases the given images back to unlabeled and clears
// the QA assignment fields. Every user who held one of them also loses
// their current-property claim so their next request starts a fresh scan
// instead of resuming a property they no longer hold.
func (s *Service) UnlockTasks(ctx context.Context, imageIDs []string) (int, error) {
	unlocked := 0
	err := s.runInTx(ctx, "unlock tasks", func(txCtx context.Context) error {
		unlocked = 0
		affected := make(map[string]struct{})

		for _, id := range imageIDs {
			img, err := s.repo.GetImage(txCtx, id)
			if err != nil {
				return err
			}
			if img.AssignedTo != nil {
				affected[*img.AssignedTo] = struct{}{}
			}
			if err := s.repo.UnlockImage(txCtx, id); err != nil {
				return err
			}
			unlocked++
		}

		for username := range affected {
			if err := s.repo.ClearCurrentProperty(txCtx, username); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logging.Info(ctx, "tasks unlocked", slog.Int("count", unlocked))
	return unlocked, nil
}

// UnlockExpiredTasks releases every lock past its deadline.
func (s *Service) UnlockExpiredTasks(ctx context.Context) (int, error) {
	images, err := s.ListLockedTasks(ctx, "", true)
	if err != nil {
		return 0, err
	}
	if len(images) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ImageID)
	}
	return s.UnlockTasks(ctx, ids)
}
