package labeling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/errs"
	"photolabel/internal/ports"
)

// GetNextTask picks the next image for userID and locks it, in strict
// priority order:
//
//  1. an image sent back to this user for revision (qa_status review)
//  2. an image this user already holds in progress (resume after a refresh
//     or crash, returned with its lock untouched)
//  3. the next unlabeled image of the user's current property, so one
//     worker walks a whole property before moving on
//  4. the oldest unlabeled image of a property no other worker holds;
//     claiming it records the property on the user
//
// Returns nil with a nil error when nothing is available inside the scan
// window. The whole selection runs in one transaction and is retried when a
// concurrent worker wins a race for the same image or property.
func (s *Service) GetNextTask(ctx context.Context, userID string) (*ports.Image, error) {
	if userID == "" {
		return nil, errs.Wrap(domain.ErrUserNotFound, "user id is required")
	}

	var picked *ports.Image
	err := s.runInTx(ctx, "get next task", func(txCtx context.Context) error {
		picked = nil
		expiresAt := time.Now().UTC().Add(s.opts.LockWindow)

		if img, ok, err := s.repo.FindReviewImage(txCtx, userID); err != nil {
			return err
		} else if ok {
			if err := s.repo.LockImage(txCtx, img.ImageID, userID, expiresAt, img.Version); err != nil {
				return err
			}
			picked = lockedCopy(img, userID, expiresAt)
			return nil
		}

		// Resume is read-only: the existing lock is returned as is, so a
		// page reload never contends with other writers.
		if img, ok, err := s.repo.FindInProgressImage(txCtx, userID); err != nil {
			return err
		} else if ok {
			resumed := img
			picked = &resumed
			return nil
		}

		if err := s.repo.EnsureUser(txCtx, userID); err != nil {
			return err
		}
		user, err := s.repo.GetUser(txCtx, userID)
		if err != nil {
			return err
		}
		if !user.Enabled {
			return fmt.Errorf("get next task for %s: %w", userID, domain.ErrUserDisabled)
		}

		candidates, err := s.repo.ListUnlabeledOldest(txCtx, s.opts.ClaimScanWindow)
		if err != nil {
			return err
		}

		if user.CurrentPropertyID != nil {
			for _, img := range candidates {
				if img.PropertyID == nil || *img.PropertyID != *user.CurrentPropertyID {
					continue
				}
				if err := s.repo.LockImage(txCtx, img.ImageID, userID, expiresAt, img.Version); err != nil {
					return err
				}
				picked = lockedCopy(img, userID, expiresAt)
				return nil
			}
			// The property is fully labeled or fell out of the window.
			// Release it and fall through to claiming a fresh one.
			if err := s.repo.SetCurrentProperty(txCtx, userID, nil, user.Version); err != nil {
				return err
			}
			user.Version++
			user.CurrentPropertyID = nil
		}

		for _, img := range candidates {
			// Images without a property are left for manual assignment.
			if img.PropertyID == nil {
				continue
			}
			held, err := s.repo.PropertyHeldByOther(txCtx, *img.PropertyID, userID)
			if err != nil {
				return err
			}
			if held {
				continue
			}
			if err := s.repo.SetCurrentProperty(txCtx, userID, img.PropertyID, user.Version); err != nil {
				return err
			}
			user.Version++
			if err := s.repo.LockImage(txCtx, img.ImageID, userID, expiresAt, img.Version); err != nil {
				return err
			}
			picked = lockedCopy(img, userID, expiresAt)
			return nil
		}

		logging.Info(txCtx, "no claimable work in scan window",
			slog.String("user", userID), slog.Int("window", s.opts.ClaimScanWindow))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return picked, nil
}

func lockedCopy(img ports.Image, userID string, expiresAt time.Time) *ports.Image {
	out := img
	out.Status = domain.StatusInProgress
	out.AssignedTo = &userID
	out.TaskExpiresAt = &expiresAt
	out.Version = img.Version + 1
	return &out
}
