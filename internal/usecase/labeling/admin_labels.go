package labeling

import (
	"context"
	"errors"
	"log/slog"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
)

// MergeLabels reassigns every label credited to fromUser over to toUser,
// for folding a duplicate or renamed account into its canonical one. With
// preserveOriginal the old attribution is kept on each label so the merge
// stays auditable. Both accounts get an exact recount afterwards.
func (s *Service) MergeLabels(ctx context.Context, fromUser, toUser string, preserveOriginal bool) (int64, error) {
	if fromUser == toUser {
		return 0, nil
	}

	var moved int64
	err := s.runInTx(ctx, "merge labels", func(txCtx context.Context) error {
		if _, err := s.repo.GetUser(txCtx, fromUser); err != nil {
			return err
		}
		if err := s.repo.EnsureUser(txCtx, toUser); err != nil {
			return err
		}
		n, err := s.repo.ReassignLabels(txCtx, fromUser, toUser, preserveOriginal)
		if err != nil {
			return err
		}
		moved = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	if _, err := s.RecountUserCounters(ctx, fromUser); err != nil {
		return moved, err
	}
	if _, err := s.RecountUserCounters(ctx, toUser); err != nil {
		return moved, err
	}
	logging.Info(ctx, "labels merged",
		slog.String("from", fromUser), slog.String("to", toUser), slog.Int64("moved", moved))
	return moved, nil
}

// WipeImageLabels deletes the label and its revision trail for one image
// and resets the image to unlabeled with its QA state cleared. A missing
// image still gets its orphan label removed.
func (s *Service) WipeImageLabels(ctx context.Context, imageID string) error {
	err := s.runInTx(ctx, "wipe image labels", func(txCtx context.Context) error {
		if err := s.repo.DeleteLabel(txCtx, imageID); err != nil {
			return err
		}
		if err := s.repo.ResetImageForWipe(txCtx, imageID); err != nil && !errors.Is(err, domain.ErrImageNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.InvalidateImageURL(ctx, imageID)
}

// WipeUserLabels removes every label a user produced, resetting each image,
// then zeroes the user's counters.
func (s *Service) WipeUserLabels(ctx context.Context, username string) (int, error) {
	if _, err := s.repo.GetUser(ctx, username); err != nil {
		return 0, err
	}

	wiped := 0
	for {
		page, err := s.repo.ListLabelsByUserPage(ctx, username, 0, recountPageSize)
		if err != nil {
			return wiped, err
		}
		if len(page) == 0 {
			break
		}
		for _, l := range page {
			if err := s.WipeImageLabels(ctx, l.ImageID); err != nil {
				return wiped, err
			}
			wiped++
		}
	}

	if err := s.repo.SetUserCounters(ctx, username, 0, 0, 0); err != nil {
		return wiped, err
	}
	logging.Info(ctx, "user labels wiped", slog.String("user", username), slog.Int("count", wiped))
	return wiped, nil
}

// WipeAllLabels removes every label in the store and zeroes every user's
// counters. Destructive; the CLI gates it behind an explicit confirmation.
func (s *Service) WipeAllLabels(ctx context.Context) (int, error) {
	wiped := 0
	for {
		page, err := s.repo.ListLabelsPage(ctx, 0, recountPageSize)
		if err != nil {
			return wiped, err
		}
		if len(page) == 0 {
			break
		}
		for _, l := range page {
			if err := s.WipeImageLabels(ctx, l.ImageID); err != nil {
				return wiped, err
			}
			wiped++
		}
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return wiped, err
	}
	for _, u := range users {
		if err := s.repo.SetUserCounters(ctx, u.Username, 0, 0, 0); err != nil {
			return wiped, err
		}
	}
	logging.Info(ctx, "all labels wiped", slog.Int("count", wiped))
	return wiped, nil
}
