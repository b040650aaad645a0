package labeling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/ports"
)

// ListFlaggedImages returns flagged images, optionally narrowed to one
// assignee.
func (s *Service) ListFlaggedImages(ctx context.Context, assignedTo string, limit int) ([]ports.Image, error) {
	return s.repo.ListFlagged(ctx, assignedTo, limit)
}

// UnflagImages clears the flag on the given images. Missing images are
// skipped and reported in the returned count of actually unflagged ones.
func (s *Service) UnflagImages(ctx context.Context, imageIDs []string) (int, error) {
	cleared := 0
	for _, id := range imageIDs {
		err := s.repo.SetImageFlag(ctx, id, false)
		if errors.Is(err, domain.ErrImageNotFound) {
			continue
		}
		if err != nil {
			return cleared, err
		}
		cleared++
	}
	logging.Info(ctx, "images unflagged", slog.Int("count", cleared))
	return cleared, nil
}

// RetireImage takes an image out of circulation so it is never assigned
// again. With wipe the existing label and revisions are removed first;
// without it the label stays readable for audits.
func (s *Service) RetireImage(ctx context.Context, imageID string, wipe bool) error {
	if wipe {
		if err := s.WipeImageLabels(ctx, imageID); err != nil {
			return err
		}
	}
	return s.runInTx(ctx, "retire image", func(txCtx context.Context) error {
		return s.repo.RetireImage(txCtx, imageID)
	})
}

// ResetQA moves an image back to QA pending, clearing the confirmation or
// review-request fields. The labeler keeps the task history; counters are
// deliberately untouched, recount reconciles them when needed.
func (s *Service) ResetQA(ctx context.Context, imageID string) error {
	return s.runInTx(ctx, "reset qa", func(txCtx context.Context) error {
		label, err := s.repo.GetLabel(txCtx, imageID)
		if err != nil {
			return err
		}
		return s.repo.ResetImageQA(txCtx, imageID, label.LabeledBy)
	})
}

// AssignTask hand-assigns an image to a labeler, bypassing the normal claim
// flow. The standard lock window applies so an abandoned hand-assignment
// expires like any other.
func (s *Service) AssignTask(ctx context.Context, imageID, labelerID string) error {
	return s.runInTx(ctx, "assign task", func(txCtx context.Context) error {
		if err := s.repo.EnsureUser(txCtx, labelerID); err != nil {
			return err
		}
		img, err := s.repo.GetImage(txCtx, imageID)
		if err != nil {
			return err
		}
		if img.Status == domain.StatusRemoved {
			return fmt.Errorf("assign task: image %s is retired: %w", imageID, domain.ErrImageNotFound)
		}
		expiresAt := time.Now().UTC().Add(s.opts.LockWindow)
		return s.repo.AssignImage(txCtx, imageID, labelerID, expiresAt)
	})
}

// QAListItem pairs an image with the user credited for its label. For
// confirmed images the assignment fields are long cleared, so attribution
// comes from the label row.
type QAListItem struct {
	Image     ports.Image
	LabeledBy string
}

// ListImagesByQAStatus returns images in one QA state with labeler
// attribution resolved, for building review queues.
func (s *Service) ListImagesByQAStatus(ctx context.Context, qa domain.QAStatus, assignedTo string, limit int) ([]QAListItem, error) {
	images, err := s.repo.ListByQAStatus(ctx, qa, assignedTo, limit)
	if err != nil {
		return nil, err
	}

	items := make([]QAListItem, 0, len(images))
	for _, img := range images {
		item := QAListItem{Image: img}
		label, err := s.repo.GetLabel(ctx, img.ImageID)
		if err == nil {
			item.LabeledBy = label.LabeledBy
		} else if !errors.Is(err, domain.ErrLabelNotFound) {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ListResolverFailures surfaces images whose storage pointer repeatedly
// failed to resolve, worst first.
func (s *Service) ListResolverFailures(ctx context.Context, limit int) ([]ports.Image, error) {
	return s.repo.ListResolverFailures(ctx, limit)
}
