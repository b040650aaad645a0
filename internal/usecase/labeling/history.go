package labeling

import (
	"context"
	"errors"
	"time"

	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/ports"
)

// HistoryItem is one entry of a labeler's recent work, newest first.
type HistoryItem struct {
	ImageID    string
	QAStatus   domain.QAStatus
	QAFeedback *string
	Flagged    bool
	LabeledAt  time.Time
}

// GetUserHistory returns the user's most recently labeled images, newest
// first, capped by the history window. Labels whose image has since been
// wiped are skipped rather than surfaced as holes.
func (s *Service) GetUserHistory(ctx context.Context, userID string, limit int) ([]HistoryItem, error) {
	if limit <= 0 || limit > s.opts.HistoryWindow {
		limit = s.opts.HistoryWindow
	}

	labels, err := s.repo.ListLabelsByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(labels))
	for _, l := range labels {
		img, err := s.repo.GetImage(ctx, l.ImageID)
		if errors.Is(err, domain.ErrImageNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, HistoryItem{
			ImageID:    l.ImageID,
			QAStatus:   img.QAStatus,
			QAFeedback: img.QAFeedback,
			Flagged:    l.Flagged,
			LabeledAt:  l.TimestampCreated,
		})
	}
	return items, nil
}

// GetImageDoc fetches one image for direct navigation. A missing image is
// (nil, nil) so clients can treat it as "gone" without error handling.
func (s *Service) GetImageDoc(ctx context.Context, imageID string) (*ports.Image, error) {
	img, err := s.repo.GetImage(ctx, imageID)
	if errors.Is(err, domain.ErrImageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// GetNextReviewTask walks the user's history from the anchor toward older
// entries and returns the next image still pending QA. An empty anchor
// starts from the newest entry. Nil means the window holds nothing further.
func (s *Service) GetNextReviewTask(ctx context.Context, userID, anchorImageID string) (*ports.Image, error) {
	return s.walkHistory(ctx, userID, anchorImageID, false, domain.QAPending)
}

// GetPrevReviewTask is the inverse walk: the nearest newer pending image
// before the anchor.
func (s *Service) GetPrevReviewTask(ctx context.Context, userID, anchorImageID string) (*ports.Image, error) {
	return s.walkHistory(ctx, userID, anchorImageID, true, domain.QAPending)
}

// GetNextEditorTask is the editor-mode variant of GetNextReviewTask: images
// pending QA or sent back for revision both qualify.
func (s *Service) GetNextEditorTask(ctx context.Context, userID, anchorImageID string) (*ports.Image, error) {
	return s.walkHistory(ctx, userID, anchorImageID, false, domain.QAPending, domain.QAReview)
}

// GetPrevEditorTask is the inverse editor-mode walk.
func (s *Service) GetPrevEditorTask(ctx context.Context, userID, anchorImageID string) (*ports.Image, error) {
	return s.walkHistory(ctx, userID, anchorImageID, true, domain.QAPending, domain.QAReview)
}

func (s *Service) walkHistory(ctx context.Context, userID, anchorImageID string, newer bool, allowed ...domain.QAStatus) (*ports.Image, error) {
	labels, err := s.repo.ListLabelsByUser(ctx, userID, s.opts.HistoryWindow)
	if err != nil {
		return nil, err
	}

	anchorIdx := -1
	for i, l := range labels {
		if l.ImageID == anchorImageID {
			anchorIdx = i
			break
		}
	}
	// An anchor that is not in the window anymore has nothing adjacent to
	// it; starting over from the newest entry would loop the client.
	if anchorImageID != "" && anchorIdx < 0 {
		return nil, nil
	}

	matches := func(img ports.Image) bool {
		for _, qa := range allowed {
			if img.QAStatus == qa {
				return true
			}
		}
		return false
	}

	if newer {
		// Nearest newer entry: scan from just before the anchor upward.
		if anchorIdx <= 0 {
			return nil, nil
		}
		for i := anchorIdx - 1; i >= 0; i-- {
			img, err := s.repo.GetImage(ctx, labels[i].ImageID)
			if errors.Is(err, domain.ErrImageNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if matches(img) {
				return &img, nil
			}
		}
		return nil, nil
	}

	start := 0
	if anchorIdx >= 0 {
		start = anchorIdx + 1
	}
	for i := start; i < len(labels); i++ {
		img, err := s.repo.GetImage(ctx, labels[i].ImageID)
		if errors.Is(err, domain.ErrImageNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if matches(img) {
			return &img, nil
		}
	}
	return nil, nil
}
