package labeling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"photolabel/internal/bootstrap/logging"
)

// Signed URLs are valid for 24h upstream; caching just under that keeps a
// stale entry from outliving its URL.
const signedURLTTL = 23 * time.Hour

func signedURLKey(imageID string) string {
	return "signed_url:" + imageID
}

// GetImageURL returns the signed URL for the image. Resolved URLs are
// cached. Resolution failures, including an image with no storage pointer,
// are recorded on the image for the ops report and surface as a typed
// *ports.ResolverError so the caller decides whether to fall back to the
// stored image_url, skip, or retry.
func (s *Service) GetImageURL(ctx context.Context, imageID string) (string, error) {
	img, err := s.repo.GetImage(ctx, imageID)
	if err != nil {
		return "", err
	}

	key := signedURLKey(imageID)
	if cached, found, err := s.cache.Get(ctx, key); err != nil {
		logging.Warn(ctx, "signed url cache read failed", slog.String("image", imageID), slog.Any("error", err))
	} else if found {
		return cached, nil
	}

	url, err := s.resolver.Resolve(ctx, img.BBURL)
	if err != nil {
		logging.Warn(ctx, "signed url resolution failed",
			slog.String("image", imageID), slog.Any("error", err))
		if recErr := s.repo.RecordResolverFailure(ctx, imageID, err.Error()); recErr != nil {
			logging.Warn(ctx, "recording resolver failure failed",
				slog.String("image", imageID), slog.Any("error", recErr))
		}
		return "", fmt.Errorf("get image url for %s: %w", imageID, err)
	}

	if err := s.cache.Set(ctx, key, url, signedURLTTL); err != nil {
		logging.Warn(ctx, "signed url cache write failed", slog.String("image", imageID), slog.Any("error", err))
	}
	return url, nil
}

// InvalidateImageURL drops the cached signed URL, forcing the next read to
// resolve again. Used after a wipe or retire.
func (s *Service) InvalidateImageURL(ctx context.Context, imageID string) error {
	return s.cache.Delete(ctx, signedURLKey(imageID))
}
