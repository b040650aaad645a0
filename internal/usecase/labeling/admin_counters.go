package labeling

import (
	"context"
	"errors"
	"log/slog"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
)

const recountPageSize = 500

// UserCounts is the recomputed counter set for one user.
type UserCounts struct {
	Username  string
	Confirmed int64
	ToReview  int64
	Processed int64
}

// RecountUserCounters rebuilds a user's denormalized counters from the
// label table, paging through their labels, and writes the exact values
// back. This is the reconciliation path when counters drift after manual
// surgery or wipes.
func (s *Service) RecountUserCounters(ctx context.Context, username string) (UserCounts, error) {
	counts := UserCounts{Username: username}

	if _, err := s.repo.GetUser(ctx, username); err != nil {
		return counts, err
	}

	for offset := 0; ; offset += recountPageSize {
		page, err := s.repo.ListLabelsByUserPage(ctx, username, offset, recountPageSize)
		if err != nil {
			return counts, err
		}
		for _, l := range page {
			counts.Processed++
			img, err := s.repo.GetImage(ctx, l.ImageID)
			if errors.Is(err, domain.ErrImageNotFound) {
				continue
			}
			if err != nil {
				return counts, err
			}
			switch img.QAStatus {
			case domain.QAConfirmed:
				counts.Confirmed++
			case domain.QAPending, domain.QAReview:
				counts.ToReview++
			}
		}
		if len(page) < recountPageSize {
			break
		}
	}

	if err := s.repo.SetUserCounters(ctx, username, counts.Confirmed, counts.ToReview, counts.Processed); err != nil {
		return counts, err
	}
	logging.Info(ctx, "user counters recounted",
		slog.String("user", username),
		slog.Int64("confirmed", counts.Confirmed),
		slog.Int64("to_review", counts.ToReview),
		slog.Int64("processed", counts.Processed))
	return counts, nil
}

// RecountAllUsers runs the recount for every known user.
func (s *Service) RecountAllUsers(ctx context.Context) ([]UserCounts, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserCounts, 0, len(users))
	for _, u := range users {
		counts, err := s.RecountUserCounters(ctx, u.Username)
		if err != nil {
			return out, err
		}
		out = append(out, counts)
	}
	return out, nil
}
