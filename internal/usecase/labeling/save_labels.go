package labeling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/ports"
)

// SaveLabelsInput is one label submission. LabeledBy inside the payload
// defaults to UserID when the client leaves it empty.
type SaveLabelsInput struct {
	UserID  string
	ImageID string
	Payload domain.Payload
}

// SaveLabels persists the payload for an image and moves the image to
// labeled with QA status pending. Saving over an existing label first
// archives the old payload as an immutable revision. A non-admin saving over
// a QA-confirmed image is rejected. Counters on the user move only on the
// first-ever label of an image; edits and re-labels leave them unchanged.
// QA feedback on the image survives the save so the labeler can still read
// it after addressing a revision request.
func (s *Service) SaveLabels(ctx context.Context, in SaveLabelsInput) error {
	if in.Payload.LabeledBy == "" {
		in.Payload.LabeledBy = in.UserID
	}
	in.Payload.SchemaVersion = domain.CurrentSchemaVersion
	if err := in.Payload.Validate(); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	raw, err := domain.EncodePayload(in.Payload)
	if err != nil {
		return fmt.Errorf("save labels: %w", err)
	}

	return s.runInTx(ctx, "save labels", func(txCtx context.Context) error {
		img, err := s.repo.GetImage(txCtx, in.ImageID)
		if err != nil {
			return err
		}

		if err := s.repo.EnsureUser(txCtx, in.UserID); err != nil {
			return err
		}
		user, err := s.repo.GetUser(txCtx, in.UserID)
		if err != nil {
			return err
		}
		if img.QAStatus == domain.QAConfirmed && !user.Role.IsAdmin() {
			return fmt.Errorf("save labels for %s: %w", in.ImageID, domain.ErrPermissionDenied)
		}

		existing, err := s.repo.GetLabel(txCtx, in.ImageID)
		firstLabel := errors.Is(err, domain.ErrLabelNotFound)
		if err != nil && !firstLabel {
			return err
		}

		if firstLabel {
			if err := s.repo.CreateLabel(txCtx, ports.Label{
				ImageID:       in.ImageID,
				LabeledBy:     in.Payload.LabeledBy,
				Flagged:       in.Payload.Flagged,
				SchemaVersion: in.Payload.SchemaVersion,
				PayloadJSON:   string(raw),
			}); err != nil {
				return err
			}
		} else {
			if err := s.repo.AppendRevision(txCtx, ports.Revision{
				RevisionID:  uuid.NewString(),
				ImageID:     in.ImageID,
				PayloadJSON: existing.PayloadJSON,
				EditedBy:    in.UserID,
				EditedAt:    time.Now().UTC(),
			}); err != nil {
				return err
			}
			existing.LabeledBy = in.Payload.LabeledBy
			existing.Flagged = in.Payload.Flagged
			existing.SchemaVersion = in.Payload.SchemaVersion
			existing.PayloadJSON = string(raw)
			if err := s.repo.UpdateLabel(txCtx, existing); err != nil {
				return err
			}
		}

		if err := s.repo.MarkImageLabeled(txCtx, in.ImageID, in.Payload.Flagged, img.Version); err != nil {
			return err
		}

		if firstLabel {
			if err := s.repo.AddUserCounters(txCtx, in.UserID, ports.CounterDeltas{
				ToReview:  1,
				Processed: 1,
			}); err != nil {
				return err
			}
		}
		if err := s.repo.TouchUserLabeled(txCtx, in.UserID, in.ImageID); err != nil {
			return err
		}

		logging.Info(txCtx, "labels saved",
			slog.String("image", in.ImageID),
			slog.String("user", in.UserID),
			slog.Bool("first_label", firstLabel))
		return nil
	})
}
