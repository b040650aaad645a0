package labeling

import (
	"context"
	"errors"
	"testing"

	domain "photolabel/internal/domain/labeling"
)

func TestSaveLabelsFirstSaveMovesImageAndCounters(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))
	got := f.claim(t, "alice")

	f.saveLabels(t, "alice", got.ImageID)

	img := f.image(t, "img-a")
	if img.Status != domain.StatusLabeled || img.QAStatus != domain.QAPending {
		t.Fatalf("image after save = %q/%q", img.Status, img.QAStatus)
	}
	if img.TimestampLabeled == nil {
		t.Fatal("labeled timestamp not stamped")
	}

	alice := f.user(t, "alice")
	if alice.ImagesProcessed != 1 || alice.ImagesToReview != 1 || alice.ImagesConfirmed != 0 {
		t.Fatalf("counters = %d/%d/%d, want 1 processed, 1 to review",
			alice.ImagesProcessed, alice.ImagesToReview, alice.ImagesConfirmed)
	}
	if alice.LastLabeledImageID == nil || *alice.LastLabeledImageID != "img-a" {
		t.Fatalf("last labeled = %v", alice.LastLabeledImageID)
	}
}

func TestSaveLabelsEditArchivesRevisionAndKeepsCounters(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))
	ctx := context.Background()

	f.saveLabels(t, "alice", "img-a")
	err := f.svc.SaveLabels(ctx, SaveLabelsInput{
		UserID:  "alice",
		ImageID: "img-a",
		Payload: domain.Payload{Notes: "second pass"},
	})
	if err != nil {
		t.Fatalf("second SaveLabels() error = %v", err)
	}

	revs, err := f.repo.ListRevisions(ctx, "img-a")
	if err != nil {
		t.Fatalf("ListRevisions() error = %v", err)
	}
	if len(revs) != 1 {
		t.Fatalf("revisions = %d, want 1", len(revs))
	}
	if revs[0].EditedBy != "alice" || revs[0].PayloadJSON == "" {
		t.Fatalf("revision = %+v", revs[0])
	}
	prev, err := domain.DecodePayload([]byte(revs[0].PayloadJSON))
	if err != nil {
		t.Fatalf("decode archived payload: %v", err)
	}
	if len(prev.SpatialLabels) != 1 || prev.SpatialLabels[0] != "Exterior/Front" {
		t.Fatalf("archived payload = %+v, want the first submission", prev)
	}

	alice := f.user(t, "alice")
	if alice.ImagesProcessed != 1 || alice.ImagesToReview != 1 {
		t.Fatalf("edit moved counters: %d/%d", alice.ImagesProcessed, alice.ImagesToReview)
	}

	label, err := f.repo.GetLabel(ctx, "img-a")
	if err != nil {
		t.Fatalf("GetLabel() error = %v", err)
	}
	current, err := domain.DecodePayload([]byte(label.PayloadJSON))
	if err != nil {
		t.Fatalf("decode current payload: %v", err)
	}
	if current.Notes != "second pass" {
		t.Fatalf("current payload notes = %q", current.Notes)
	}
}

func TestSaveLabelsConfirmedImageFrozenForLabelers(t *testing.T) {
	f := setup(t)
	f.seedUser(t, "admin", domain.RoleAdmin)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))
	ctx := context.Background()

	f.saveLabels(t, "alice", "img-a")
	if err := f.svc.ConfirmLabels(ctx, "admin", "img-a"); err != nil {
		t.Fatalf("ConfirmLabels() error = %v", err)
	}

	err := f.svc.SaveLabels(ctx, SaveLabelsInput{
		UserID:  "alice",
		ImageID: "img-a",
		Payload: domain.Payload{Notes: "sneaky edit"},
	})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("labeler edit of confirmed image: err = %v", err)
	}

	// Admins may still override.
	err = f.svc.SaveLabels(ctx, SaveLabelsInput{
		UserID:  "admin",
		ImageID: "img-a",
		Payload: domain.Payload{Notes: "admin fixup"},
	})
	if err != nil {
		t.Fatalf("admin edit of confirmed image: err = %v", err)
	}
}

func TestSaveLabelsPreservesReviewFeedback(t *testing.T) {
	f := setup(t)
	f.seedUser(t, "admin", domain.RoleAdmin)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))
	ctx := context.Background()

	f.saveLabels(t, "alice", "img-a")
	if err := f.svc.RequestRevision(ctx, "admin", "img-a", "", "crop is wrong"); err != nil {
		t.Fatalf("RequestRevision() error = %v", err)
	}

	f.saveLabels(t, "alice", "img-a")

	img := f.image(t, "img-a")
	if img.QAStatus != domain.QAPending {
		t.Fatalf("qa status after resubmit = %q, want pending", img.QAStatus)
	}
	if img.QAFeedback == nil || *img.QAFeedback != "crop is wrong" {
		t.Fatalf("feedback lost on resubmit: %v", img.QAFeedback)
	}
}

func TestSaveLabelsMissingImageFails(t *testing.T) {
	f := setup(t)

	err := f.svc.SaveLabels(context.Background(), SaveLabelsInput{
		UserID:  "alice",
		ImageID: "img-ghost",
		Payload: domain.Payload{},
	})
	if !errors.Is(err, domain.ErrImageNotFound) {
		t.Fatalf("err = %v, want image not found", err)
	}
}

func TestSaveLabelsRejectsMalformedFeatureLabel(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))

	err := f.svc.SaveLabels(context.Background(), SaveLabelsInput{
		UserID:  "alice",
		ImageID: "img-a",
		Payload: domain.Payload{FeatureLabels: []string{"Kitchen:Sink"}},
	})
	if err == nil {
		t.Fatal("expected validation error for two-part feature label")
	}
}
