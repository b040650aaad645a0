package labeling

import (
	"context"
	"errors"
	"testing"

	domain "photolabel/internal/domain/labeling"
)

func TestRecountUserCountersRebuildsFromLabels(t *testing.T) {
	f := setup(t)
	f.seedUser(t, "admin", domain.RoleAdmin)
	ctx := context.Background()
	for _, id := range []string{"img-1", "img-2", "img-3"} {
		f.seedImage(t, id, "prop-1", uploadedAt(1))
		f.saveLabels(t, "alice", id)
	}
	if err := f.svc.ConfirmLabels(ctx, "admin", "img-2"); err != nil {
		t.Fatalf("ConfirmLabels() error = %v", err)
	}

	// Sabotage the denormalized counters, then reconcile.
	if err := f.repo.SetUserCounters(ctx, "alice", 40, 40, 40); err != nil {
		t.Fatalf("SetUserCounters() error = %v", err)
	}

	counts, err := f.svc.RecountUserCounters(ctx, "alice")
	if err != nil {
		t.Fatalf("RecountUserCounters() error = %v", err)
	}
	if counts.Processed != 3 || counts.Confirmed != 1 || counts.ToReview != 2 {
		t.Fatalf("recount = %+v", counts)
	}

	alice := f.user(t, "alice")
	if alice.ImagesProcessed != 3 || alice.ImagesConfirmed != 1 || alice.ImagesToReview != 2 {
		t.Fatalf("stored counters = %d/%d/%d",
			alice.ImagesProcessed, alice.ImagesConfirmed, alice.ImagesToReview)
	}
}

func TestUnlockTasksReleasesLockAndProperty(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))
	ctx := context.Background()

	got := f.claim(t, "alice")

	n, err := f.svc.UnlockTasks(ctx, []string{got.ImageID})
	if err != nil {
		t.Fatalf("UnlockTasks() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("unlocked = %d", n)
	}

	img := f.image(t, "img-a")
	if img.Status != domain.StatusUnlabeled || img.AssignedTo != nil || img.TaskExpiresAt != nil {
		t.Fatalf("image after unlock = %+v", img)
	}
	alice := f.user(t, "alice")
	if alice.CurrentPropertyID != nil {
		t.Fatalf("current property survived unlock: %v", *alice.CurrentPropertyID)
	}
}

func TestListLockedTasksFiltersByUser(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(2))
	f.seedImage(t, "img-b", "prop-2", uploadedAt(1))
	ctx := context.Background()

	f.claim(t, "alice")
	f.claim(t, "bob")

	locked, err := f.svc.ListLockedTasks(ctx, "alice", false)
	if err != nil {
		t.Fatalf("ListLockedTasks() error = %v", err)
	}
	if len(locked) != 1 || locked[0].AssignedTo == nil || *locked[0].AssignedTo != "alice" {
		t.Fatalf("locked for alice = %+v", locked)
	}

	expired, err := f.svc.ListLockedTasks(ctx, "", true)
	if err != nil {
		t.Fatalf("ListLockedTasks(expired) error = %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("fresh locks reported expired: %+v", expired)
	}
}

func TestMergeLabelsReassignsAndRecounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedImage(t, "img-1", "prop-1", uploadedAt(2))
	f.seedImage(t, "img-2", "prop-1", uploadedAt(1))
	f.saveLabels(t, "alice_old", "img-1")
	f.saveLabels(t, "alice_old", "img-2")

	moved, err := f.svc.MergeLabels(ctx, "alice_old", "alice", true)
	if err != nil {
		t.Fatalf("MergeLabels() error = %v", err)
	}
	if moved != 2 {
		t.Fatalf("moved = %d", moved)
	}

	label, err := f.repo.GetLabel(ctx, "img-1")
	if err != nil {
		t.Fatalf("GetLabel() error = %v", err)
	}
	if label.LabeledBy != "alice" {
		t.Fatalf("labeled by = %q", label.LabeledBy)
	}

	alice := f.user(t, "alice")
	if alice.ImagesProcessed != 2 || alice.ImagesToReview != 2 {
		t.Fatalf("target counters = %d/%d", alice.ImagesProcessed, alice.ImagesToReview)
	}
	old := f.user(t, "alice_old")
	if old.ImagesProcessed != 0 || old.ImagesToReview != 0 {
		t.Fatalf("source counters = %d/%d", old.ImagesProcessed, old.ImagesToReview)
	}
}

func TestWipeImageLabelsResetsEverything(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))
	f.saveLabels(t, "alice", "img-a")
	err := f.svc.SaveLabels(ctx, SaveLabelsInput{
		UserID: "alice", ImageID: "img-a",
		Payload: domain.Payload{Notes: "edit"},
	})
	if err != nil {
		t.Fatalf("SaveLabels() error = %v", err)
	}

	if err := f.svc.WipeImageLabels(ctx, "img-a"); err != nil {
		t.Fatalf("WipeImageLabels() error = %v", err)
	}

	if _, err := f.repo.GetLabel(ctx, "img-a"); !errors.Is(err, domain.ErrLabelNotFound) {
		t.Fatalf("label after wipe: err = %v", err)
	}
	revs, err := f.repo.ListRevisions(ctx, "img-a")
	if err != nil {
		t.Fatalf("ListRevisions() error = %v", err)
	}
	if len(revs) != 0 {
		t.Fatalf("revisions after wipe = %d", len(revs))
	}
	img := f.image(t, "img-a")
	if img.Status != domain.StatusUnlabeled || img.QAStatus != domain.QANone {
		t.Fatalf("image after wipe = %q/%q", img.Status, img.QAStatus)
	}
}

func TestWipeUserLabelsZeroesCounters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedImage(t, "img-1", "prop-1", uploadedAt(2))
	f.seedImage(t, "img-2", "prop-1", uploadedAt(1))
	f.saveLabels(t, "alice", "img-1")
	f.saveLabels(t, "alice", "img-2")

	n, err := f.svc.WipeUserLabels(ctx, "alice")
	if err != nil {
		t.Fatalf("WipeUserLabels() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("wiped = %d", n)
	}
	alice := f.user(t, "alice")
	if alice.ImagesProcessed != 0 || alice.ImagesToReview != 0 || alice.ImagesConfirmed != 0 {
		t.Fatalf("counters after wipe = %d/%d/%d",
			alice.ImagesProcessed, alice.ImagesToReview, alice.ImagesConfirmed)
	}
}

func TestRetireImageLeavesAssignmentPool(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))

	if err := f.svc.RetireImage(ctx, "img-a", false); err != nil {
		t.Fatalf("RetireImage() error = %v", err)
	}
	img := f.image(t, "img-a")
	if img.Status != domain.StatusRemoved {
		t.Fatalf("status = %q", img.Status)
	}
	if got := f.claim(t, "alice"); got != nil {
		t.Fatalf("retired image still assignable: %+v", got)
	}
}

func TestUnflagImagesClearsFlags(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))
	err := f.svc.SaveLabels(ctx, SaveLabelsInput{
		UserID: "alice", ImageID: "img-a",
		Payload: domain.Payload{Flagged: true},
	})
	if err != nil {
		t.Fatalf("SaveLabels() error = %v", err)
	}

	flagged, err := f.svc.ListFlaggedImages(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListFlaggedImages() error = %v", err)
	}
	if len(flagged) != 1 {
		t.Fatalf("flagged = %d", len(flagged))
	}

	n, err := f.svc.UnflagImages(ctx, []string{"img-a", "img-ghost"})
	if err != nil {
		t.Fatalf("UnflagImages() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("unflagged = %d", n)
	}
	if img := f.image(t, "img-a"); img.Flagged {
		t.Fatal("flag survived unflag")
	}
}

func TestAssignTaskHandsImageToLabeler(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))

	if err := f.svc.AssignTask(ctx, "img-a", "bob"); err != nil {
		t.Fatalf("AssignTask() error = %v", err)
	}
	img := f.image(t, "img-a")
	if img.Status != domain.StatusInProgress || img.AssignedTo == nil || *img.AssignedTo != "bob" {
		t.Fatalf("image after assign = %+v", img)
	}
	if img.TaskExpiresAt == nil {
		t.Fatal("hand assignment missing lock deadline")
	}
}

func TestProvisionAndAuthenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if err := f.svc.ProvisionUser(ctx, "carol", "hunter2", domain.RoleReviewer); err != nil {
		t.Fatalf("ProvisionUser() error = %v", err)
	}
	user, err := f.svc.Authenticate(ctx, "carol", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Role != domain.RoleReviewer {
		t.Fatalf("role = %q", user.Role)
	}

	if _, err := f.svc.Authenticate(ctx, "carol", "wrong"); err == nil {
		t.Fatal("bad password accepted")
	}

	if err := f.svc.SetUserEnabled(ctx, "carol", false); err != nil {
		t.Fatalf("SetUserEnabled() error = %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "carol", "hunter2"); !errors.Is(err, domain.ErrUserDisabled) {
		t.Fatalf("disabled auth err = %v", err)
	}
}
