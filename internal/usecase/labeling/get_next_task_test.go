package labeling

import (
	"context"
	"testing"

	domain "photolabel/internal/domain/labeling"
)

func TestGetNextTaskClaimsOldestAndLocks(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-new", "prop-1", uploadedAt(1))
	f.seedImage(t, "img-old", "prop-2", uploadedAt(10))

	got := f.claim(t, "alice")
	if got == nil || got.ImageID != "img-old" {
		t.Fatalf("claimed %+v, want img-old", got)
	}
	if got.Status != domain.StatusInProgress {
		t.Fatalf("claimed status = %q", got.Status)
	}

	stored := f.image(t, "img-old")
	if stored.Status != domain.StatusInProgress || stored.AssignedTo == nil || *stored.AssignedTo != "alice" {
		t.Fatalf("stored image not locked: %+v", stored)
	}
	if stored.TaskExpiresAt == nil {
		t.Fatal("lock deadline not stamped")
	}

	user := f.user(t, "alice")
	if user.CurrentPropertyID == nil || *user.CurrentPropertyID != "prop-2" {
		t.Fatalf("current property = %v, want prop-2", user.CurrentPropertyID)
	}
}

func TestGetNextTaskResumesInProgress(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(5))
	f.seedImage(t, "img-b", "prop-1", uploadedAt(4))

	first := f.claim(t, "alice")
	again := f.claim(t, "alice")
	if again == nil || again.ImageID != first.ImageID {
		t.Fatalf("second claim = %+v, want resume of %s", again, first.ImageID)
	}
}

func TestGetNextTaskResumeLeavesLockUntouched(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(5))

	f.claim(t, "alice")
	locked := f.image(t, "img-a")

	// Resuming must not re-write the lock: a page reload on a stale tab
	// leaves version and deadline exactly as the original claim set them.
	f.claim(t, "alice")
	resumed := f.image(t, "img-a")
	if resumed.Version != locked.Version {
		t.Fatalf("resume bumped version: %d -> %d", locked.Version, resumed.Version)
	}
	if resumed.TaskExpiresAt == nil || !resumed.TaskExpiresAt.Equal(*locked.TaskExpiresAt) {
		t.Fatalf("resume moved deadline: %v -> %v", locked.TaskExpiresAt, resumed.TaskExpiresAt)
	}
}

func TestGetNextTaskSkipsImagesWithoutProperty(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-orphan", "", uploadedAt(10))
	f.seedImage(t, "img-housed", "prop-1", uploadedAt(5))

	// The orphan is older but has no property to claim; it waits for
	// manual assignment.
	got := f.claim(t, "alice")
	if got == nil || got.ImageID != "img-housed" {
		t.Fatalf("claim = %+v, want img-housed", got)
	}

	f.saveLabels(t, "alice", "img-housed")
	if got := f.claim(t, "alice"); got != nil {
		t.Fatalf("claim = %+v, want nil with only an orphan left", got)
	}
	orphan := f.image(t, "img-orphan")
	if orphan.Status != domain.StatusUnlabeled || orphan.AssignedTo != nil {
		t.Fatalf("orphan was touched: %+v", orphan)
	}
}

func TestGetNextTaskContinuesCurrentProperty(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-p1-a", "prop-1", uploadedAt(10))
	f.seedImage(t, "img-p2-a", "prop-2", uploadedAt(9))
	f.seedImage(t, "img-p1-b", "prop-1", uploadedAt(8))

	got := f.claim(t, "alice")
	if got.ImageID != "img-p1-a" {
		t.Fatalf("first claim = %s", got.ImageID)
	}
	f.saveLabels(t, "alice", got.ImageID)

	// prop-2 holds the oldest remaining image, but alice stays on prop-1.
	got = f.claim(t, "alice")
	if got == nil || got.ImageID != "img-p1-b" {
		t.Fatalf("second claim = %+v, want img-p1-b", got)
	}
}

func TestGetNextTaskSkipsPropertyHeldByOther(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-p1-a", "prop-1", uploadedAt(10))
	f.seedImage(t, "img-p1-b", "prop-1", uploadedAt(9))
	f.seedImage(t, "img-p2-a", "prop-2", uploadedAt(8))

	if got := f.claim(t, "alice"); got.ImageID != "img-p1-a" {
		t.Fatalf("alice claimed %s", got.ImageID)
	}

	got := f.claim(t, "bob")
	if got == nil || got.ImageID != "img-p2-a" {
		t.Fatalf("bob claimed %+v, want img-p2-a", got)
	}
	bob := f.user(t, "bob")
	if bob.CurrentPropertyID == nil || *bob.CurrentPropertyID != "prop-2" {
		t.Fatalf("bob current property = %v", bob.CurrentPropertyID)
	}
}

func TestGetNextTaskMovesOnWhenPropertyExhausted(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-p1-a", "prop-1", uploadedAt(10))
	f.seedImage(t, "img-p2-a", "prop-2", uploadedAt(9))

	got := f.claim(t, "alice")
	f.saveLabels(t, "alice", got.ImageID)

	got = f.claim(t, "alice")
	if got == nil || got.ImageID != "img-p2-a" {
		t.Fatalf("claim after exhausting prop-1 = %+v", got)
	}
	alice := f.user(t, "alice")
	if alice.CurrentPropertyID == nil || *alice.CurrentPropertyID != "prop-2" {
		t.Fatalf("current property = %v, want prop-2", alice.CurrentPropertyID)
	}
}

func TestGetNextTaskReturnsNilWhenNoWork(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-p1-a", "prop-1", uploadedAt(10))

	got := f.claim(t, "alice")
	f.saveLabels(t, "alice", got.ImageID)

	if got := f.claim(t, "alice"); got != nil {
		t.Fatalf("claim on empty pool = %+v, want nil", got)
	}
	alice := f.user(t, "alice")
	if alice.CurrentPropertyID != nil {
		t.Fatalf("exhausted property not cleared: %v", *alice.CurrentPropertyID)
	}
}

func TestGetNextTaskPrefersReviewImage(t *testing.T) {
	f := setup(t)
	f.seedUser(t, "admin", domain.RoleAdmin)
	f.seedImage(t, "img-review", "prop-1", uploadedAt(10))
	f.seedImage(t, "img-fresh", "prop-2", uploadedAt(9))

	got := f.claim(t, "alice")
	f.saveLabels(t, "alice", got.ImageID)
	if err := f.svc.RequestRevision(context.Background(), "admin", "img-review", "", "redo the walls"); err != nil {
		t.Fatalf("RequestRevision() error = %v", err)
	}

	got = f.claim(t, "alice")
	if got == nil || got.ImageID != "img-review" {
		t.Fatalf("claim = %+v, want revision img-review", got)
	}
}

func TestGetNextTaskRejectsDisabledUser(t *testing.T) {
	f := setup(t)
	f.seedUser(t, "alice", domain.RoleLabeler)
	if err := f.svc.SetUserEnabled(context.Background(), "alice", false); err != nil {
		t.Fatalf("SetUserEnabled() error = %v", err)
	}
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))

	_, err := f.svc.GetNextTask(context.Background(), "alice")
	if err == nil {
		t.Fatal("expected error for disabled user")
	}
}

func TestReleaseTaskReturnsImageToPool(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))

	got := f.claim(t, "alice")
	if err := f.svc.ReleaseTask(context.Background(), "alice", got.ImageID); err != nil {
		t.Fatalf("ReleaseTask() error = %v", err)
	}

	stored := f.image(t, "img-a")
	if stored.Status != domain.StatusUnlabeled || stored.AssignedTo != nil {
		t.Fatalf("release left %+v", stored)
	}
}

func TestReleaseTaskIgnoresForeignLock(t *testing.T) {
	f := setup(t)
	f.seedImage(t, "img-a", "prop-1", uploadedAt(1))

	got := f.claim(t, "alice")
	if err := f.svc.ReleaseTask(context.Background(), "bob", got.ImageID); err != nil {
		t.Fatalf("ReleaseTask() error = %v", err)
	}

	stored := f.image(t, "img-a")
	if stored.Status != domain.StatusInProgress || stored.AssignedTo == nil || *stored.AssignedTo != "alice" {
		t.Fatalf("foreign release changed lock: %+v", stored)
	}
}
