package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"photolabel/internal/domain/labeling"
	"photolabel/internal/infrastructure/persistence/sqlite/model"
	"photolabel/internal/infrastructure/persistence/sqlite/uow"
	"photolabel/internal/ports"
)

func setupRepo(t *testing.T) (*LabelingRepository, *uow.UnitOfWork) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "repo.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Image{}, &model.Label{}, &model.LabelRevision{}, &model.User{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewLabelingRepository(db), uow.NewUnitOfWork(db)
}

func createImage(t *testing.T, repo *LabelingRepository, imageID string, uploaded time.Time) {
	t.Helper()

	err := repo.CreateImage(context.Background(), ports.Image{
		ImageID:           imageID,
		Status:            labeling.StatusUnlabeled,
		TimestampUploaded: &uploaded,
	})
	if err != nil {
		t.Fatalf("create image %s: %v", imageID, err)
	}
}

func TestLockImageStaleVersionConflicts(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	createImage(t, repo, "img-a", time.Now().UTC())

	deadline := time.Now().UTC().Add(time.Hour)
	if err := repo.LockImage(ctx, "img-a", "alice", deadline, 0); err != nil {
		t.Fatalf("first lock: %v", err)
	}

	// The row is now at version 1; a writer still holding version 0 loses.
	err := repo.LockImage(ctx, "img-a", "bob", deadline, 0)
	if !errors.Is(err, labeling.ErrConflict) {
		t.Fatalf("stale lock err = %v, want conflict", err)
	}

	img, err := repo.GetImage(ctx, "img-a")
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if img.AssignedTo == nil || *img.AssignedTo != "alice" {
		t.Fatalf("holder = %v, want alice", img.AssignedTo)
	}
	if img.Version != 1 {
		t.Fatalf("version = %d, want 1", img.Version)
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	repo, u := setupRepo(t)
	ctx := context.Background()
	createImage(t, repo, "img-a", time.Now().UTC())

	boom := errors.New("boom")
	err := u.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.LockImage(txCtx, "img-a", "alice", time.Now().UTC().Add(time.Hour), 0); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v", err)
	}

	img, err := repo.GetImage(ctx, "img-a")
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if img.Status != labeling.StatusUnlabeled || img.AssignedTo != nil || img.Version != 0 {
		t.Fatalf("rollback left %+v", img)
	}
}

func TestListUnlabeledOldestOrdersByUpload(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	base := time.Now().UTC()
	createImage(t, repo, "img-mid", base.Add(-2*time.Hour))
	createImage(t, repo, "img-new", base.Add(-1*time.Hour))
	createImage(t, repo, "img-old", base.Add(-3*time.Hour))

	images, err := repo.ListUnlabeledOldest(ctx, 2)
	if err != nil {
		t.Fatalf("ListUnlabeledOldest: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("len = %d", len(images))
	}
	if images[0].ImageID != "img-old" || images[1].ImageID != "img-mid" {
		t.Fatalf("order = %s, %s", images[0].ImageID, images[1].ImageID)
	}
}

func TestEnsureUserIsIdempotentAndKeepsRole(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	if err := repo.UpsertUserAccount(ctx, "admin", labeling.RoleAdmin, "hash", true); err != nil {
		t.Fatalf("UpsertUserAccount: %v", err)
	}
	if err := repo.EnsureUser(ctx, "admin"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	user, err := repo.GetUser(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Role != labeling.RoleAdmin || user.PasswordHash != "hash" {
		t.Fatalf("ensure clobbered account: %+v", user)
	}
}

func TestPropertyHeldByOtherExcludesSelf(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	if err := repo.EnsureUser(ctx, "alice"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	prop := "prop-1"
	if err := repo.SetCurrentProperty(ctx, "alice", &prop, 0); err != nil {
		t.Fatalf("SetCurrentProperty: %v", err)
	}

	held, err := repo.PropertyHeldByOther(ctx, "prop-1", "alice")
	if err != nil {
		t.Fatalf("PropertyHeldByOther: %v", err)
	}
	if held {
		t.Fatal("own claim must not count as held by other")
	}

	held, err = repo.PropertyHeldByOther(ctx, "prop-1", "bob")
	if err != nil {
		t.Fatalf("PropertyHeldByOther: %v", err)
	}
	if !held {
		t.Fatal("alice's claim must block bob")
	}
}

func TestGetLabelMissingIsTypedError(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetLabel(context.Background(), "img-ghost")
	if !errors.Is(err, labeling.ErrLabelNotFound) {
		t.Fatalf("err = %v, want label not found", err)
	}
}

func TestReassignLabelsPreservesOriginal(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	createImage(t, repo, "img-a", time.Now().UTC())

	err := repo.CreateLabel(ctx, ports.Label{
		ImageID: "img-a", LabeledBy: "old_name", PayloadJSON: "{}", SchemaVersion: 1,
	})
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}

	moved, err := repo.ReassignLabels(ctx, "old_name", "new_name", true)
	if err != nil {
		t.Fatalf("ReassignLabels: %v", err)
	}
	if moved != 1 {
		t.Fatalf("moved = %d", moved)
	}

	label, err := repo.GetLabel(ctx, "img-a")
	if err != nil {
		t.Fatalf("GetLabel: %v", err)
	}
	if label.LabeledBy != "new_name" {
		t.Fatalf("labeled by = %q", label.LabeledBy)
	}
}
