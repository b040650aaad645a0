package labeling

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/infrastructure/cache"
	"photolabel/internal/infrastructure/persistence/sqlite/model"
	"photolabel/internal/infrastructure/persistence/sqlite/repository"
	"photolabel/internal/infrastructure/persistence/sqlite/uow"
	"photolabel/internal/ports"
)

// stubResolver counts calls and serves a fixed answer.
type stubResolver struct {
	url   string
	err   error
	calls int
}

func (r *stubResolver) Resolve(_ context.Context, pointer string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", &ports.ResolverError{StoragePointer: pointer, Cause: r.err}
	}
	return r.url, nil
}

type fixture struct {
	svc      *Service
	repo     ports.LabelingRepository
	resolver *stubResolver
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "labeling.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Image{},
		&model.Label{},
		&model.LabelRevision{},
		&model.User{},
		&model.LabelerKV{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewLabelingRepository(db)
	resolver := &stubResolver{url: "https://signed.example/ok"}
	svc := NewService(repo, uow.NewUnitOfWork(db), cache.NewSQLiteCache(db), resolver, Options{})
	return &fixture{svc: svc, repo: repo, resolver: resolver}
}

func (f *fixture) seedImage(t *testing.T, imageID, propertyID string, uploaded time.Time) {
	t.Helper()

	img := ports.Image{
		ImageID:           imageID,
		Status:            domain.StatusUnlabeled,
		BBURL:             "bb://" + imageID,
		ImageURL:          "https://fallback.example/" + imageID,
		TimestampUploaded: &uploaded,
	}
	if propertyID != "" {
		img.PropertyID = &propertyID
	}
	if err := f.repo.CreateImage(context.Background(), img); err != nil {
		t.Fatalf("seed image %s: %v", imageID, err)
	}
}

func (f *fixture) seedUser(t *testing.T, username string, role domain.Role) {
	t.Helper()

	if err := f.repo.UpsertUserAccount(context.Background(), username, role, "", true); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
}

func (f *fixture) saveLabels(t *testing.T, userID, imageID string) {
	t.Helper()

	err := f.svc.SaveLabels(context.Background(), SaveLabelsInput{
		UserID:  userID,
		ImageID: imageID,
		Payload: domain.Payload{
			SpatialLabels: []string{"Exterior/Front"},
		},
	})
	if err != nil {
		t.Fatalf("SaveLabels(%s by %s) error = %v", imageID, userID, err)
	}
}

func (f *fixture) claim(t *testing.T, userID string) *ports.Image {
	t.Helper()

	img, err := f.svc.GetNextTask(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetNextTask(%s) error = %v", userID, err)
	}
	return img
}

func (f *fixture) image(t *testing.T, imageID string) ports.Image {
	t.Helper()

	img, err := f.repo.GetImage(context.Background(), imageID)
	if err != nil {
		t.Fatalf("GetImage(%s) error = %v", imageID, err)
	}
	return img
}

func (f *fixture) user(t *testing.T, username string) ports.User {
	t.Helper()

	user, err := f.repo.GetUser(context.Background(), username)
	if err != nil {
		t.Fatalf("GetUser(%s) error = %v", username, err)
	}
	return user
}

func uploadedAt(daysAgo int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -daysAgo)
}
