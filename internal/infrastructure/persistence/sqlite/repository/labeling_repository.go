package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photolabel/internal/domain/labeling"
	"photolabel/internal/errs"
	"photolabel/internal/infrastructure/persistence/sqlite/model"
	"photolabel/internal/ports"
)

// LabelingRepository is the sqlite-backed store for images, labels, revisions
// and users. Server-side timestamps are stamped here, mirroring the store
// stamping writes rather than the caller.
type LabelingRepository struct {
	db *gorm.DB
}

func NewLabelingRepository(db *gorm.DB) *LabelingRepository {
	return &LabelingRepository{db: db}
}

var _ ports.LabelingRepository = (*LabelingRepository)(nil)

func (r *LabelingRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func now() time.Time {
	return time.Now().UTC()
}

// ---------------------------------------------------------------------------
// Image reads
// ---------------------------------------------------------------------------

func (r *LabelingRepository) GetImage(ctx context.Context, imageID string) (ports.Image, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Image{}, err
	}

	var row model.Image
	if err := db.Where("image_id = ?", imageID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Image{}, labeling.ErrImageNotFound
		}
		return ports.Image{}, errs.Wrap(err, "query image")
	}
	return mapImage(row), nil
}

func (r *LabelingRepository) FindReviewImage(ctx context.Context, userID string) (ports.Image, bool, error) {
	return r.findOneImage(ctx, "qa_status = ? AND assigned_to = ?", string(labeling.QAReview), userID)
}

func (r *LabelingRepository) FindInProgressImage(ctx context.Context, userID string) (ports.Image, bool, error) {
	return r.findOneImage(ctx, "status = ? AND assigned_to = ?", string(labeling.StatusInProgress), userID)
}

func (r *LabelingRepository) findOneImage(ctx context.Context, cond string, args ...any) (ports.Image, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Image{}, false, err
	}

	var row model.Image
	if err := db.Where(cond, args...).Limit(1).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Image{}, false, nil
		}
		return ports.Image{}, false, errs.Wrap(err, "query image")
	}
	return mapImage(row), true, nil
}

func (r *LabelingRepository) ListUnlabeledOldest(ctx context.Context, limit int) ([]ports.Image, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Image{}).
		Where("status = ?", string(labeling.StatusUnlabeled)).
		Order("timestamp_uploaded asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Image
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query unlabeled images")
	}
	return mapImages(rows), nil
}

func (r *LabelingRepository) ListInProgress(ctx context.Context, filter ports.InProgressFilter) ([]ports.Image, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Image{}).Where("status = ?", string(labeling.StatusInProgress))
	if assignee := strings.TrimSpace(filter.AssignedTo); assignee != "" {
		query = query.Where("assigned_to = ?", assignee)
	}
	if filter.ExpiredBefore != nil {
		query = query.Where("task_expires_at IS NOT NULL AND task_expires_at < ?", *filter.ExpiredBefore)
	}

	var rows []model.Image
	if err := query.Order("image_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query in-progress images")
	}
	return mapImages(rows), nil
}

func (r *LabelingRepository) ListFlagged(ctx context.Context, assignedTo string, limit int) ([]ports.Image, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Image{}).Where("flagged = ?", true)
	if assignee := strings.TrimSpace(assignedTo); assignee != "" {
		query = query.Where("assigned_to = ?", assignee)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Image
	if err := query.Order("image_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query flagged images")
	}
	return mapImages(rows), nil
}

func (r *LabelingRepository) ListByQAStatus(ctx context.Context, qa labeling.QAStatus, assignedTo string, limit int) ([]ports.Image, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Image{}).Where("qa_status = ?", string(qa))
	if assignee := strings.TrimSpace(assignedTo); assignee != "" {
		query = query.Where("assigned_to = ?", assignee)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Image
	if err := query.Order("image_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query images by qa status")
	}
	return mapImages(rows), nil
}

func (r *LabelingRepository) ListResolverFailures(ctx context.Context, limit int) ([]ports.Image, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Image{}).
		Where("resolver_failure_count > 0").
		Order("resolver_failure_count desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Image
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query resolver failures")
	}
	return mapImages(rows), nil
}

// ---------------------------------------------------------------------------
// Image writes
// ---------------------------------------------------------------------------

func (r *LabelingRepository) CreateImage(ctx context.Context, img ports.Image) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Image{
		ImageID:                  img.ImageID,
		Status:                   string(img.Status),
		QAStatus:                 string(img.QAStatus),
		AssignedTo:               img.AssignedTo,
		PropertyID:               img.PropertyID,
		BBURL:                    img.BBURL,
		ImageURL:                 img.ImageURL,
		TimestampUploaded:        img.TimestampUploaded,
		TimestampAssigned:        img.TimestampAssigned,
		TimestampLabeled:         img.TimestampLabeled,
		TimestampConfirmed:       img.TimestampConfirmed,
		TimestampReviewRequested: img.TimestampReviewRequested,
		TaskExpiresAt:            img.TaskExpiresAt,
		Flagged:                  img.Flagged,
		QAFeedback:               img.QAFeedback,
		ConfirmedBy:              img.ConfirmedBy,
		ReviewRequestedBy:        img.ReviewRequestedBy,
		ResolverFailureCount:     img.ResolverFailureCount,
		LastResolverError:        img.LastResolverError,
		Version:                  img.Version,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert image")
	}
	return nil
}

// updateImageAt applies updates guarded by the optimistic version column.
func (r *LabelingRepository) updateImageAt(ctx context.Context, imageID string, expectedVersion uint64, updates map[string]any) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	updates["version"] = gorm.Expr("version + 1")
	result := db.Model(&model.Image{}).
		Where("image_id = ? AND version = ?", imageID, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update image")
	}
	if result.RowsAffected == 0 {
		return labeling.ErrConflict
	}
	return nil
}

// updateImage applies a blind single-document update (naturally atomic, no
// version guard).
func (r *LabelingRepository) updateImage(ctx context.Context, imageID string, updates map[string]any) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	updates["version"] = gorm.Expr("version + 1")
	result := db.Model(&model.Image{}).Where("image_id = ?", imageID).Updates(updates)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update image")
	}
	if result.RowsAffected == 0 {
		return labeling.ErrImageNotFound
	}
	return nil
}

func (r *LabelingRepository) LockImage(ctx context.Context, imageID, userID string, expiresAt time.Time, expectedVersion uint64) error {
	return r.updateImageAt(ctx, imageID, expectedVersion, map[string]any{
		"status":             string(labeling.StatusInProgress),
		"assigned_to":        userID,
		"timestamp_assigned": now(),
		"task_expires_at":    expiresAt,
	})
}

func (r *LabelingRepository) ReleaseImage(ctx context.Context, imageID string) error {
	return r.updateImage(ctx, imageID, map[string]any{
		"status":          string(labeling.StatusUnlabeled),
		"assigned_to":     nil,
		"task_expires_at": nil,
	})
}

func (r *LabelingRepository) MarkImageLabeled(ctx context.Context, imageID string, flagged bool, expectedVersion uint64) error {
	// qa_feedback is deliberately preserved so reviewers keep context across
	// resubmissions.
	return r.updateImageAt(ctx, imageID, expectedVersion, map[string]any{
		"status":            string(labeling.StatusLabeled),
		"timestamp_labeled": now(),
		"task_expires_at":   nil,
		"flagged":           flagged,
		"qa_status":         string(labeling.QAPending),
	})
}

func (r *LabelingRepository) ConfirmImage(ctx context.Context, imageID, adminID string, expectedVersion uint64) error {
	return r.updateImageAt(ctx, imageID, expectedVersion, map[string]any{
		"qa_status":           string(labeling.QAConfirmed),
		"qa_feedback":         nil,
		"assigned_to":         nil,
		"confirmed_by":        adminID,
		"timestamp_confirmed": now(),
	})
}

func (r *LabelingRepository) SetImageReview(ctx context.Context, imageID, labelerID, adminID, feedback string) error {
	return r.updateImage(ctx, imageID, map[string]any{
		"qa_status":                  string(labeling.QAReview),
		"qa_feedback":                feedback,
		"assigned_to":                labelerID,
		"review_requested_by":        adminID,
		"timestamp_review_requested": now(),
	})
}

func (r *LabelingRepository) ResetImageQA(ctx context.Context, imageID, labelerID string) error {
	updates := map[string]any{
		"qa_status":                  string(labeling.QAPending),
		"qa_feedback":                nil,
		"review_requested_by":        nil,
		"timestamp_review_requested": nil,
		"confirmed_by":               nil,
		"timestamp_confirmed":        nil,
	}
	if labelerID != "" {
		updates["assigned_to"] = labelerID
	} else {
		updates["assigned_to"] = nil
	}
	return r.updateImage(ctx, imageID, updates)
}

func (r *LabelingRepository) AssignImage(ctx context.Context, imageID, labelerID string, expiresAt time.Time) error {
	return r.updateImage(ctx, imageID, map[string]any{
		"status":             string(labeling.StatusInProgress),
		"assigned_to":        labelerID,
		"timestamp_assigned": now(),
		"task_expires_at":    expiresAt,
		"qa_status":          string(labeling.QAPending),
	})
}

func (r *LabelingRepository) RetireImage(ctx context.Context, imageID string) error {
	return r.updateImage(ctx, imageID, map[string]any{
		"status":          string(labeling.StatusRemoved),
		"assigned_to":     nil,
		"task_expires_at": nil,
	})
}

func (r *LabelingRepository) SetImageFlag(ctx context.Context, imageID string, flagged bool) error {
	return r.updateImage(ctx, imageID, map[string]any{"flagged": flagged})
}

func (r *LabelingRepository) ResetImageForWipe(ctx context.Context, imageID string) error {
	// No label remains after a wipe, so the QA status clears entirely.
	return r.updateImage(ctx, imageID, map[string]any{
		"status":                     string(labeling.StatusUnlabeled),
		"flagged":                    false,
		"qa_status":                  string(labeling.QANone),
		"qa_feedback":                nil,
		"assigned_to":                nil,
		"review_requested_by":        nil,
		"timestamp_review_requested": nil,
		"confirmed_by":               nil,
		"timestamp_confirmed":        nil,
	})
}

func (r *LabelingRepository) UnlockImage(ctx context.Context, imageID string) error {
	return r.updateImage(ctx, imageID, map[string]any{
		"status":                     string(labeling.StatusUnlabeled),
		"assigned_to":                nil,
		"timestamp_assigned":         nil,
		"task_expires_at":            nil,
		"qa_status":                  string(labeling.QANone),
		"qa_feedback":                nil,
		"review_requested_by":        nil,
		"timestamp_review_requested": nil,
		"confirmed_by":               nil,
		"timestamp_confirmed":        nil,
	})
}

func (r *LabelingRepository) RecordResolverFailure(ctx context.Context, imageID, message string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Image{}).
		Where("image_id = ?", imageID).
		Updates(map[string]any{
			"resolver_failure_count": gorm.Expr("resolver_failure_count + 1"),
			"last_resolver_error":    message,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "record resolver failure")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Labels and revisions
// ---------------------------------------------------------------------------

func (r *LabelingRepository) GetLabel(ctx context.Context, imageID string) (ports.Label, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Label{}, err
	}

	var row model.Label
	if err := db.Where("image_id = ?", imageID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Label{}, labeling.ErrLabelNotFound
		}
		return ports.Label{}, errs.Wrap(err, "query label")
	}
	return mapLabel(row), nil
}

func (r *LabelingRepository) ListLabelsByUser(ctx context.Context, userID string, limit int) ([]ports.Label, error) {
	return r.ListLabelsByUserPage(ctx, userID, 0, limit)
}

func (r *LabelingRepository) ListLabelsByUserPage(ctx context.Context, userID string, offset, limit int) ([]ports.Label, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Label{}).
		Where("labeled_by = ?", userID).
		Order("timestamp_created desc")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Label
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query labels by user")
	}

	items := make([]ports.Label, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLabel(row))
	}
	return items, nil
}

func (r *LabelingRepository) ListLabelsPage(ctx context.Context, offset, limit int) ([]ports.Label, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Label{}).Order("image_id asc")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Label
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query labels page")
	}

	items := make([]ports.Label, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLabel(row))
	}
	return items, nil
}

func (r *LabelingRepository) ListRevisions(ctx context.Context, imageID string) ([]ports.Revision, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.LabelRevision
	if err := db.
		Where("image_id = ?", imageID).
		Order("edited_at asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query label revisions")
	}

	items := make([]ports.Revision, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Revision{
			RevisionID:  row.RevisionID,
			ImageID:     row.ImageID,
			PayloadJSON: row.PayloadJSON,
			EditedBy:    row.EditedBy,
			EditedAt:    row.EditedAt,
		})
	}
	return items, nil
}

func (r *LabelingRepository) CreateLabel(ctx context.Context, label ports.Label) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	ts := now()
	row := model.Label{
		ImageID:          label.ImageID,
		LabeledBy:        label.LabeledBy,
		Flagged:          label.Flagged,
		SchemaVersion:    label.SchemaVersion,
		PayloadJSON:      label.PayloadJSON,
		TimestampCreated: ts,
		UpdatedAt:        ts,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert label")
	}
	return nil
}

func (r *LabelingRepository) UpdateLabel(ctx context.Context, label ports.Label) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	// timestamp_created is immutable after the first save.
	result := db.Model(&model.Label{}).
		Where("image_id = ?", label.ImageID).
		Updates(map[string]any{
			"labeled_by":     label.LabeledBy,
			"flagged":        label.Flagged,
			"schema_version": label.SchemaVersion,
			"payload_json":   label.PayloadJSON,
			"updated_at":     now(),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update label")
	}
	if result.RowsAffected == 0 {
		return labeling.ErrLabelNotFound
	}
	return nil
}

func (r *LabelingRepository) AppendRevision(ctx context.Context, rev ports.Revision) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.LabelRevision{
		RevisionID:  rev.RevisionID,
		ImageID:     rev.ImageID,
		PayloadJSON: rev.PayloadJSON,
		EditedBy:    rev.EditedBy,
		EditedAt:    rev.EditedAt,
	}
	if row.EditedAt.IsZero() {
		row.EditedAt = now()
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert label revision")
	}
	return nil
}

func (r *LabelingRepository) DeleteLabel(ctx context.Context, imageID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("image_id = ?", imageID).Delete(&model.LabelRevision{}).Error; err != nil {
		return errs.Wrap(err, "delete label revisions")
	}
	if err := db.Where("image_id = ?", imageID).Delete(&model.Label{}).Error; err != nil {
		return errs.Wrap(err, "delete label")
	}
	return nil
}

func (r *LabelingRepository) ReassignLabels(ctx context.Context, fromUser, toUser string, preserveOriginal bool) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	updates := map[string]any{"labeled_by": toUser, "updated_at": now()}
	if preserveOriginal {
		updates["original_labeler"] = fromUser
	}

	result := db.Model(&model.Label{}).
		Where("labeled_by = ?", fromUser).
		Updates(updates)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "reassign labels")
	}
	return result.RowsAffected, nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (r *LabelingRepository) GetUser(ctx context.Context, username string) (ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.User{}, err
	}

	var row model.User
	if err := db.Where("username = ?", username).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, labeling.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user")
	}
	return mapUser(row), nil
}

func (r *LabelingRepository) ListUsers(ctx context.Context) ([]ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.User
	if err := db.Model(&model.User{}).Order("username asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query users")
	}

	items := make([]ports.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUser(row))
	}
	return items, nil
}

func (r *LabelingRepository) PropertyHeldByOther(ctx context.Context, propertyID, excludeUser string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("current_property_id = ? AND username <> ?", propertyID, excludeUser).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count property holders")
	}
	return count > 0, nil
}

func (r *LabelingRepository) EnsureUser(ctx context.Context, username string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.User{Username: username, Role: string(labeling.RoleLabeler), Enabled: true}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "ensure user")
	}
	return nil
}

func (r *LabelingRepository) UpsertUserAccount(ctx context.Context, username string, role labeling.Role, passwordHash string, enabled bool) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.User{
		Username:     username,
		Role:         string(role),
		Enabled:      enabled,
		PasswordHash: passwordHash,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "enabled", "password_hash"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert user account")
	}
	return nil
}

func (r *LabelingRepository) SetUserEnabled(ctx context.Context, username string, enabled bool) error {
	return r.updateUser(ctx, username, map[string]any{"enabled": enabled})
}

func (r *LabelingRepository) SetCurrentProperty(ctx context.Context, username string, propertyID *string, expectedVersion uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.User{}).
		Where("username = ? AND version = ?", username, expectedVersion).
		Updates(map[string]any{
			"current_property_id": propertyID,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "set current property")
	}
	if result.RowsAffected == 0 {
		return labeling.ErrConflict
	}
	return nil
}

func (r *LabelingRepository) ClearCurrentProperty(ctx context.Context, username string) error {
	return r.updateUser(ctx, username, map[string]any{"current_property_id": nil})
}

func (r *LabelingRepository) AddUserCounters(ctx context.Context, username string, deltas ports.CounterDeltas) error {
	updates := map[string]any{}
	if deltas.Confirmed != 0 {
		updates["images_confirmed"] = gorm.Expr("images_confirmed + ?", deltas.Confirmed)
	}
	if deltas.ToReview != 0 {
		updates["images_to_review"] = gorm.Expr("images_to_review + ?", deltas.ToReview)
	}
	if deltas.Processed != 0 {
		updates["images_processed"] = gorm.Expr("images_processed + ?", deltas.Processed)
	}
	if len(updates) == 0 {
		return nil
	}

	return r.updateUser(ctx, username, updates)
}

func (r *LabelingRepository) SetUserCounters(ctx context.Context, username string, confirmed, toReview, processed int64) error {
	return r.updateUser(ctx, username, map[string]any{
		"images_confirmed": confirmed,
		"images_to_review": toReview,
		"images_processed": processed,
	})
}

func (r *LabelingRepository) TouchUserLabeled(ctx context.Context, username, imageID string) error {
	return r.updateUser(ctx, username, map[string]any{
		"last_labeled_image_id":  imageID,
		"timestamp_last_labeled": now(),
	})
}

func (r *LabelingRepository) updateUser(ctx context.Context, username string, updates map[string]any) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	updates["version"] = gorm.Expr("version + 1")
	result := db.Model(&model.User{}).Where("username = ?", username).Updates(updates)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return labeling.ErrUserNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

func mapImage(row model.Image) ports.Image {
	return ports.Image{
		ImageID:                  row.ImageID,
		Status:                   labeling.ImageStatus(row.Status),
		QAStatus:                 labeling.QAStatus(row.QAStatus),
		AssignedTo:               row.AssignedTo,
		PropertyID:               row.PropertyID,
		BBURL:                    row.BBURL,
		ImageURL:                 row.ImageURL,
		TimestampUploaded:        row.TimestampUploaded,
		TimestampAssigned:        row.TimestampAssigned,
		TimestampLabeled:         row.TimestampLabeled,
		TimestampConfirmed:       row.TimestampConfirmed,
		TimestampReviewRequested: row.TimestampReviewRequested,
		TaskExpiresAt:            row.TaskExpiresAt,
		Flagged:                  row.Flagged,
		QAFeedback:               row.QAFeedback,
		ConfirmedBy:              row.ConfirmedBy,
		ReviewRequestedBy:        row.ReviewRequestedBy,
		ResolverFailureCount:     row.ResolverFailureCount,
		LastResolverError:        row.LastResolverError,
		Version:                  row.Version,
	}
}

func mapImages(rows []model.Image) []ports.Image {
	items := make([]ports.Image, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapImage(row))
	}
	return items
}

func mapLabel(row model.Label) ports.Label {
	return ports.Label{
		ImageID:          row.ImageID,
		LabeledBy:        row.LabeledBy,
		Flagged:          row.Flagged,
		SchemaVersion:    row.SchemaVersion,
		PayloadJSON:      row.PayloadJSON,
		TimestampCreated: row.TimestampCreated,
		UpdatedAt:        row.UpdatedAt,
	}
}

func mapUser(row model.User) ports.User {
	return ports.User{
		Username:             row.Username,
		Role:                 labeling.Role(row.Role),
		Enabled:              row.Enabled,
		PasswordHash:         row.PasswordHash,
		CurrentPropertyID:    row.CurrentPropertyID,
		ImagesConfirmed:      row.ImagesConfirmed,
		ImagesToReview:       row.ImagesToReview,
		ImagesProcessed:      row.ImagesProcessed,
		LastLabeledImageID:   row.LastLabeledImageID,
		TimestampLastLabeled: row.TimestampLastLabeled,
		Version:              row.Version,
	}
}
