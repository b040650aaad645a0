package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/ports"
	"photolabel/internal/usecase/labeling"
)

type errorBody struct {
	Error string `json:"error"`
}

type imageBody struct {
	ImageID       string     `json:"image_id"`
	Status        string     `json:"status"`
	QAStatus      string     `json:"qa_status,omitempty"`
	AssignedTo    *string    `json:"assigned_to,omitempty"`
	PropertyID    *string    `json:"property_id,omitempty"`
	Flagged       bool       `json:"flagged"`
	QAFeedback    *string    `json:"qa_feedback,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	TaskExpiresAt *time.Time `json:"task_expires_at,omitempty"`
}

func imageToBody(img ports.Image) imageBody {
	return imageBody{
		ImageID:       img.ImageID,
		Status:        string(img.Status),
		QAStatus:      string(img.QAStatus),
		AssignedTo:    img.AssignedTo,
		PropertyID:    img.PropertyID,
		Flagged:       img.Flagged,
		QAFeedback:    img.QAFeedback,
		ImageURL:      img.ImageURL,
		TaskExpiresAt: img.TaskExpiresAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps service errors onto HTTP statuses. Retry exhaustion is a
// 503 so clients know to back off and try again; resolver failures are a
// 502 since the upstream signing service is at fault.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var resolverErr *ports.ResolverError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrPermissionDenied), errors.Is(err, domain.ErrUserDisabled):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrImageNotFound),
		errors.Is(err, domain.ErrLabelNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRetryExhausted):
		status = http.StatusServiceUnavailable
	case errors.As(err, &resolverErr):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("error", err))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleNextTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user_id is required"})
		return
	}

	img, err := s.svc.GetNextTask(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, imageToBody(*img))
}

func (s *Server) handleReleaseTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.ReleaseTask(r.Context(), req.UserID, chi.URLParam(r, "imageID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.svc.GetImageDoc(r.Context(), chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if img == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "image not found"})
		return
	}
	writeJSON(w, http.StatusOK, imageToBody(*img))
}

func (s *Server) handleGetImageURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.GetImageURL(r.Context(), chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleSaveLabels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string         `json:"user_id"`
		Payload domain.Payload `json:"payload"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user_id is required"})
		return
	}

	err := s.svc.SaveLabels(r.Context(), labeling.SaveLabelsInput{
		UserID:  req.UserID,
		ImageID: chi.URLParam(r, "imageID"),
		Payload: req.Payload,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPayloadLabeledBy) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID string `json:"admin_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.ConfirmLabels(r.Context(), req.AdminID, chi.URLParam(r, "imageID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestRevision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID   string `json:"admin_id"`
		LabelerID string `json:"labeler_id"`
		Feedback  string `json:"feedback"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.RequestRevision(r.Context(), req.AdminID, chi.URLParam(r, "imageID"), req.LabelerID, req.Feedback); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	items, err := s.svc.GetUserHistory(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleHistoryNext(w http.ResponseWriter, r *http.Request) {
	s.handleHistoryWalk(w, r, false)
}

func (s *Server) handleHistoryPrev(w http.ResponseWriter, r *http.Request) {
	s.handleHistoryWalk(w, r, true)
}

func (s *Server) handleHistoryWalk(w http.ResponseWriter, r *http.Request, prev bool) {
	userID := chi.URLParam(r, "userID")
	anchor := r.URL.Query().Get("anchor")
	mode := r.URL.Query().Get("mode")

	var (
		img *ports.Image
		err error
	)
	switch {
	case mode == "editor" && prev:
		img, err = s.svc.GetPrevEditorTask(r.Context(), userID, anchor)
	case mode == "editor":
		img, err = s.svc.GetNextEditorTask(r.Context(), userID, anchor)
	case prev:
		img, err = s.svc.GetPrevReviewTask(r.Context(), userID, anchor)
	default:
		img, err = s.svc.GetNextReviewTask(r.Context(), userID, anchor)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, imageToBody(*img))
}
