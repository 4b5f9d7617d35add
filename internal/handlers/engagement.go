package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/reeltide/backend/internal/logging"
	"github.com/reeltide/backend/internal/metrics"
	"github.com/reeltide/backend/internal/models"
	"github.com/reeltide/backend/internal/repositories"
)

// EngagementHandler implements likes, comments, and view counting against a
// video's embedded engagement state.
type EngagementHandler struct {
	Users    UserStore
	Videos   VideoStore
	Sessions SessionManager
	Metrics  metrics.Recorder
	NowFunc  func() time.Time
}

type likeResponse struct {
	Success    bool `json:"success"`
	IsLiked    bool `json:"isLiked"`
	LikesCount int  `json:"likesCount"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type viewResponse struct {
	Views int64 `json:"views"`
}

// Like handles POST /api/v1/videos/{id}/like. Each call flips the actor's
// membership in the video's like set and mirrors the outcome on the actor's
// liked list; the two writes are sequential, not transactional.
func (h EngagementHandler) Like(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "engagement.toggleLike")
	defer span.End()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	videoID, ok := pathObjectID(ctx, w, r, "video")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	liked := !video.HasLike(actorID)

	count, err := h.Videos.SetLike(ctx, videoID, actorID, liked)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if err := h.Users.SetLiked(ctx, actorID, videoID, liked); err != nil {
		// First write is committed; surface the partial failure.
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordLikeToggle(liked)
	}

	respondJSON(ctx, w, http.StatusOK, likeResponse{Success: true, IsLiked: liked, LikesCount: int(count)})
}

// Comment handles POST /api/v1/videos/{id}/comment. Comments are append-only;
// the full updated list is returned with author names resolved.
func (h EngagementHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment text required")
		return
	}

	videoID, ok := pathObjectID(ctx, w, r, "video")
	if !ok {
		return
	}

	comment := models.Comment{UserID: actorID, Text: req.Text, CreatedAt: h.now()}
	video, err := h.Videos.AppendComment(ctx, videoID, comment)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	byID, err := resolveUsers(ctx, h.Users, commentAuthorIDs(video.Comments))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordComment()
	}

	respondJSON(ctx, w, http.StatusOK, newCommentViews(video.Comments, byID))
}

// View handles POST /api/v1/videos/{id}/view. The counter increments on
// every call with no de-duplication; when the caller is authenticated the
// watch history is updated as well.
func (h EngagementHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID, ok := pathObjectID(ctx, w, r, "video")
	if !ok {
		return
	}

	views, err := h.Videos.IncrementViews(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if actorID, err := resolveActor(ctx, h.Sessions, r); err == nil {
		if err := h.Users.RecordHistory(ctx, actorID, videoID, h.now()); err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				// The view was already counted; history failure is logged
				// but does not fail the request.
				logger.Error("record watch history", "userId", actorID.Hex(), "videoId", videoID.Hex(), "error", err)
			}
		}
	}

	if h.Metrics != nil {
		h.Metrics.RecordView()
	}

	respondJSON(ctx, w, http.StatusOK, viewResponse{Views: views})
}

func (h EngagementHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
