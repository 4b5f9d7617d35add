package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/logging"
	"github.com/reeltide/backend/internal/media"
	"github.com/reeltide/backend/internal/models"
	"github.com/reeltide/backend/internal/repositories"
)

// VideoHandler provides the video catalog endpoints: listing/search, upload,
// single-video fetch, metadata patch, and delete.
type VideoHandler struct {
	Users    UserStore
	Videos   VideoStore
	Sessions SessionManager
	Ingestor MediaIngestor
	NowFunc  func() time.Time
}

type createVideoRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Controls     *bool  `json:"controls"`
	Quality      *int   `json:"quality"`
}

type patchVideoRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Controls     *bool   `json:"controls"`
	Quality      *int    `json:"quality"`
}

// List handles GET /api/v1/videos. The q parameter matches title or
// description case-insensitively; filter is "recent" (default) or "liked".
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	sortOrder := r.URL.Query().Get("filter")
	if sortOrder != repositories.SortLiked {
		sortOrder = repositories.SortRecent
	}

	videos, err := h.Videos.Search(ctx, query, sortOrder)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	views, err := newVideoViews(ctx, h.Users, videos)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	logging.FromContext(ctx).Info("listed videos", "count", len(views), "filter", sortOrder, "query", query)

	w.Header().Set("X-Total-Count", strconv.Itoa(len(views)))
	respondJSON(ctx, w, http.StatusOK, views)
}

// Create handles POST /api/v1/videos. The media itself is uploaded by the
// client directly to the CDN/object store; this endpoint persists the
// metadata, links the video into the owner's uploaded list, and schedules
// background mirroring of the media.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.VideoURL = strings.TrimSpace(req.VideoURL)
	req.ThumbnailURL = strings.TrimSpace(req.ThumbnailURL)
	if req.Title == "" || req.Description == "" || req.VideoURL == "" || req.ThumbnailURL == "" {
		respondError(ctx, w, http.StatusBadRequest, "title, description, videoUrl, and thumbnailUrl are required")
		return
	}

	controls := true
	if req.Controls != nil {
		controls = *req.Controls
	}
	quality := models.DefaultVideoQuality
	if req.Quality != nil && *req.Quality >= 1 && *req.Quality <= 100 {
		quality = *req.Quality
	}

	now := h.now()
	video := models.Video{
		ID:           primitive.NewObjectID(),
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Controls:     controls,
		Transformation: models.Transformation{
			Height:  models.DefaultVideoHeight,
			Width:   models.DefaultVideoWidth,
			Quality: quality,
		},
		UserID:      actorID,
		AssetStatus: models.AssetStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Users.AddUploaded(ctx, actorID, video.ID); err != nil {
		// The video is committed; the missing uploaded-list link is the
		// accepted partial-failure mode.
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if h.Ingestor != nil {
		if err := h.Ingestor.Enqueue(ctx, media.Job{VideoID: video.ID, MediaURL: video.VideoURL}); err != nil {
			logger.Warn("enqueue media mirroring", "videoId", video.ID.Hex(), "error", err)
		}
	}

	byID, err := resolveUsers(ctx, h.Users, []primitive.ObjectID{actorID})
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, newVideoView(video, byID))
}

// Get handles GET /api/v1/videos/{id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, ok := pathObjectID(ctx, w, r, "video")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	views, err := newVideoViews(ctx, h.Users, []models.Video{video})
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, views[0])
}

// Patch handles PATCH /api/v1/videos/{id}. Only presentation metadata may
// change; the owner reference and engagement state are untouchable here.
func (h VideoHandler) Patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireActor(ctx, w, r, h.Sessions); !ok {
		return
	}

	videoID, ok := pathObjectID(ctx, w, r, "video")
	if !ok {
		return
	}

	var req patchVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	video, err := h.Videos.Update(ctx, videoID, repositories.VideoUpdate{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		Controls:     req.Controls,
		Quality:      req.Quality,
	})
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	views, err := newVideoViews(ctx, h.Users, []models.Video{video})
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, views[0])
}

// Delete handles DELETE /api/v1/videos/{id}. Any authenticated user may
// delete any video by identifier; there is no ownership check on this
// route.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireActor(ctx, w, r, h.Sessions); !ok {
		return
	}

	videoID, ok := pathObjectID(ctx, w, r, "video")
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
