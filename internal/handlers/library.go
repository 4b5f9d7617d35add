package handlers

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryHandler serves the per-user collections: the follow feed, the
// bounded watch history, and the uploaded/liked video lists.
type LibraryHandler struct {
	Users    UserStore
	Videos   VideoStore
	Sessions SessionManager
}

type historyItem struct {
	Video     historyVideo `json:"video"`
	WatchedAt time.Time    `json:"watchedAt"`
}

type historyVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type userVideosResponse struct {
	Uploaded []videoView `json:"uploaded"`
	Liked    []videoView `json:"liked"`
}

// Feed handles GET /api/v1/users/feed: videos from followed uploaders only,
// newest first. An empty following set yields an empty feed, never a
// fallback to the global catalog.
func (h LibraryHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	actor, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	videos, err := h.Videos.ListByOwners(ctx, actor.Following)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	views, err := newVideoViews(ctx, h.Users, videos)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, views)
}

// History handles GET /api/v1/users/history: the up-to-10 most recently
// watched videos, most recent first. Entries whose video has since been
// deleted are skipped.
func (h LibraryHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	actor, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(actor.History))
	for _, entry := range actor.History {
		ids = append(ids, entry.VideoID)
	}

	videos, err := h.Videos.FindByIDs(ctx, ids)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	byID := make(map[primitive.ObjectID]historyVideo, len(videos))
	for _, v := range videos {
		byID[v.ID] = historyVideo{ID: v.ID.Hex(), Title: v.Title, ThumbnailURL: v.ThumbnailURL}
	}

	items := make([]historyItem, 0, len(actor.History))
	for _, entry := range actor.History {
		video, ok := byID[entry.VideoID]
		if !ok {
			continue
		}
		items = append(items, historyItem{Video: video, WatchedAt: entry.WatchedAt})
	}

	respondJSON(ctx, w, http.StatusOK, items)
}

// UserVideos handles GET /api/v1/users/videos: the actor's uploaded and
// liked videos.
func (h LibraryHandler) UserVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	uploaded, err := h.Videos.ListByOwner(ctx, actorID)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	liked, err := h.Videos.ListLikedBy(ctx, actorID)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	uploadedViews, err := newVideoViews(ctx, h.Users, uploaded)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}
	likedViews, err := newVideoViews(ctx, h.Users, liked)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, userVideosResponse{Uploaded: uploadedViews, Liked: likedViews})
}
