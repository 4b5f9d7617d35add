package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/models"
)

// Sort orders accepted by Search.
const (
	SortRecent = "recent"
	SortLiked  = "liked"
)

// VideoUpdate carries the patchable video metadata fields. Nil pointers leave
// the stored value untouched. The owner reference is deliberately absent.
type VideoUpdate struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
	Controls     *bool
	Quality      *int
}

// VideoRepository exposes data access for the video catalog, including the
// embedded like set, comment list, and view counter.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error)

	// Search returns videos whose title or description contains the query,
	// case-insensitively, or all videos when the query is empty. sortOrder is
	// SortRecent (creation time descending) or SortLiked (like count
	// descending).
	Search(ctx context.Context, query, sortOrder string) ([]models.Video, error)

	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Video, error)
	ListByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Video, error)
	ListLikedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Video, error)

	Update(ctx context.Context, id primitive.ObjectID, update VideoUpdate) (models.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// SetLike adds or removes the user from the video's like set using
	// set-add/set-remove semantics and returns the updated like count.
	SetLike(ctx context.Context, videoID, userID primitive.ObjectID, liked bool) (int64, error)

	// AppendComment appends the comment and returns the updated video.
	AppendComment(ctx context.Context, videoID primitive.ObjectID, comment models.Comment) (models.Video, error)

	// IncrementViews bumps the view counter by one and returns the new count.
	IncrementViews(ctx context.Context, videoID primitive.ObjectID) (int64, error)

	// Asset mirroring status updates, used by the background ingestor only.
	MarkAssetReady(ctx context.Context, videoID primitive.ObjectID, location string, size int64) error
	MarkAssetFailed(ctx context.Context, videoID primitive.ObjectID) error
}
