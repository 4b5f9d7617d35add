package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/models"
)

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// stored value untouched.
type ProfileUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
}

// UserRepository defines the data access contract for users, including the
// embedded social-graph sets.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (models.User, error)

	// AddUploaded links a newly created video into the owner's uploaded list.
	AddUploaded(ctx context.Context, userID, videoID primitive.ObjectID) error

	// SetFollowing adds or removes the follower/followee pair on both user
	// documents. The two writes are applied in sequence without a
	// transaction; a failure after the first write leaves the relationship
	// asymmetric and is reported to the caller.
	SetFollowing(ctx context.Context, followerID, targetID primitive.ObjectID, following bool) error

	// SetLiked adds or removes a video from the user's liked set.
	SetLiked(ctx context.Context, userID, videoID primitive.ObjectID, liked bool) error

	// RecordHistory removes any stale entry for the video, then prepends a
	// fresh entry and truncates the history to models.HistoryLimit.
	RecordHistory(ctx context.Context, userID, videoID primitive.ObjectID, watchedAt time.Time) error
}
