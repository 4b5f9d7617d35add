package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/auth"
	"github.com/reeltide/backend/internal/media"
	"github.com/reeltide/backend/internal/models"
	"github.com/reeltide/backend/internal/repositories"
	"github.com/reeltide/backend/internal/storage"
)

// UserStore captures the persistence operations required by the user-facing
// handlers, including the embedded social graph.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update repositories.ProfileUpdate) (models.User, error)
	AddUploaded(ctx context.Context, userID, videoID primitive.ObjectID) error
	SetFollowing(ctx context.Context, followerID, targetID primitive.ObjectID, following bool) error
	SetLiked(ctx context.Context, userID, videoID primitive.ObjectID, liked bool) error
	RecordHistory(ctx context.Context, userID, videoID primitive.ObjectID, watchedAt time.Time) error
}

// VideoStore captures persistence for the video catalog.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error)
	Search(ctx context.Context, query, sortOrder string) ([]models.Video, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Video, error)
	ListByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Video, error)
	ListLikedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Video, error)
	Update(ctx context.Context, id primitive.ObjectID, update repositories.VideoUpdate) (models.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetLike(ctx context.Context, videoID, userID primitive.ObjectID, liked bool) (int64, error)
	AppendComment(ctx context.Context, videoID primitive.ObjectID, comment models.Comment) (models.Video, error)
	IncrementViews(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

// SessionManager issues, refreshes, and validates authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// FederatedProvider resolves an OAuth authorization code to an identity.
type FederatedProvider interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (auth.FederatedIdentity, error)
}

// UploadSigner authorizes direct client uploads to the object store.
type UploadSigner interface {
	PresignUpload(ctx context.Context, key string, ttl time.Duration) (storage.PresignedUpload, error)
}

// MediaIngestor schedules background mirroring of uploaded media.
type MediaIngestor interface {
	Enqueue(ctx context.Context, job media.Job) error
}
