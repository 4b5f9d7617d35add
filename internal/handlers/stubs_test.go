package handlers

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/auth"
	"github.com/reeltide/backend/internal/models"
	"github.com/reeltide/backend/internal/repositories"
)

// inMemoryUserStore mimics the Mongo-backed user repository, including the
// symmetric follow writes and the bounded history semantics.
type inMemoryUserStore struct {
	users map[primitive.ObjectID]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *inMemoryUserStore) add(user models.User) models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = user
	return user
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	found := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			found = append(found, user)
		}
	}
	return found, nil
}

func (s *inMemoryUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, update repositories.ProfileUpdate) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if update.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *update.Email {
				return models.User{}, repositories.ErrConflict
			}
		}
		user.Email = *update.Email
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	s.users[id] = user
	return user, nil
}

func (s *inMemoryUserStore) AddUploaded(_ context.Context, userID, videoID primitive.ObjectID) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Uploaded = appendUnique(user.Uploaded, videoID)
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) SetFollowing(_ context.Context, followerID, targetID primitive.ObjectID, following bool) error {
	follower, ok := s.users[followerID]
	if !ok {
		return repositories.ErrNotFound
	}
	target, ok := s.users[targetID]
	if !ok {
		return repositories.ErrNotFound
	}

	if following {
		follower.Following = appendUnique(follower.Following, targetID)
		target.Followers = appendUnique(target.Followers, followerID)
	} else {
		follower.Following = removeID(follower.Following, targetID)
		target.Followers = removeID(target.Followers, followerID)
	}
	s.users[followerID] = follower
	s.users[targetID] = target
	return nil
}

func (s *inMemoryUserStore) SetLiked(_ context.Context, userID, videoID primitive.ObjectID, liked bool) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	if liked {
		user.Liked = appendUnique(user.Liked, videoID)
	} else {
		user.Liked = removeID(user.Liked, videoID)
	}
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) RecordHistory(_ context.Context, userID, videoID primitive.ObjectID, watchedAt time.Time) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}

	entries := make([]models.HistoryEntry, 0, len(user.History)+1)
	entries = append(entries, models.HistoryEntry{VideoID: videoID, WatchedAt: watchedAt})
	for _, entry := range user.History {
		if entry.VideoID == videoID {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) > models.HistoryLimit {
		entries = entries[:models.HistoryLimit]
	}
	user.History = entries
	s.users[userID] = user
	return nil
}

// inMemoryVideoStore mimics the Mongo-backed video repository.
type inMemoryVideoStore struct {
	videos map[primitive.ObjectID]models.Video
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[primitive.ObjectID]models.Video)}
}

func (s *inMemoryVideoStore) add(video models.Video) models.Video {
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	s.videos[video.ID] = video
	return video
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	found := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		if video, ok := s.videos[id]; ok {
			found = append(found, video)
		}
	}
	return found, nil
}

func (s *inMemoryVideoStore) Search(_ context.Context, query, sortOrder string) ([]models.Video, error) {
	matched := make([]models.Video, 0, len(s.videos))
	needle := strings.ToLower(query)
	for _, video := range s.videos {
		if needle != "" &&
			!strings.Contains(strings.ToLower(video.Title), needle) &&
			!strings.Contains(strings.ToLower(video.Description), needle) {
			continue
		}
		matched = append(matched, video)
	}

	switch sortOrder {
	case repositories.SortLiked:
		sort.Slice(matched, func(i, j int) bool {
			return len(matched[i].Likes) > len(matched[j].Likes)
		})
	default:
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}
	return matched, nil
}

func (s *inMemoryVideoStore) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Video, error) {
	return s.byOwners([]primitive.ObjectID{ownerID}), nil
}

func (s *inMemoryVideoStore) ListByOwners(_ context.Context, ownerIDs []primitive.ObjectID) ([]models.Video, error) {
	return s.byOwners(ownerIDs), nil
}

func (s *inMemoryVideoStore) byOwners(ownerIDs []primitive.ObjectID) []models.Video {
	owners := make(map[primitive.ObjectID]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}

	matched := make([]models.Video, 0)
	for _, video := range s.videos {
		if _, ok := owners[video.UserID]; ok {
			matched = append(matched, video)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func (s *inMemoryVideoStore) ListLikedBy(_ context.Context, userID primitive.ObjectID) ([]models.Video, error) {
	matched := make([]models.Video, 0)
	for _, video := range s.videos {
		if video.HasLike(userID) {
			matched = append(matched, video)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *inMemoryVideoStore) Update(_ context.Context, id primitive.ObjectID, update repositories.VideoUpdate) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	if update.Title != nil {
		video.Title = *update.Title
	}
	if update.Description != nil {
		video.Description = *update.Description
	}
	if update.ThumbnailURL != nil {
		video.ThumbnailURL = *update.ThumbnailURL
	}
	if update.Controls != nil {
		video.Controls = *update.Controls
	}
	if update.Quality != nil {
		video.Transformation.Quality = *update.Quality
	}
	s.videos[id] = video
	return video, nil
}

func (s *inMemoryVideoStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *inMemoryVideoStore) SetLike(_ context.Context, videoID, userID primitive.ObjectID, liked bool) (int64, error) {
	video, ok := s.videos[videoID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if liked {
		video.Likes = appendUnique(video.Likes, userID)
	} else {
		video.Likes = removeID(video.Likes, userID)
	}
	s.videos[videoID] = video
	return int64(len(video.Likes)), nil
}

func (s *inMemoryVideoStore) AppendComment(_ context.Context, videoID primitive.ObjectID, comment models.Comment) (models.Video, error) {
	video, ok := s.videos[videoID]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	video.Comments = append(video.Comments, comment)
	s.videos[videoID] = video
	return video, nil
}

func (s *inMemoryVideoStore) IncrementViews(_ context.Context, videoID primitive.ObjectID) (int64, error) {
	video, ok := s.videos[videoID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	return video.Views, nil
}

func appendUnique(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func newTestSessionManager() *auth.Manager {
	return auth.NewManager(time.Minute, time.Hour, auth.NewInMemorySessionStore())
}

// authorize issues a session for the user and sets the bearer header.
func authorize(t *testing.T, manager *auth.Manager, r *http.Request, userID primitive.ObjectID) {
	t.Helper()

	tokens, err := manager.Issue(r.Context(), userID.Hex())
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	r.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
}
