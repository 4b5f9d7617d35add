package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/models"
)

// userSummary is the public slice of a user attached to videos and comments.
type userSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type commentView struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type videoView struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	VideoURL       string                `json:"videoUrl"`
	ThumbnailURL   string                `json:"thumbnailUrl"`
	Controls       bool                  `json:"controls"`
	Transformation models.Transformation `json:"transformation"`
	Owner          userSummary           `json:"owner"`
	LikesCount     int                   `json:"likesCount"`
	Comments       []commentView         `json:"comments"`
	Views          int64                 `json:"views"`
	AssetURL       string                `json:"assetUrl,omitempty"`
	AssetStatus    string                `json:"assetStatus,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// summarize builds the public representation of a user.
func summarize(user models.User) userSummary {
	return userSummary{
		ID:     user.ID.Hex(),
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}
}

// resolveUsers fetches the referenced users and indexes them by id. Ids that
// no longer resolve are simply absent from the map; views fall back to an
// id-only summary for them.
func resolveUsers(ctx context.Context, users UserStore, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	resolved, err := users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.User, len(resolved))
	for _, user := range resolved {
		byID[user.ID] = user
	}
	return byID, nil
}

func summaryFor(byID map[primitive.ObjectID]models.User, id primitive.ObjectID) userSummary {
	if user, ok := byID[id]; ok {
		return summarize(user)
	}
	return userSummary{ID: id.Hex()}
}

func newCommentViews(comments []models.Comment, byID map[primitive.ObjectID]models.User) []commentView {
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		author := summaryFor(byID, c.UserID)
		views = append(views, commentView{
			UserID:    author.ID,
			Name:      author.Name,
			Email:     author.Email,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return views
}

func newVideoView(video models.Video, byID map[primitive.ObjectID]models.User) videoView {
	return videoView{
		ID:             video.ID.Hex(),
		Title:          video.Title,
		Description:    video.Description,
		VideoURL:       video.VideoURL,
		ThumbnailURL:   video.ThumbnailURL,
		Controls:       video.Controls,
		Transformation: video.Transformation,
		Owner:          summaryFor(byID, video.UserID),
		LikesCount:     len(video.Likes),
		Comments:       newCommentViews(video.Comments, byID),
		Views:          video.Views,
		AssetURL:       video.AssetURL,
		AssetStatus:    video.AssetStatus,
		CreatedAt:      video.CreatedAt,
	}
}

func commentAuthorIDs(comments []models.Comment) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	return ids
}

// videoUserIDs collects every user referenced by the given videos: owners
// and comment authors.
func videoUserIDs(videos []models.Video) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, v := range videos {
		ids = append(ids, v.UserID)
		for _, c := range v.Comments {
			ids = append(ids, c.UserID)
		}
	}
	return ids
}

// newVideoViews resolves all referenced users once and maps every video
// through newVideoView.
func newVideoViews(ctx context.Context, users UserStore, videos []models.Video) ([]videoView, error) {
	byID, err := resolveUsers(ctx, users, videoUserIDs(videos))
	if err != nil {
		return nil, err
	}

	views := make([]videoView, 0, len(videos))
	for _, v := range videos {
		views = append(views, newVideoView(v, byID))
	}
	return views, nil
}
