package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryLimit bounds the watch history kept on each user document.
const HistoryLimit = 10

// Default presentation hints applied to newly uploaded videos.
const (
	DefaultVideoWidth   = 1080
	DefaultVideoHeight  = 1920
	DefaultVideoQuality = 80
)

// User represents an account within the ReelTide platform. The social graph
// is embedded: Following and Followers are symmetric sets of user ids, Liked
// is a set of video ids, and History holds the most recently watched videos,
// newest first, never more than HistoryLimit entries.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name,omitempty" json:"name,omitempty"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Avatar    string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Uploaded  []primitive.ObjectID `bson:"uploaded,omitempty" json:"uploaded,omitempty"`
	Liked     []primitive.ObjectID `bson:"liked,omitempty" json:"liked,omitempty"`
	Following []primitive.ObjectID `bson:"following,omitempty" json:"following,omitempty"`
	Followers []primitive.ObjectID `bson:"followers,omitempty" json:"followers,omitempty"`
	History   []HistoryEntry       `bson:"history,omitempty" json:"history,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HistoryEntry records a single watched video on a user document.
type HistoryEntry struct {
	VideoID   primitive.ObjectID `bson:"videoId" json:"videoId"`
	WatchedAt time.Time          `bson:"watchedAt" json:"watchedAt"`
}

// IsFollowing reports whether the user currently follows the target.
func (u User) IsFollowing(target primitive.ObjectID) bool {
	for _, id := range u.Following {
		if id == target {
			return true
		}
	}
	return false
}

// Transformation carries playback presentation hints. It never affects the
// stored media.
type Transformation struct {
	Height  int `bson:"height" json:"height"`
	Width   int `bson:"width" json:"width"`
	Quality int `bson:"quality,omitempty" json:"quality,omitempty"`
}

// Comment is an embedded sub-document on a video. Comments are append-only
// and kept in insertion order.
type Comment struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Video represents a catalog entry. Likes is a set of user ids (presence
// means "liked"), Views only ever increases, and UserID is immutable after
// creation.
type Video struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title          string               `bson:"title" json:"title"`
	Description    string               `bson:"description" json:"description"`
	VideoURL       string               `bson:"videoUrl" json:"videoUrl"`
	ThumbnailURL   string               `bson:"thumbnailUrl" json:"thumbnailUrl"`
	Controls       bool                 `bson:"controls" json:"controls"`
	Transformation Transformation       `bson:"transformation" json:"transformation"`
	UserID         primitive.ObjectID   `bson:"userId" json:"userId"`
	Likes          []primitive.ObjectID `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments       []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
	Views          int64                `bson:"views" json:"views"`
	AssetURL       string               `bson:"assetUrl,omitempty" json:"assetUrl,omitempty"`
	AssetStatus    string               `bson:"assetStatus,omitempty" json:"assetStatus,omitempty"`
	AssetSize      int64                `bson:"assetSize,omitempty" json:"assetSize,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

const (
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
	AssetStatusFailed  = "failed"
)

// HasLike reports whether the given user id is present in the like set.
func (v Video) HasLike(userID primitive.ObjectID) bool {
	for _, id := range v.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
