package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reeltide/backend/internal/auth"
)

const sessionsCollection = "sessions"

type sessionDocument struct {
	AccessToken      string    `bson:"accessToken"`
	RefreshToken     string    `bson:"_id"`
	UserID           string    `bson:"userId"`
	AccessExpiresAt  time.Time `bson:"accessExpiresAt"`
	RefreshExpiresAt time.Time `bson:"refreshExpiresAt"`
}

// MongoSessionStore implements auth.SessionStore on the sessions collection,
// keyed by refresh token with a secondary access-token index.
type MongoSessionStore struct {
	sessions *mongo.Collection
}

// NewMongoSessionStore constructs a session store backed by MongoDB.
func NewMongoSessionStore(database *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{sessions: database.Collection(sessionsCollection)}
}

// Save persists the session record.
func (s *MongoSessionStore) Save(ctx context.Context, session auth.Session) error {
	doc := sessionDocument{
		AccessToken:      session.AccessToken,
		RefreshToken:     session.RefreshToken,
		UserID:           session.UserID,
		AccessExpiresAt:  session.AccessExpiresAt,
		RefreshExpiresAt: session.RefreshExpiresAt,
	}
	if _, err := s.sessions.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByRefreshToken retrieves a session by refresh token.
func (s *MongoSessionStore) FindByRefreshToken(ctx context.Context, refreshToken string) (auth.Session, error) {
	return s.findOne(ctx, bson.M{"_id": refreshToken})
}

// FindByAccessToken retrieves a session by access token.
func (s *MongoSessionStore) FindByAccessToken(ctx context.Context, accessToken string) (auth.Session, error) {
	return s.findOne(ctx, bson.M{"accessToken": accessToken})
}

func (s *MongoSessionStore) findOne(ctx context.Context, filter bson.M) (auth.Session, error) {
	var doc sessionDocument
	err := s.sessions.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, fmt.Errorf("find session: %w", err)
	}
	return auth.Session{
		AccessToken:      doc.AccessToken,
		RefreshToken:     doc.RefreshToken,
		UserID:           doc.UserID,
		AccessExpiresAt:  doc.AccessExpiresAt,
		RefreshExpiresAt: doc.RefreshExpiresAt,
	}, nil
}

// Delete removes the session associated with the refresh token.
func (s *MongoSessionStore) Delete(ctx context.Context, refreshToken string) error {
	if _, err := s.sessions.DeleteOne(ctx, bson.M{"_id": refreshToken}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// EnsureSessionIndexes creates the access-token lookup index and a TTL index
// that reaps sessions once the refresh token expires.
func EnsureSessionIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(sessionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "accessToken", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "refreshExpiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	if err != nil {
		return fmt.Errorf("ensure sessions indexes: %w", err)
	}
	return nil
}
