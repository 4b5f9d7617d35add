package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reeltide/backend/internal/models"
)

const usersCollection = "users"

// MongoUserRepository provides MongoDB-backed persistence for users.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository constructs a user repository backed by MongoDB.
func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: database.Collection(usersCollection)}
}

// Create persists a new user record.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) error {
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail fetches a user by their email address.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// FindByIDs fetches the users whose identifiers appear in ids. Missing
// identifiers are silently skipped.
func (r *MongoUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies the provided profile fields and returns the updated
// record.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// AddUploaded links a video into the owner's uploaded list.
func (r *MongoUserRepository) AddUploaded(ctx context.Context, userID, videoID primitive.ObjectID) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.M{"$addToSet": bson.M{"uploaded": videoID}})
	if err != nil {
		return fmt.Errorf("add uploaded video: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFollowing maintains the symmetric following/followers pair across two
// user documents. Each side is a single atomic array mutation; the pair
// itself is not transactional, so a failure on the second write is surfaced
// with the first write already committed.
func (r *MongoUserRepository) SetFollowing(ctx context.Context, followerID, targetID primitive.ObjectID, following bool) error {
	op := "$pull"
	if following {
		op = "$addToSet"
	}

	res, err := r.users.UpdateByID(ctx, followerID, bson.M{op: bson.M{"following": targetID}})
	if err != nil {
		return fmt.Errorf("update following set: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	res, err = r.users.UpdateByID(ctx, targetID, bson.M{op: bson.M{"followers": followerID}})
	if err != nil {
		return fmt.Errorf("update followers set: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLiked adds or removes a video from the user's liked set.
func (r *MongoUserRepository) SetLiked(ctx context.Context, userID, videoID primitive.ObjectID, liked bool) error {
	op := "$pull"
	if liked {
		op = "$addToSet"
	}

	res, err := r.users.UpdateByID(ctx, userID, bson.M{op: bson.M{"liked": videoID}})
	if err != nil {
		return fmt.Errorf("update liked set: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordHistory updates the bounded watch history: any stale entry for the
// video is removed first, then a fresh entry is pushed with the list sorted
// newest-first and truncated to models.HistoryLimit. The two steps are
// independent writes; see the service documentation for the accepted race.
func (r *MongoUserRepository) RecordHistory(ctx context.Context, userID, videoID primitive.ObjectID, watchedAt time.Time) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"history": bson.M{"videoId": videoID}},
	})
	if err != nil {
		return fmt.Errorf("prune history entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	entry := models.HistoryEntry{VideoID: videoID, WatchedAt: watchedAt}
	_, err = r.users.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"history": bson.M{
			"$each":  bson.A{entry},
			"$sort":  bson.M{"watchedAt": -1},
			"$slice": models.HistoryLimit,
		}},
	})
	if err != nil {
		return fmt.Errorf("push history entry: %w", err)
	}
	return nil
}

// EnsureUserIndexes creates the unique email index required for account
// lookup and registration conflict detection.
func EnsureUserIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure users email index: %w", err)
	}
	return nil
}
