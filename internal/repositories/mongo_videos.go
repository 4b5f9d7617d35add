package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reeltide/backend/internal/models"
)

const videosCollection = "videos"

// MongoVideoRepository provides MongoDB-backed persistence for the video
// catalog.
type MongoVideoRepository struct {
	videos *mongo.Collection
}

// NewMongoVideoRepository constructs a video repository backed by MongoDB.
func NewMongoVideoRepository(database *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{videos: database.Collection(videosCollection)}
}

// Create persists a new video record.
func (r *MongoVideoRepository) Create(ctx context.Context, video models.Video) error {
	if _, err := r.videos.InsertOne(ctx, video); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// FindByID fetches a video by identifier.
func (r *MongoVideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	var video models.Video
	err := r.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("find video by id: %w", err)
	}
	return video, nil
}

// FindByIDs fetches the videos whose identifiers appear in ids. Missing
// identifiers are silently skipped.
func (r *MongoVideoRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// Search returns catalog entries matching the query, ordered per sortOrder.
// The like-count ordering is computed from the embedded like set.
func (r *MongoVideoRepository) Search(ctx context.Context, query, sortOrder string) ([]models.Video, error) {
	filter := bson.M{}
	if query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}}
	}

	if sortOrder == SortLiked {
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: filter}},
			{{Key: "$addFields", Value: bson.M{
				"likesCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "likesCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
			{{Key: "$project", Value: bson.M{"likesCount": 0}}},
		}
		cursor, err := r.videos.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, fmt.Errorf("search videos by likes: %w", err)
		}
		defer cursor.Close(ctx)

		var videos []models.Video
		if err := cursor.All(ctx, &videos); err != nil {
			return nil, fmt.Errorf("decode videos: %w", err)
		}
		return videos, nil
	}

	return r.list(ctx, filter, bson.D{{Key: "createdAt", Value: -1}})
}

// ListByOwner returns the videos uploaded by a single owner, newest first.
func (r *MongoVideoRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Video, error) {
	return r.list(ctx, bson.M{"userId": ownerID}, bson.D{{Key: "createdAt", Value: -1}})
}

// ListByOwners returns videos owned by any of the provided users, newest
// first. An empty owner set yields an empty result.
func (r *MongoVideoRepository) ListByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Video, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, bson.M{"userId": bson.M{"$in": ownerIDs}}, bson.D{{Key: "createdAt", Value: -1}})
}

// ListLikedBy returns videos whose like set contains the user.
func (r *MongoVideoRepository) ListLikedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Video, error) {
	return r.list(ctx, bson.M{"likes": userID}, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *MongoVideoRepository) list(ctx context.Context, filter bson.M, sort bson.D) ([]models.Video, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := r.videos.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

// Update applies the provided metadata fields and returns the updated record.
func (r *MongoVideoRepository) Update(ctx context.Context, id primitive.ObjectID, update VideoUpdate) (models.Video, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.ThumbnailURL != nil {
		set["thumbnailUrl"] = *update.ThumbnailURL
	}
	if update.Controls != nil {
		set["controls"] = *update.Controls
	}
	if update.Quality != nil {
		set["transformation.quality"] = *update.Quality
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.videos.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	return video, nil
}

// Delete removes the video record.
func (r *MongoVideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.videos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLike adds or removes the user from the video's like set and returns the
// like count of the updated document. $addToSet and $pull give set semantics
// even though the field is stored as a list.
func (r *MongoVideoRepository) SetLike(ctx context.Context, videoID, userID primitive.ObjectID, liked bool) (int64, error) {
	op := "$pull"
	if liked {
		op = "$addToSet"
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.videos.FindOneAndUpdate(ctx, bson.M{"_id": videoID},
		bson.M{op: bson.M{"likes": userID}}, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("update like set: %w", err)
	}
	return int64(len(video.Likes)), nil
}

// AppendComment appends the comment and returns the updated video.
func (r *MongoVideoRepository) AppendComment(ctx context.Context, videoID primitive.ObjectID, comment models.Comment) (models.Video, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.videos.FindOneAndUpdate(ctx, bson.M{"_id": videoID},
		bson.M{"$push": bson.M{"comments": comment}}, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("append comment: %w", err)
	}
	return video, nil
}

// IncrementViews bumps the view counter by exactly one and returns the new
// count. Every call increments; there is no de-duplication.
func (r *MongoVideoRepository) IncrementViews(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.videos.FindOneAndUpdate(ctx, bson.M{"_id": videoID},
		bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return video.Views, nil
}

// MarkAssetReady records a successfully mirrored asset.
func (r *MongoVideoRepository) MarkAssetReady(ctx context.Context, videoID primitive.ObjectID, location string, size int64) error {
	res, err := r.videos.UpdateByID(ctx, videoID, bson.M{"$set": bson.M{
		"assetUrl":    location,
		"assetStatus": models.AssetStatusReady,
		"assetSize":   size,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("mark asset ready: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAssetFailed records a failed mirroring attempt.
func (r *MongoVideoRepository) MarkAssetFailed(ctx context.Context, videoID primitive.ObjectID) error {
	res, err := r.videos.UpdateByID(ctx, videoID, bson.M{"$set": bson.M{
		"assetStatus": models.AssetStatusFailed,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("mark asset failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureVideoIndexes creates the owner lookup index used by feeds and profile
// pages.
func EnsureVideoIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(videosCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure videos indexes: %w", err)
	}
	return nil
}
