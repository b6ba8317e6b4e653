package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/velora/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReelRepository defines the interface for reel data operations
type ReelRepository interface {
	CreateReel(ctx context.Context, reel *models.Reel) error
	GetReelByID(ctx context.Context, id string) (*models.Reel, error)
	GetAllReels(ctx context.Context) ([]models.Reel, error)
	GetFeedReels(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Reel, error)
	GetReelsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Reel, error)
	UpdateReel(ctx context.Context, id string, fields map[string]interface{}) (*models.Reel, error)
	DeleteReel(ctx context.Context, id string) error
	AddLike(ctx context.Context, reelID string, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, reelID string, userID primitive.ObjectID) error
	PushComment(ctx context.Context, reelID string, comment models.Comment) error
	PullComment(ctx context.Context, reelID string, commentID primitive.ObjectID) error
	IncrementViews(ctx context.Context, reelID string) error
}

// MongoReelRepository implements ReelRepository for MongoDB
type MongoReelRepository struct {
	collection *mongo.Collection
}

// NewMongoReelRepository creates a new MongoReelRepository
func NewMongoReelRepository(db *mongo.Database) *MongoReelRepository {
	return &MongoReelRepository{collection: db.Collection("reels")}
}

// CreateReel creates a new reel in MongoDB
func (r *MongoReelRepository) CreateReel(ctx context.Context, reel *models.Reel) error {
	reel.ID = primitive.NewObjectID()
	reel.CreatedAt = time.Now()
	reel.UpdatedAt = time.Now()
	if reel.Likes == nil {
		reel.Likes = []primitive.ObjectID{}
	}
	if reel.Comments == nil {
		reel.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, reel)
	return err
}

// GetReelByID retrieves a reel by ID from MongoDB
func (r *MongoReelRepository) GetReelByID(ctx context.Context, id string) (*models.Reel, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reel ID format: %w", err)
	}

	var reel models.Reel
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&reel)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("reel not found")
		}
		return nil, err
	}
	return &reel, nil
}

// GetAllReels retrieves all reels from MongoDB, newest first
func (r *MongoReelRepository) GetAllReels(ctx context.Context) ([]models.Reel, error) {
	return r.findReels(ctx, bson.M{})
}

// GetFeedReels retrieves reels owned by any of the given users, newest first
func (r *MongoReelRepository) GetFeedReels(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Reel, error) {
	return r.findReels(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
}

// GetReelsByUserID retrieves reels by a specific user, newest first
func (r *MongoReelRepository) GetReelsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Reel, error) {
	return r.findReels(ctx, bson.M{"user_id": userID})
}

func (r *MongoReelRepository) findReels(ctx context.Context, filter bson.M) ([]models.Reel, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reels []models.Reel
	if err = cursor.All(ctx, &reels); err != nil {
		return nil, err
	}
	return reels, nil
}

// UpdateReel applies the given fields to a reel and returns the updated document
func (r *MongoReelRepository) UpdateReel(ctx context.Context, id string, fields map[string]interface{}) (*models.Reel, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reel ID format: %w", err)
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	var reel models.Reel
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&reel)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("reel not found")
		}
		return nil, err
	}
	return &reel, nil
}

// DeleteReel deletes a reel by ID from MongoDB
func (r *MongoReelRepository) DeleteReel(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reel ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("reel not found")
	}
	return nil
}

// AddLike adds a user to the reel's likes set
func (r *MongoReelRepository) AddLike(ctx context.Context, reelID string, userID primitive.ObjectID) error {
	return r.updateByID(ctx, reelID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike removes a user from the reel's likes set
func (r *MongoReelRepository) RemoveLike(ctx context.Context, reelID string, userID primitive.ObjectID) error {
	return r.updateByID(ctx, reelID, bson.M{"$pull": bson.M{"likes": userID}})
}

// PushComment inserts a comment at the front of the ordered list
func (r *MongoReelRepository) PushComment(ctx context.Context, reelID string, comment models.Comment) error {
	return r.updateByID(ctx, reelID, bson.M{
		"$push": bson.M{
			"comments": bson.M{
				"$each":     []models.Comment{comment},
				"$position": 0,
			},
		},
	})
}

// PullComment removes the single matching comment from the ordered list
func (r *MongoReelRepository) PullComment(ctx context.Context, reelID string, commentID primitive.ObjectID) error {
	return r.updateByID(ctx, reelID, bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
}

// IncrementViews increments the reel's view counter
func (r *MongoReelRepository) IncrementViews(ctx context.Context, reelID string) error {
	return r.updateByID(ctx, reelID, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *MongoReelRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reel ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reel not found")
	}
	return nil
}
