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

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	GetSuggestions(ctx context.Context, userID string) ([]models.User, error)
	AddFollowing(ctx context.Context, userID, targetID string) error
	RemoveFollowing(ctx context.Context, userID, targetID string) error
	AddFollower(ctx context.Context, userID, followerID string) error
	RemoveFollower(ctx context.Context, userID, followerID string) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by ID from MongoDB
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email from MongoDB
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username from MongoDB
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the given fields to a user and returns the updated document
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces a user's password hash
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{"password": passwordHash, "updated_at": time.Now()},
	})
	return err
}

// SearchUsers searches for users by username (case-insensitive), limited to 20 results
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	filter := bson.M{"username": bson.M{"$regex": query, "$options": "i"}}
	findOptions := options.Find().SetLimit(20)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetSuggestions returns up to 10 users the given user does not follow yet,
// most-followed first.
func (r *MongoUserRepository) GetSuggestions(ctx context.Context, userID string) ([]models.User, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	exclude := append([]primitive.ObjectID{user.ID}, user.Following...)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": exclude}}}},
		{{Key: "$addFields", Value: bson.M{"follower_count": bson.M{"$size": "$followers"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "follower_count", Value: -1}}}},
		{{Key: "$limit", Value: 10}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddFollowing adds targetID to userID's following set
func (r *MongoUserRepository) AddFollowing(ctx context.Context, userID, targetID string) error {
	return r.updateEdge(ctx, userID, targetID, "$addToSet", "following")
}

// RemoveFollowing removes targetID from userID's following set
func (r *MongoUserRepository) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	return r.updateEdge(ctx, userID, targetID, "$pull", "following")
}

// AddFollower adds followerID to userID's followers set
func (r *MongoUserRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	return r.updateEdge(ctx, userID, followerID, "$addToSet", "followers")
}

// RemoveFollower removes followerID from userID's followers set
func (r *MongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return r.updateEdge(ctx, userID, followerID, "$pull", "followers")
}

// updateEdge applies a single set mutation ($addToSet or $pull) to one side
// of the follow relationship. $addToSet keeps the half-writes idempotent so a
// retried toggle cannot duplicate an edge.
func (r *MongoUserRepository) updateEdge(ctx context.Context, userID, otherID, op, field string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	otherObjID, err := primitive.ObjectIDFromHex(otherID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{op: bson.M{field: otherObjID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
