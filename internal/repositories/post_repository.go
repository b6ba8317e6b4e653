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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetFeedPosts(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, fields map[string]interface{}) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID string, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID string, userID primitive.ObjectID) error
	PushComment(ctx context.Context, postID string, comment models.Comment) error
	PullComment(ctx context.Context, postID string, commentID primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all posts from MongoDB, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{})
}

// GetFeedPosts retrieves posts owned by any of the given users, newest first
func (r *MongoPostRepository) GetFeedPosts(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
}

// GetPostsByUserID retrieves posts by a specific user, newest first
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"user_id": userID})
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost applies the given fields to a post and returns the updated document
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// AddLike adds a user to the post's likes set
func (r *MongoPostRepository) AddLike(ctx context.Context, postID string, userID primitive.ObjectID) error {
	return r.updateByID(ctx, postID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike removes a user from the post's likes set
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID string, userID primitive.ObjectID) error {
	return r.updateByID(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
}

// PushComment inserts a comment at the front of the ordered list
// (most-recent-first).
func (r *MongoPostRepository) PushComment(ctx context.Context, postID string, comment models.Comment) error {
	return r.updateByID(ctx, postID, bson.M{
		"$push": bson.M{
			"comments": bson.M{
				"$each":     []models.Comment{comment},
				"$position": 0,
			},
		},
	})
}

// PullComment removes the single matching comment from the ordered list
func (r *MongoPostRepository) PullComment(ctx context.Context, postID string, commentID primitive.ObjectID) error {
	return r.updateByID(ctx, postID, bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
}

func (r *MongoPostRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}
