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

// ConversationEntry is the per-partner aggregation result: the latest message
// exchanged with that partner and how many of their messages are still unread.
type ConversationEntry struct {
	PartnerID   primitive.ObjectID `bson:"_id"`
	LastMessage models.Message     `bson:"lastMessage"`
	UnreadCount int64              `bson:"unreadCount"`
}

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessagesBetween(ctx context.Context, userA, userB primitive.ObjectID) ([]models.Message, error)
	GetConversations(ctx context.Context, userID primitive.ObjectID) ([]ConversationEntry, error)
	MarkMessagesAsRead(ctx context.Context, senderID, receiverID primitive.ObjectID) (int64, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

// CreateMessage creates a new message with read=false
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.Read = false
	message.ReadAt = nil
	message.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// GetMessagesBetween retrieves the full history between two users, oldest
// first. The filter is symmetric, so the result is identical regardless of
// argument order.
func (r *MongoMessageRepository) GetMessagesBetween(ctx context.Context, userA, userB primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": userA, "receiver_id": userB},
		{"sender_id": userB, "receiver_id": userA},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetConversations returns one entry per distinct partner, each holding the
// chronologically latest message with that partner, newest conversation
// first. The grouping happens at the storage layer rather than by loading the
// full history into process memory.
func (r *MongoMessageRepository) GetConversations(ctx context.Context, userID primitive.ObjectID) ([]ConversationEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": []bson.M{
			{"sender_id": userID},
			{"receiver_id": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$addFields", Value: bson.M{
			"partner": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender_id", userID}},
				"$receiver_id",
				"$sender_id",
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$partner",
			"lastMessage": bson.M{"$first": "$$ROOT"},
			"unreadCount": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver_id", userID}},
					bson.M{"$eq": bson.A{"$read", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.created_at", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []ConversationEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkMessagesAsRead transitions all unread messages from senderID to
// receiverID into read=true with a read timestamp. Messages already read or
// in the other direction are untouched.
func (r *MongoMessageRepository) MarkMessagesAsRead(ctx context.Context, senderID, receiverID primitive.ObjectID) (int64, error) {
	now := time.Now()
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"sender_id": senderID, "receiver_id": receiverID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages as read: %w", err)
	}
	return res.ModifiedCount, nil
}
