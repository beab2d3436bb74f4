package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat_gateway_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	messageCollection = "chat_messages"
	counterCollection = "counters"
	messageSequence   = "chat_messages"
)

type mongoMessageRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// NewMongoMessageRepository create MessageStore on mongo, ids come from a counter document
func NewMongoMessageRepository(db *mongo.Database) MessageStore {
	return &mongoMessageRepository{
		coll:     db.Collection(messageCollection),
		counters: db.Collection(counterCollection),
	}
}

// EnsureIndexes index channel_id and sender_id
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(messageCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "sender_id", Value: 1}}},
	})
	return err
}

// nextID $inc 為原子操作, id 單調遞增
func (r *mongoMessageRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": messageSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next message id: %w", err)
	}
	return counter.Seq, nil
}

func (r *mongoMessageRepository) CreateMessage(ctx context.Context, channelID, senderID int64, content string) (*domain.Message, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	m := &domain.Message{
		ID:        id,
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (r *mongoMessageRepository) MarkMessageRead(ctx context.Context, messageID int64) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": messageID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return false, fmt.Errorf("mark message %d read: %w", messageID, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoMessageRepository) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	var m domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

func (r *mongoMessageRepository) find(ctx context.Context, filter bson.M) ([]domain.Message, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	ms := []domain.Message{}
	if err := cur.All(ctx, &ms); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return ms, nil
}

func (r *mongoMessageRepository) ListBySender(ctx context.Context, senderID int64) ([]domain.Message, error) {
	return r.find(ctx, bson.M{"sender_id": senderID})
}

func (r *mongoMessageRepository) ListByChannel(ctx context.Context, channelID int64) ([]domain.Message, error) {
	return r.find(ctx, bson.M{"channel_id": channelID})
}

func (r *mongoMessageRepository) UpdateContent(ctx context.Context, messageID int64, content string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": messageID}, bson.M{"$set": bson.M{"content": content}})
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mongoMessageRepository) Delete(ctx context.Context, messageID int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": messageID})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mongoMessageRepository) DeleteByChannel(ctx context.Context, channelID int64) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"channel_id": channelID}); err != nil {
		return fmt.Errorf("delete channel messages: %w", err)
	}
	return nil
}
