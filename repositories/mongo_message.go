package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"sayit/domain"
	"sayit/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messagesCollection = "messages"

type mongoMessage struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	Recipient string    `bson:"recipient"`
	CardColor string    `bson:"cardColor"`
	CreatedAt time.Time `bson:"createdAt"`
	// Nanos breaks ties that the millisecond BSON date cannot.
	Nanos int64 `bson:"createdAtNanos"`
}

// MongoMessageRepository keeps the document layout of the original board collection.
type MongoMessageRepository struct {
	collection *mongo.Collection
	log        *slog.Logger
}

// ConnectMongo opens a client and checks the server is reachable.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func NewMongoMessageRepository(db *mongo.Database, log *slog.Logger) MongoMessageRepository {
	return MongoMessageRepository{collection: db.Collection(messagesCollection), log: log}
}

func (m MongoMessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	_, err := m.collection.InsertOne(ctx, mongoMessage{
		ID:        message.ID.String(),
		Content:   message.Content,
		Recipient: message.Recipient,
		CardColor: message.CardColor,
		CreatedAt: message.CreatedAt,
		Nanos:     message.CreatedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return nil
}

func (m MongoMessageRepository) GetLatestMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAtNanos", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	var docs []mongoMessage
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	messages := make([]domain.Message, 0, len(docs))
	for _, doc := range docs {
		message, err := fromMongo(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (m MongoMessageRepository) GetMessage(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	var doc mongoMessage
	err := m.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return domain.Message{}, errors.ErrMessageNotFound
	case err != nil:
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	message, err := fromMongo(doc)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return message, nil
}

func (m MongoMessageRepository) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	if res.DeletedCount == 0 {
		return errors.ErrMessageNotFound
	}
	return nil
}

func fromMongo(doc mongoMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(doc.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		Content:   doc.Content,
		Recipient: doc.Recipient,
		CardColor: doc.CardColor,
		CreatedAt: time.Unix(0, doc.Nanos).UTC(),
	}, nil
}
