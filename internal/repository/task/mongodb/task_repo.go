package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"taskManager/internal/config"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) toTask() *task.Task {
	return &task.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      task.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type Storage struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// New connects to MongoDB and retries the initial ping with exponential
// backoff, so the API can start before the database is ready.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(connectTimeout).
		SetMaxConnIdleTime(cfg.IdleTimeout)
	if cfg.MaxConnections > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxConnections))
	}
	if cfg.MinConnections > 0 {
		opts.SetMinPoolSize(uint64(cfg.MinConnections))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("Repository: failed to create MongoDB client", err)
		return nil, fmt.Errorf("create mongo client: %w", err)
	}

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	}
	retries := uint64(0)
	if cfg.ConnectRetries > 0 {
		retries = uint64(cfg.ConnectRetries)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	err = backoff.RetryNotify(ping, policy, func(err error, next time.Duration) {
		logger.Warn("Repository: MongoDB ping failed, retrying",
			zap.Error(err),
			zap.Duration("retry_in", next))
	})
	if err != nil {
		logger.Error("Repository: MongoDB ping failed", err)
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	storage := &Storage{
		client:     client,
		collection: client.Database(cfg.Name).Collection(cfg.Collection),
		now:        time.Now,
	}

	if err := storage.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Repository: connected to MongoDB",
		zap.String("database", cfg.Name),
		zap.String("collection", cfg.Collection))
	return storage, nil
}

func (s *Storage) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		logger.Error("Repository: failed to close MongoDB connections", err)
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	logger.Info("Repository: MongoDB connections closed")
	return nil
}

// EnsureIndexes backs the newest-first listing and the status filter.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		logger.Error("Repository: failed to create indexes", err)
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Repository: MongoDB ping failed", err)
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	// BSON dates keep millisecond precision
	now := s.now().UTC().Truncate(time.Millisecond)
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       taskToCreate.Title,
		Description: taskToCreate.Description,
		Status:      string(taskToCreate.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("insert task: %w", err)
	}

	*taskToCreate = *doc.toTask()
	warnIfSlow("insert", start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, rawID string) (*task.Task, error) {
	start := time.Now()

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	var doc taskDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("get task: %w", err)
	}

	warnIfSlow("find_one", start)
	return doc.toTask(), nil
}

// Update overwrites the mutable fields; concurrent writers race and the last
// one wins.
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	id, err := parseID(taskToUpdate.ID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"title":       taskToUpdate.Title,
		"description": taskToUpdate.Description,
		"status":      string(taskToUpdate.Status),
		"updatedAt":   s.now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: failed to update task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("update task: %w", err)
	}

	*taskToUpdate = *doc.toTask()
	warnIfSlow("find_one_and_update", start)
	return nil
}

func (s *Storage) Delete(ctx context.Context, rawID string) error {
	start := time.Now()

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete_one", start)
	return nil
}

func (s *Storage) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.collection.Find(ctx, listQuery(filter), opts)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		logger.Error("Repository: failed to decode tasks", err)
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*task.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toTask())
	}

	warnIfSlow("find", start)
	return tasks, nil
}

// listQuery quotes the keyword so it is matched as a literal substring.
func listQuery(filter task.Filter) bson.M {
	query := bson.M{}
	if filter.Keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Keyword), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	return query
}

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, repo.ErrInvalidID
	}
	return id, nil
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}
