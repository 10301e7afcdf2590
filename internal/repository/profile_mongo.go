package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"edu_progress/internal/domain/profile"
	errs "edu_progress/internal/errors"
)

const (
	mongoOpTimeout = 5 * time.Second

	// MaxUpdateAttempts bounds compare-and-swap retries on version conflicts.
	MaxUpdateAttempts = 5
)

// MongoProfileStorage stores one document per user code. Updates are
// read-modify-write guarded by the document version field.
type MongoProfileStorage struct {
	collection *mongo.Collection
	log        *zap.SugaredLogger
}

func NewMongoProfileStorage(collection *mongo.Collection, log *zap.SugaredLogger) *MongoProfileStorage {
	return &MongoProfileStorage{collection: collection, log: log}
}

func (m *MongoProfileStorage) Get(ctx context.Context, code string) (profile.UserProfile, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var result profile.UserProfile
	err := m.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return profile.UserProfile{}, false, nil
	}
	if err != nil {
		m.log.Errorf("find profile %s: %v", code, err)
		return profile.UserProfile{}, false, fmt.Errorf("find profile: %w", err)
	}
	return result, true, nil
}

func (m *MongoProfileStorage) Exists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": code}, options.Count().SetLimit(1))
	if err != nil {
		m.log.Errorf("count profile %s: %v", code, err)
		return false, fmt.Errorf("count profile: %w", err)
	}
	return n > 0, nil
}

func (m *MongoProfileStorage) Insert(ctx context.Context, p profile.UserProfile) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	p.Version = 1
	if _, err := m.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.ErrDuplicateCode
		}
		m.log.Errorf("insert profile %s: %v", p.Code, err)
		return fmt.Errorf("insert profile: %w", err)
	}
	m.log.Infof("profile inserted with code: %s", p.Code)
	return nil
}

// AtomicUpdate loads the document, applies mutate to a copy and replaces the
// stored document only if nobody bumped the version in between. It reports
// false without calling mutate when the document does not exist.
func (m *MongoProfileStorage) AtomicUpdate(ctx context.Context, code string, mutate func(*profile.UserProfile) error) (bool, error) {
	for attempt := 1; attempt <= MaxUpdateAttempts; attempt++ {
		current, found, err := m.Get(ctx, code)
		if err != nil {
			return false, err
		}
		if !found {
			return false, nil
		}

		next := current.Clone()
		if err := mutate(&next); err != nil {
			if errors.Is(err, errs.ErrNoChange) {
				return true, nil
			}
			return true, err
		}
		next.Code = current.Code
		next.Version = current.Version + 1

		opCtx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
		res, err := m.collection.ReplaceOne(opCtx, bson.M{"_id": code, "version": current.Version}, next)
		cancel()
		if err != nil {
			m.log.Errorf("replace profile %s: %v", code, err)
			return true, fmt.Errorf("replace profile: %w", err)
		}
		if res.MatchedCount == 1 {
			return true, nil
		}
		m.log.Warnf("profile %s changed concurrently, retry %d", code, attempt)
	}
	return true, errs.ErrConcurrentUpdate
}
