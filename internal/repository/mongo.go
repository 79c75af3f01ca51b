package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"chessgame/internal/domain/game"
	errs "chessgame/internal/errors"
)

const gamesCollection = "games"

type MongoGameRepository struct {
	mongo   *mongo.Database
	log     *zap.SugaredLogger
	timeout time.Duration
}

func NewMongoGameRepository(db *mongo.Database, log *zap.SugaredLogger, timeout time.Duration) *MongoGameRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoGameRepository{
		mongo:   db,
		log:     log,
		timeout: timeout,
	}
}

func (m *MongoGameRepository) Save(ctx context.Context, g game.Game) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	prepareForSave(&g)
	collection := m.mongo.Collection(gamesCollection)

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": g.ID}, g, opts)
	if err != nil {
		m.log.Errorf("failed to save game %s to database: %v", g.ID, err)
		return "", err
	}
	return g.ID, nil
}

func (m *MongoGameRepository) FindByID(ctx context.Context, id string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	collection := m.mongo.Collection(gamesCollection)

	var found game.Game
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errs.ErrGameNotFound
	} else if err != nil {
		m.log.Error(err)
		return game.Game{}, err
	}
	return found, nil
}

func (m *MongoGameRepository) ListGameIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	collection := m.mongo.Collection(gamesCollection)

	values, err := collection.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		m.log.Error(err)
		return nil, err
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected game id type %T", v)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
