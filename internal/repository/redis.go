package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chessgame/internal/domain/game"
	errs "chessgame/internal/errors"
)

const redisGameKeyPrefix = "chess:game:"

type RedisGameRepository struct {
	client  *redis.Client
	log     *zap.SugaredLogger
	timeout time.Duration
}

func NewRedisGameRepository(client *redis.Client, log *zap.SugaredLogger, timeout time.Duration) *RedisGameRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RedisGameRepository{
		client:  client,
		log:     log,
		timeout: timeout,
	}
}

func (r *RedisGameRepository) Save(ctx context.Context, g game.Game) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prepareForSave(&g)
	data, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode game %s: %w", g.ID, err)
	}

	if err = r.client.Set(ctx, redisGameKeyPrefix+g.ID, data, 0).Err(); err != nil {
		r.log.Errorf("failed to store game %s in redis: %v", g.ID, err)
		return "", err
	}
	return g.ID, nil
}

func (r *RedisGameRepository) FindByID(ctx context.Context, id string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, redisGameKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Game{}, errs.ErrGameNotFound
	} else if err != nil {
		r.log.Errorf("failed to load game %s from redis: %v", id, err)
		return game.Game{}, err
	}

	var g game.Game
	if err = json.Unmarshal(data, &g); err != nil {
		return game.Game{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return g, nil
}

func (r *RedisGameRepository) ListGameIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var ids []string
	iter := r.client.Scan(ctx, 0, redisGameKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), redisGameKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		r.log.Errorf("failed to scan games in redis: %v", err)
		return nil, err
	}

	sort.Strings(ids)
	return ids, nil
}
