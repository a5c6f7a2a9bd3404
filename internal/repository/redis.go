package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"washify/internal/config"
	"washify/internal/models"

	"github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("redis client is nil")

// RedisDraftRepository keeps booking form drafts as JSON values with a TTL.
type RedisDraftRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisDraftRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisDraftRepository {
	return &RedisDraftRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisDraftRepository) key(key string) string {
	return r.prefix + key
}

func (r *RedisDraftRepository) Load(ctx context.Context, key string) (*models.Draft, error) {
	if r.client == nil {
		return nil, ErrNilClient
	}
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft from redis: %w", err)
	}

	var draft models.Draft
	if err := json.Unmarshal(val, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

func (r *RedisDraftRepository) Save(ctx context.Context, key string, draft *models.Draft) error {
	if r.client == nil {
		return ErrNilClient
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set draft in redis: %w", err)
	}
	return nil
}

func (r *RedisDraftRepository) Clear(ctx context.Context, key string) error {
	if r.client == nil {
		return ErrNilClient
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return ErrNilClient
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
