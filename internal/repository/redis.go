package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trailhead/internal/config"
	"trailhead/internal/editor"

	"github.com/redis/go-redis/v9"
)

const formKeyPrefix = "admin_form:"

type RedisFormRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisFormRepository(client *redis.Client, ttl time.Duration) *RedisFormRepository {
	return &RedisFormRepository{
		client: client,
		ttl:    ttl,
	}
}

func formKey(session string) string {
	return formKeyPrefix + session
}

func (r *RedisFormRepository) GetForm(ctx context.Context, session string) (*editor.FormState, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, formKey(session)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form from redis: %w", err)
	}

	var state editor.FormState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form: %w", err)
	}

	return &state, nil
}

// SetForm stores the state and restarts its TTL.
func (r *RedisFormRepository) SetForm(ctx context.Context, session string, state editor.FormState) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal form: %w", err)
	}

	if err := r.client.Set(ctx, formKey(session), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set form in redis: %w", err)
	}

	return nil
}

func (r *RedisFormRepository) DeleteForm(ctx context.Context, session string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, formKey(session)).Err(); err != nil {
		return fmt.Errorf("failed to delete form from redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
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
