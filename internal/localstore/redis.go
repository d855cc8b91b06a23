package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionKey = "studyhub:client:session"

type redisSession struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// RedisStore keeps the session in Redis so several gateway replicas can
// share one signed-in identity.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func NewRedisWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveSession(ctx context.Context, token string, userJSON []byte) error {
	payload, err := json.Marshal(redisSession{Token: token, User: userJSON})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, redisSessionKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadSession(ctx context.Context) (string, []byte, error) {
	payload, err := s.client.Get(ctx, redisSessionKey).Bytes()
	if err == redis.Nil {
		return "", nil, ErrNoSession
	}
	if err != nil {
		return "", nil, fmt.Errorf("load session: %w", err)
	}

	var sess redisSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return "", nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Token == "" || len(sess.User) == 0 {
		return "", nil, ErrNoSession
	}
	return sess.Token, sess.User, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, redisSessionKey).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
