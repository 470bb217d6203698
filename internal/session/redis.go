package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis so multiple bot instances can share
// them. Expiry is delegated to Redis key TTLs, which matches the lazy
// contract: an expired key simply stops existing.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("mediagrab:session:%d", chatID)
}

func (r *RedisStore) Create(chatID int64, sess *Session) {
	sess.ChatID = chatID
	sess.CreatedAt = time.Now()

	payload, err := json.Marshal(sess)
	if err != nil {
		log.Printf("❌ Failed to marshal session for chat %d: %v", chatID, err)
		return
	}
	if err := r.client.Set(context.Background(), sessionKey(chatID), payload, r.ttl).Err(); err != nil {
		log.Printf("❌ Failed to store session for chat %d: %v", chatID, err)
	}
}

func (r *RedisStore) Get(chatID int64) (*Session, bool) {
	payload, err := r.client.Get(context.Background(), sessionKey(chatID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("❌ Failed to load session for chat %d: %v", chatID, err)
		}
		return nil, false
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		log.Printf("❌ Corrupt session for chat %d, dropping: %v", chatID, err)
		r.Clear(chatID)
		return nil, false
	}
	return &sess, true
}

func (r *RedisStore) Update(chatID int64, mutate func(*Session)) {
	sess, ok := r.Get(chatID)
	if !ok {
		return
	}
	mutate(sess)

	payload, err := json.Marshal(sess)
	if err != nil {
		log.Printf("❌ Failed to marshal session for chat %d: %v", chatID, err)
		return
	}
	// KeepTTL so an update does not re-arm the expiry clock.
	if err := r.client.Set(context.Background(), sessionKey(chatID), payload, redis.KeepTTL).Err(); err != nil {
		log.Printf("❌ Failed to update session for chat %d: %v", chatID, err)
	}
}

func (r *RedisStore) Clear(chatID int64) {
	if err := r.client.Del(context.Background(), sessionKey(chatID)).Err(); err != nil {
		log.Printf("❌ Failed to clear session for chat %d: %v", chatID, err)
	}
}
