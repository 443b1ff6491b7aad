package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rentora/internal/models"
)

type CacheService interface {
	// Unread feed snapshots
	GetUnreadSnapshot(ctx context.Context, userID uuid.UUID, role models.UserRole) ([]*models.Notification, error)
	SetUnreadSnapshot(ctx context.Context, userID uuid.UUID, role models.UserRole, notifications []*models.Notification, ttl time.Duration) error
	InvalidateUnreadSnapshot(ctx context.Context, userID uuid.UUID) error
	InvalidateAllUnreadSnapshots(ctx context.Context) error

	// Property caching
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error)
	SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error
	DeleteProperty(ctx context.Context, propertyID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func unreadKey(userID uuid.UUID, role models.UserRole) string {
	return fmt.Sprintf("rentora:unread:%s:%s", userID.String(), role)
}

func (r *redisCacheService) GetUnreadSnapshot(ctx context.Context, userID uuid.UUID, role models.UserRole) ([]*models.Notification, error) {
	data, err := r.client.Get(ctx, unreadKey(userID, role)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var notifications []*models.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *redisCacheService) SetUnreadSnapshot(ctx context.Context, userID uuid.UUID, role models.UserRole, notifications []*models.Notification, ttl time.Duration) error {
	data, err := json.Marshal(notifications)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, unreadKey(userID, role), data, ttl).Err()
}

// InvalidateUnreadSnapshot drops the snapshots for every role the user might
// be reading under; send and mark-read both call this.
func (r *redisCacheService) InvalidateUnreadSnapshot(ctx context.Context, userID uuid.UUID) error {
	keys := []string{
		unreadKey(userID, models.RoleTenant),
		unreadKey(userID, models.RoleLandlord),
		unreadKey(userID, models.RoleAdmin),
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) InvalidateAllUnreadSnapshots(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "rentora:unread:*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	key := fmt.Sprintf("rentora:property:%s", propertyID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var property models.Property
	if err := json.Unmarshal(data, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *redisCacheService) SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error {
	key := fmt.Sprintf("rentora:property:%s", property.ID.String())
	data, err := json.Marshal(property)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProperty(ctx context.Context, propertyID uuid.UUID) error {
	key := fmt.Sprintf("rentora:property:%s", propertyID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("rentora:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
