package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/analysis"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

// Client is a read-through cache for baseline metrics and mission statements.
// A miss or failure always degrades to a direct store read; the cache is
// never authoritative.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func baselineKey(organizationID, unitID string) string {
	return fmt.Sprintf("baseline:%s:%s", organizationID, unitID)
}

func missionKey(organizationID, unitID string) string {
	return fmt.Sprintf("mission:%s:%s", organizationID, unitID)
}

func (c *Client) SetBaseline(ctx context.Context, organizationID, unitID string, metrics *analysis.BaselineMetrics, ttl time.Duration) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	err = c.client.Set(ctx, baselineKey(organizationID, unitID), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set baseline cache: %w", err)
	}

	logger.Debug("Baseline cached",
		zap.String("organization_id", organizationID),
		zap.String("unit_id", unitID),
		zap.Duration("ttl", ttl),
	)
	return nil
}

func (c *Client) GetBaseline(ctx context.Context, organizationID, unitID string) (*analysis.BaselineMetrics, bool, error) {
	data, err := c.client.Get(ctx, baselineKey(organizationID, unitID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get baseline cache: %w", err)
	}

	var metrics analysis.BaselineMetrics
	err = json.Unmarshal(data, &metrics)
	if err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal baseline: %w", err)
	}

	logger.Debug("Baseline cache hit",
		zap.String("organization_id", organizationID),
		zap.String("unit_id", unitID),
	)
	return &metrics, true, nil
}

func (c *Client) SetMission(ctx context.Context, organizationID, unitID, statement string, ttl time.Duration) error {
	err := c.client.Set(ctx, missionKey(organizationID, unitID), statement, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set mission cache: %w", err)
	}
	return nil
}

func (c *Client) GetMission(ctx context.Context, organizationID, unitID string) (string, bool, error) {
	statement, err := c.client.Get(ctx, missionKey(organizationID, unitID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get mission cache: %w", err)
	}
	return statement, true, nil
}

// InvalidateMission drops the cached mission so the next read goes to the
// store; called when a mission statement is updated.
func (c *Client) InvalidateMission(ctx context.Context, organizationID, unitID string) error {
	return c.client.Del(ctx, missionKey(organizationID, unitID)).Err()
}
