package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"property_portal_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// DefaultRetryDelay postpones the first retry so a transient outage can clear.
const DefaultRetryDelay = 30 * time.Second

type Client struct {
	client   *asynq.Client
	queue    string
	maxRetry int
	delay    time.Duration
}

type ThumbnailRetryScheduler interface {
	ScheduleReceiptThumbnailRetry(ctx context.Context, tenantID, receiptID uuid.UUID, storageKey string) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return newClient(opt, cfg.GetAsynqQueueName(), cfg.GetThumbnailRetryMax()), nil
}

func newClient(opt asynq.RedisConnOpt, queue string, maxRetry int) *Client {
	if queue == "" {
		queue = "default"
	}
	if maxRetry < 0 {
		maxRetry = 0
	}
	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queue,
		maxRetry: maxRetry,
		delay:    DefaultRetryDelay,
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleReceiptThumbnailRetry enqueues a delayed retry. A retry already
// pending for the receipt is left in place.
func (c *Client) ScheduleReceiptThumbnailRetry(ctx context.Context, tenantID, receiptID uuid.UUID, storageKey string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewReceiptThumbnailRetryTask(ReceiptThumbnailRetryPayload{
		ReceiptID:  receiptID.String(),
		TenantID:   tenantID.String(),
		StorageKey: storageKey,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.maxRetry),
		asynq.ProcessIn(c.delay),
		asynq.TaskID(receiptThumbnailTaskID(receiptID.String())),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
