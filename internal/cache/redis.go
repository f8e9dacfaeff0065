package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const paymentKeyFmt = "payment:%s"

// Payment status responses are cached briefly: the post-redirect UI polls
// the status endpoint every few seconds while waiting for the webhook.
const paymentStatusTTL = 30 * time.Second

var client *redis.Client

// Init initializes the Redis connection. The cache is optional; callers
// degrade gracefully when it is unavailable.
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when the cache is unavailable)
func GetClient() *redis.Client {
	return client
}

// GetCachedPaymentStatus returns the cached status response for a
// payment reference, if present.
func GetCachedPaymentStatus(ctx context.Context, reference string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(paymentKeyFmt, reference)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CachePaymentStatus stores a serialized status response for a reference
func CachePaymentStatus(ctx context.Context, reference string, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(paymentKeyFmt, reference), data, paymentStatusTTL)
}

// InvalidatePayment drops the cached status after a settlement or failure
// so pollers see the terminal state immediately.
func InvalidatePayment(ctx context.Context, reference string) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(paymentKeyFmt, reference))
}
