package quotaRepo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// QuotaRepo tracks bytes consumed per account. Increment rides on Redis
// INCRBY so concurrent commits for the same account never lose an update.
// There is no decrement path: deleting a file does not free quota.
type QuotaRepo struct {
	Client *redis.Client
	limit  int64
}

func New(client *redis.Client, limitBytes int64) *QuotaRepo {
	return &QuotaRepo{Client: client, limit: limitBytes}
}

func (r *QuotaRepo) buildKey(accountID uint32) string {
	return fmt.Sprintf("quota:%d", accountID)
}

func (r *QuotaRepo) Increment(ctx context.Context, accountID uint32, bytes int64) error {
	key := r.buildKey(accountID)
	return r.Client.IncrBy(ctx, key, bytes).Err()
}

// Read returns a point-in-time snapshot of used and limit bytes. An account
// that never committed a file reads as zero.
func (r *QuotaRepo) Read(ctx context.Context, accountID uint32) (used int64, limit int64, err error) {
	key := r.buildKey(accountID)
	used, err = r.Client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, r.limit, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return used, r.limit, nil
}
