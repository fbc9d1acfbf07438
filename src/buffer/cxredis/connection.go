package cxredis

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/zikwall/singlestore-bulk/src/cx"
)

const prefix = "ss_bulk"

func key(bucket string) string {
	return prefix + ":" + bucket
}

type redisBuffer struct {
	client     *redis.Client
	context    context.Context
	bucket     string
	bufferSize int64
}

// NewBuffer creates a Redis backed cx.Buffer, rows survive a process restart
// and are picked up by the next writer draining the same bucket
func NewBuffer(ctx context.Context, rdb *redis.Client, bucket string, bufferSize uint) (cx.Buffer, error) {
	return &redisBuffer{
		client:     rdb,
		context:    ctx,
		bucket:     key(bucket),
		bufferSize: int64(bufferSize),
	}, nil
}

func (r *redisBuffer) isContextClosedErr(err error) bool {
	return errors.Is(err, redis.ErrClosed) && r.context.Err() != nil && errors.Is(r.context.Err(), context.Canceled)
}
