package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) Enqueue(ctx context.Context, task Task) error {
	if p == nil || p.client == nil {
		return nil
	}
	if _, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: task.Values(),
	}).Result(); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type, err)
	}
	return nil
}
