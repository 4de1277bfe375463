package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps sessions in a shared cache so the widget survives instance
// restarts and multiple replicas.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func key(id string) string { return "widget:session:" + id }

func (s *Redis) Put(ctx context.Context, c *Checkout) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(c.ID), b, s.ttl).Err()
}

func (s *Redis) Get(ctx context.Context, id string) (*Checkout, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var c Checkout
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// BeginSubmit runs the open -> submitting transition under WATCH so two
// replicas cannot both admit a submit from the same stale read.
func (s *Redis) BeginSubmit(ctx context.Context, id string) (*Checkout, error) {
	var out *Checkout

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var c Checkout
		if err := json.Unmarshal(b, &c); err != nil {
			return err
		}
		if err := c.BeginSubmit(); err != nil {
			return err
		}

		nb, err := json.Marshal(&c)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), nb, s.ttl)
			return nil
		})
		if err == nil {
			out = &c
		}
		return err
	}

	for i := 0; i < 3; i++ {
		err := s.rdb.Watch(ctx, txf, key(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue // key changed under us, re-read and retry
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, redis.TxFailedErr
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}
