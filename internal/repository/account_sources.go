package repository

import (
	"context"
	"errors"
	"fmt"

	"DeskStream/internal/domain/models"
	"DeskStream/pkg/cache"

	"github.com/go-resty/resty/v2"
)

// ErrNoAccountData is returned when the source holds no snapshot yet.
var ErrNoAccountData = errors.New("account: no snapshot available")

// RedisAccountSource reads a JSON AccountSnapshot stored under one key by
// the broker integration.
type RedisAccountSource struct {
	reader cache.Reader
	key    string
}

func NewRedisAccountSource(reader cache.Reader, key string) *RedisAccountSource {
	return &RedisAccountSource{reader: reader, key: key}
}

func (s *RedisAccountSource) Fetch(ctx context.Context) (models.AccountSnapshot, error) {
	var snap models.AccountSnapshot
	if err := s.reader.Get(ctx, s.key, &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.AccountSnapshot{}, ErrNoAccountData
		}
		return models.AccountSnapshot{}, err
	}
	return snap, nil
}

// HTTPAccountSource GETs a JSON AccountSnapshot from an endpoint.
type HTTPAccountSource struct {
	client *resty.Client
	url    string
}

func NewHTTPAccountSource(client *resty.Client, url string) *HTTPAccountSource {
	return &HTTPAccountSource{client: client, url: url}
}

func (s *HTTPAccountSource) Fetch(ctx context.Context) (models.AccountSnapshot, error) {
	var snap models.AccountSnapshot
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&snap).
		Get(s.url)
	if err != nil {
		return models.AccountSnapshot{}, fmt.Errorf("account request: %w", err)
	}
	switch {
	case resp.StatusCode() == 204 || resp.StatusCode() == 404:
		return models.AccountSnapshot{}, ErrNoAccountData
	case resp.IsError():
		return models.AccountSnapshot{}, fmt.Errorf("account request: unexpected status %d", resp.StatusCode())
	}
	return snap, nil
}
