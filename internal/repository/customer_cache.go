package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/loan-portal/internal/domain"
)

const customerKeyPrefix = "customer:"

// CustomerCache stores recently fetched customers.
type CustomerCache interface {
	Get(ctx context.Context, identification string) (*domain.Customer, bool, error)
	Set(ctx context.Context, customer *domain.Customer) error
}

type cachedCustomer struct {
	Identification string `json:"identification"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	CustomerType   string `json:"customer_type"`
	CreditScore    int    `json:"credit_score"`
	RiskLabel      string `json:"risk_label"`
}

type redisCustomerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCustomerCache returns a Redis-backed cache. A nil client or a
// non-positive ttl yields a cache that never stores anything.
func NewRedisCustomerCache(client *redis.Client, ttl time.Duration) CustomerCache {
	if client == nil || ttl <= 0 {
		return noopCustomerCache{}
	}
	return &redisCustomerCache{client: client, ttl: ttl}
}

func (c *redisCustomerCache) Get(ctx context.Context, identification string) (*domain.Customer, bool, error) {
	raw, err := c.client.Get(ctx, customerKeyPrefix+identification).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached cachedCustomer
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, err
	}
	return &domain.Customer{
		Identification: cached.Identification,
		FirstName:      cached.FirstName,
		LastName:       cached.LastName,
		CustomerType:   cached.CustomerType,
		CreditScore:    cached.CreditScore,
		RiskLabel:      cached.RiskLabel,
	}, true, nil
}

func (c *redisCustomerCache) Set(ctx context.Context, customer *domain.Customer) error {
	raw, err := json.Marshal(cachedCustomer{
		Identification: customer.Identification,
		FirstName:      customer.FirstName,
		LastName:       customer.LastName,
		CustomerType:   customer.CustomerType,
		CreditScore:    customer.CreditScore,
		RiskLabel:      customer.RiskLabel,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, customerKeyPrefix+customer.Identification, raw, c.ttl).Err()
}

type noopCustomerCache struct{}

func (noopCustomerCache) Get(context.Context, string) (*domain.Customer, bool, error) {
	return nil, false, nil
}

func (noopCustomerCache) Set(context.Context, *domain.Customer) error {
	return nil
}
