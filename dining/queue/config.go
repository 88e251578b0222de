package queue

import "time"

const (
	BackendSQS   = "sqs"
	BackendRedis = "redis"
)

type Config struct {
	Backend           string        `split_words:"true" default:"sqs"`
	URL               string        `split_words:"true"`
	RedisAddr         string        `split_words:"true" default:"localhost:6379"`
	RedisPassword     string        `split_words:"true"`
	RedisDB           int           `split_words:"true" default:"0"`
	RedisKeyPrefix    string        `split_words:"true" default:"dining:requests"`
	VisibilityTimeout time.Duration `split_words:"true" default:"30s"`
}
