package fulfillment

import "time"

type Config struct {
	BatchSize    int           `split_words:"true" default:"10"`
	WaitTime     time.Duration `split_words:"true" default:"5s"`
	TopN         int           `envconfig:"TOP_N" default:"3"`
	PollInterval time.Duration `split_words:"true" default:"1s"`
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.WaitTime < 0 {
		c.WaitTime = 0
	}
	if c.TopN <= 0 {
		c.TopN = 3
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	return c
}
