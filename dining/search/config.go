package search

import "time"

type Config struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Index   string        `split_words:"true" default:"restaurants"`
	Service string        `split_words:"true" default:"es"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}
