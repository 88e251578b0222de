package httpapi

import "time"

type Config struct {
	Addr            string        `split_words:"true" default:":8080"`
	RateLimit       int           `split_words:"true" default:"120"`
	RateWindow      time.Duration `split_words:"true" default:"1m"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}
