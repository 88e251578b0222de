package detail

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend string `split_words:"true" default:"dynamodb"`
	Table   string `split_words:"true" default:"yelp-restaurants"`
	DSN     string `envconfig:"DSN"`
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
