package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultIndex   = "restaurants"
	defaultService = "es"
	defaultLimit   = 3

	maxResponseSizeBytes = 1 << 20
)

type Option func(*OpenSearch)

func WithHTTPClient(client *http.Client) Option {
	return func(s *OpenSearch) {
		if client != nil {
			s.httpClient = client
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *OpenSearch) {
		s.now = now
	}
}

// OpenSearch queries a restaurant index with SigV4-signed requests.
type OpenSearch struct {
	searchURL   string
	service     string
	region      string
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	httpClient  *http.Client
	now         func() time.Time
}

var _ contractx.SearchGateway = (*OpenSearch)(nil)

type searchQuery struct {
	Size  int `json:"size"`
	Query struct {
		Bool struct {
			Must []termClause `json:"must"`
		} `json:"bool"`
	} `json:"query"`
}

type termClause struct {
	Term map[string]termValue `json:"term"`
}

type termValue struct {
	Value           string `json:"value"`
	CaseInsensitive bool   `json:"case_insensitive"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				Cuisine string `json:"cuisine"`
				City    string `json:"city"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func NewOpenSearch(cfg Config, region string, credentials aws.CredentialsProvider, opts ...Option) (*OpenSearch, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("%w: search url is required", contractx.ErrNotConfigured)
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid search url: %w", err)
	}
	if credentials == nil {
		return nil, errors.New("aws credentials provider is required")
	}
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, errors.New("aws region is required")
	}

	index := strings.Trim(strings.TrimSpace(cfg.Index), "/")
	if index == "" {
		index = defaultIndex
	}
	service := strings.TrimSpace(cfg.Service)
	if service == "" {
		service = defaultService
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &OpenSearch{
		searchURL:   endpoint + "/" + index + "/_search",
		service:     service,
		region:      region,
		credentials: credentials,
		signer:      v4.NewSigner(),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func NewOpenSearchFromConfig(cfg Config, awsCfg aws.Config, opts ...Option) (*OpenSearch, error) {
	return NewOpenSearch(cfg, awsCfg.Region, awsCfg.Credentials, opts...)
}

// Search returns at most limit candidates matching cuisine and city exactly,
// ignoring case, in the order the index ranks them.
func (s *OpenSearch) Search(ctx context.Context, cuisine, location string, limit int) ([]contractx.Candidate, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	body, err := json.Marshal(buildQuery(cuisine, location, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: marshal query: %w", contractx.ErrSearch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", contractx.ErrSearch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := s.sign(ctx, req, body); err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %w", contractx.ErrSearch, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", contractx.ErrSearch, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http status=%d body=%s", contractx.ErrSearch, resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", contractx.ErrSearch, err)
	}

	out := make([]contractx.Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if hit.ID == "" {
			continue
		}
		out = append(out, contractx.Candidate{ID: hit.ID, Cuisine: hit.Source.Cuisine, City: hit.Source.City})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *OpenSearch) sign(ctx context.Context, req *http.Request, body []byte) error {
	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("%w: retrieve credentials: %w", contractx.ErrSearch, err)
	}
	sum := sha256.Sum256(body)
	if err := s.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]), s.service, s.region, s.now().UTC()); err != nil {
		return fmt.Errorf("%w: sign request: %w", contractx.ErrSearch, err)
	}
	return nil
}

func buildQuery(cuisine, location string, limit int) searchQuery {
	var q searchQuery
	q.Size = limit
	q.Query.Bool.Must = []termClause{
		{Term: map[string]termValue{"cuisine": {Value: cuisine, CaseInsensitive: true}}},
		{Term: map[string]termValue{"city": {Value: location, CaseInsensitive: true}}},
	}
	return q
}
