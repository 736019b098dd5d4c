package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/eringen/pressfront/content"
)

const maxResponseBytes = 16 << 20

// HTTPStore runs catalog queries against the content lake query API.
type HTTPStore struct {
	cfg      Config
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPStore validates cfg and returns a store using a logging HTTP client.
func NewHTTPStore(cfg Config, logger *slog.Logger) (*HTTPStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cms")
	return &HTTPStore{
		cfg:      cfg,
		endpoint: cfg.Endpoint(),
		client:   newHTTPClient(cfg.Timeout, logger),
		logger:   logger,
	}, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *queryError     `json:"error,omitempty"`
}

type queryError struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Fetch implements content.Fetcher. The revalidate hint is ignored here;
// wrap the store in a CachedFetcher to honor it.
func (s *HTTPStore) Fetch(ctx context.Context, q content.Query, params content.Params, _ content.FetchOptions) (json.RawMessage, error) {
	u, err := s.queryURL(q, params)
	if err != nil {
		return nil, &content.StoreQueryError{Query: q.Name, Message: "encode parameters", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &content.StoreQueryError{Query: q.Name, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms %s: %w: %w", q.Name, content.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("cms %s: read response: %w: %w", q.Name, content.ErrStoreUnavailable, err)
	}

	var qr queryResponse
	decodeErr := json.Unmarshal(body, &qr)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &content.StoreQueryError{Query: q.Name, Status: resp.StatusCode, Message: errorMessage(qr, body)}
	default:
		return nil, fmt.Errorf("cms %s: %w: status %d: %s", q.Name, content.ErrStoreUnavailable, resp.StatusCode, errorMessage(qr, body))
	}

	if decodeErr != nil {
		return nil, &content.StoreQueryError{Query: q.Name, Status: resp.StatusCode, Message: "malformed response", Err: decodeErr}
	}
	if qr.Result == nil {
		return json.RawMessage("null"), nil
	}
	return qr.Result, nil
}

func (s *HTTPStore) queryURL(q content.Query, params content.Params) (string, error) {
	v := url.Values{}
	v.Set("query", q.GROQ)

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := json.Marshal(params[name])
		if err != nil {
			return "", fmt.Errorf("parameter $%s: %w", name, err)
		}
		v.Set("$"+name, string(b))
	}
	return s.endpoint + "?" + v.Encode(), nil
}

func errorMessage(qr queryResponse, body []byte) string {
	if qr.Error != nil && qr.Error.Description != "" {
		return qr.Error.Description
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		return "empty response"
	}
	return msg
}
