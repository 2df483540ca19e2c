// Package storage lists and downloads documents from a Supabase-compatible
// object storage bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docmatch/internal/logger"
	"docmatch/internal/matching"
	"docmatch/internal/source"

	"golang.org/x/oauth2"
)

// Name is the registry name of the storage source.
const Name = "storage"

const (
	defaultPageSize = 1000
	defaultTimeout  = 60 * time.Second
)

// Config holds the storage endpoint, credentials and listing options.
type Config struct {
	URL         string
	Key         string
	Bucket      string
	PageSize    int
	Timeout     time.Duration
	Extensions  []string
	MaxFileSize int64
}

// Source lists a single bucket. Listing is flat: objects in nested folders
// under a prefix are not included.
type Source struct {
	baseURL     string
	bucket      string
	pageSize    int
	extensions  []string
	maxFileSize int64
	client      *http.Client
}

var _ source.Source = (*Source)(nil)

// New creates a storage source. Requests carry the key both as a bearer token
// and in the apikey header.
func New(ctx context.Context, cfg Config) *Source {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := &http.Client{Transport: &apiKeyTransport{key: cfg.Key, base: http.DefaultTransport}}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Key,
		TokenType:   "Bearer",
	}))
	client.Timeout = timeout

	return &Source{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		bucket:      cfg.Bucket,
		pageSize:    pageSize,
		extensions:  matching.NormalizeExtensions(cfg.Extensions),
		maxFileSize: cfg.MaxFileSize,
		client:      client,
	}
}

// Name implements source.Enumerator.
func (s *Source) Name() string {
	return Name
}

type sortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy sortBy `json:"sortBy"`
}

type objectMetadata struct {
	Size int64 `json:"size"`
}

type object struct {
	Name     string          `json:"name"`
	ID       *string         `json:"id"`
	Metadata *objectMetadata `json:"metadata"`
}

// List returns the objects directly under prefix, sorted by name, whose name
// has a recognised extension. Objects without size metadata get size 0.
func (s *Source) List(ctx context.Context, prefix string) ([]matching.Item, error) {
	var items []matching.Item
	for offset := 0; ; offset += s.pageSize {
		page, err := s.listPage(ctx, prefix, offset)
		if err != nil {
			return nil, err
		}

		for _, obj := range page {
			if !matching.HasExtension(obj.Name, s.extensions) {
				continue
			}
			var size int64
			if obj.Metadata != nil {
				size = obj.Metadata.Size
			}
			items = append(items, matching.Item{
				Path: objectPath(prefix, obj.Name),
				Name: obj.Name,
				Size: size,
			})
		}

		if len(page) < s.pageSize {
			break
		}
	}
	return items, nil
}

func (s *Source) listPage(ctx context.Context, prefix string, offset int) ([]object, error) {
	body, err := json.Marshal(listRequest{
		Prefix: prefix,
		Limit:  s.pageSize,
		Offset: offset,
		SortBy: sortBy{Column: "name", Order: "asc"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", s.baseURL, url.PathEscape(s.bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var page []object
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return page, nil
}

// Extract downloads a PDF object and returns its text. Any failure yields "".
func (s *Source) Extract(ctx context.Context, item matching.Item) string {
	if matching.Ext(item.Name) != ".pdf" {
		return ""
	}
	if s.maxFileSize > 0 && item.Size > s.maxFileSize {
		logger.Debug().Str("path", item.Path).Int64("size", item.Size).Msg("object too large to extract")
		return ""
	}

	data, err := s.download(ctx, item.Path)
	if err != nil {
		logger.Debug().Err(err).Str("path", item.Path).Msg("object download failed")
		return ""
	}

	text, err := source.PDFText(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Debug().Err(err).Str("path", item.Path).Msg("pdf extraction failed")
		return ""
	}
	return text
}

func (s *Source) download(ctx context.Context, path string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), escapePath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body := io.Reader(resp.Body)
	if s.maxFileSize > 0 {
		body = io.LimitReader(resp.Body, s.maxFileSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("object exceeds %d bytes", s.maxFileSize)
	}
	return data, nil
}

// StatusError reports a non-success response from the storage API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("storage API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("storage API returned status %d: %s", e.StatusCode, e.Body)
}

// objectPath joins a listing prefix and an object name into the object key
// used both in the report and for downloads. Trailing slashes on the prefix
// are dropped and an empty prefix yields the bare name, so "2023/" reports
// "2023/a.pdf" rather than "2023//a.pdf" and "" reports "a.pdf" rather than
// "/a.pdf".
func objectPath(prefix, name string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("apikey", t.key)
	return t.base.RoundTrip(r)
}
