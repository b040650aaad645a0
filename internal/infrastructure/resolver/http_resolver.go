package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"photolabel/internal/ports"
)

const defaultTimeout = 10 * time.Second

// HTTPResolver exchanges storage pointers for signed URLs against the
// resolver service. The service accepts {"row_prefixes": [...]} and answers
// either the current {"images":[{"signed_urls":[...]}]} shape or the legacy
// {"signed_urls":{pointer:url}} map.
type HTTPResolver struct {
	endpoint string
	client   *http.Client
}

var _ ports.URLResolver = (*HTTPResolver)(nil)

func NewHTTPResolver(endpoint string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPResolver{endpoint: endpoint, client: client}
}

type resolveRequest struct {
	RowPrefixes []string `json:"row_prefixes"`
}

type resolveResponse struct {
	Images []struct {
		RowPrefix  string   `json:"row_prefix"`
		SignedURLs []string `json:"signed_urls"`
	} `json:"images"`
	SignedURLs map[string]string `json:"signed_urls"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, storagePointer string) (string, error) {
	if strings.TrimSpace(r.endpoint) == "" {
		return "", &ports.ResolverError{StoragePointer: storagePointer, Cause: errors.New("resolver endpoint is not configured")}
	}
	if strings.TrimSpace(storagePointer) == "" {
		return "", &ports.ResolverError{StoragePointer: storagePointer, Cause: errors.New("storage pointer is empty")}
	}

	body, err := json.Marshal(resolveRequest{RowPrefixes: []string{storagePointer}})
	if err != nil {
		return "", &ports.ResolverError{StoragePointer: storagePointer, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ports.ResolverError{StoragePointer: storagePointer, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &ports.ResolverError{StoragePointer: storagePointer, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &ports.ResolverError{
			StoragePointer: storagePointer,
			Cause:          fmt.Errorf("resolver returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var parsed resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ports.ResolverError{StoragePointer: storagePointer, Cause: err}
	}

	signedURL := ""
	switch {
	case len(parsed.Images) > 0 && len(parsed.Images[0].SignedURLs) > 0:
		signedURL = parsed.Images[0].SignedURLs[0]
	case parsed.SignedURLs != nil:
		signedURL = parsed.SignedURLs[storagePointer]
	}

	if signedURL == "" {
		return "", &ports.ResolverError{StoragePointer: storagePointer, Cause: errors.New("resolver returned no signed url")}
	}
	return signedURL, nil
}
