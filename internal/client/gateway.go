// Package client holds outbound HTTP clients for per-tenant platform
// services. All calls go through the gateway and carry the tenant scope and
// token found on the request context.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/config"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/requestcontext"
)

const maxErrorBody = 4 * 1024

// Gateway is a tenant-scoped JSON client. The tenant and token headers come
// from ctx on every call, so the same Gateway serves any tenant the caller has
// switched into.
type Gateway struct {
	baseURL string
	client  *http.Client
}

func NewGateway(cfg config.Gateway) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Do executes one JSON call. body is marshalled when non-nil; the response is
// decoded into out when out is non-nil. Non-2xx responses come back as
// upstream errors carrying the response body as the reason.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tenantID := requestcontext.TenantID(ctx); tenantID != "" {
		req.Header.Set("X-Okapi-Tenant", tenantID)
	}
	if token := requestcontext.Token(ctx); token != "" {
		req.Header.Set("X-Okapi-Token", token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeUpstream, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domainerrors.Newf(domainerrors.CodeUpstream, "%s %s returned %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(reason)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeUpstream, "decode response body")
		}
	}
	return nil
}
