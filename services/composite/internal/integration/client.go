// Package integration talks to the core services on behalf of the
// composite. Reads are synchronous HTTP. Writes go over HTTP in direct
// mode or over the event channel in event mode; in event mode the write
// is acknowledged once the event is accepted, before any service has
// processed it.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/discovery"
	"example.com/productmesh/pkg/httperr"
	"example.com/productmesh/pkg/messaging"
)

// Transport modes for write operations.
const (
	TransportDirect = "direct"
	TransportEvent  = "event"
)

// Service names the client resolves.
const (
	ServiceProduct        = "product"
	ServiceRecommendation = "recommendation"
	ServiceReview         = "review"
)

// Publishers carries one event publisher per core service queue. All nil
// in direct mode.
type Publishers struct {
	Product        messaging.Publisher
	Recommendation messaging.Publisher
	Review         messaging.Publisher
}

// Client is the composite's gateway to the core services.
type Client struct {
	http       *http.Client
	resolver   discovery.Resolver
	timeout    time.Duration
	transport  string
	publishers Publishers
}

// NewClient builds a client. timeout bounds each downstream call
// individually, not the whole fan-out.
func NewClient(resolver discovery.Resolver, timeout time.Duration, transport string, publishers Publishers) *Client {
	return &Client{
		http:       &http.Client{},
		resolver:   resolver,
		timeout:    timeout,
		transport:  transport,
		publishers: publishers,
	}
}

// GetProduct fetches one product. delay and faultPercent are forwarded so
// callers can exercise slow or flaky behavior downstream. Errors carry the
// upstream message mapped back into the domain taxonomy.
func (c *Client) GetProduct(ctx context.Context, productID, delay, faultPercent int) (api.Product, error) {
	base, err := c.resolver.BaseURL(ServiceProduct)
	if err != nil {
		return api.Product{}, apperrors.NewInternal("%v", err)
	}

	url := fmt.Sprintf("%s/product/%d?delay=%d&faultPercent=%d", base, productID, delay, faultPercent)

	var product api.Product
	if err := c.getJSON(ctx, url, &product); err != nil {
		return api.Product{}, err
	}
	return product, nil
}

// GetRecommendations fetches the recommendations for a product. Any
// failure degrades to an empty list so the aggregate can still be served.
func (c *Client) GetRecommendations(ctx context.Context, productID int) []api.Recommendation {
	base, err := c.resolver.BaseURL(ServiceRecommendation)
	if err != nil {
		log.Warn().Err(err).Msg("Recommendation service unresolved, returning empty list")
		return []api.Recommendation{}
	}

	url := fmt.Sprintf("%s/recommendation?productId=%d", base, productID)

	var recommendations []api.Recommendation
	if err := c.getJSON(ctx, url, &recommendations); err != nil {
		log.Warn().Err(err).Int("productId", productID).
			Msg("Failed to get recommendations, returning empty list")
		return []api.Recommendation{}
	}
	return recommendations
}

// GetReviews fetches the reviews for a product. Any failure degrades to an
// empty list so the aggregate can still be served.
func (c *Client) GetReviews(ctx context.Context, productID int) []api.Review {
	base, err := c.resolver.BaseURL(ServiceReview)
	if err != nil {
		log.Warn().Err(err).Msg("Review service unresolved, returning empty list")
		return []api.Review{}
	}

	url := fmt.Sprintf("%s/review?productId=%d", base, productID)

	var reviews []api.Review
	if err := c.getJSON(ctx, url, &reviews); err != nil {
		log.Warn().Err(err).Int("productId", productID).
			Msg("Failed to get reviews, returning empty list")
		return []api.Review{}
	}
	return reviews
}

// CreateProduct creates a product over the configured write transport. In
// event mode the returned value is the input echoed back unchanged.
func (c *Client) CreateProduct(ctx context.Context, body api.Product) (api.Product, error) {
	if c.transport == TransportEvent {
		if err := c.publishCreate(ctx, c.publishers.Product, body.ProductID, body); err != nil {
			return api.Product{}, err
		}
		return body, nil
	}

	base, err := c.resolver.BaseURL(ServiceProduct)
	if err != nil {
		return api.Product{}, apperrors.NewInternal("%v", err)
	}

	var created api.Product
	if err := c.postJSON(ctx, base+"/product", body, &created); err != nil {
		return api.Product{}, err
	}
	return created, nil
}

// CreateRecommendation creates a recommendation over the configured write
// transport.
func (c *Client) CreateRecommendation(ctx context.Context, body api.Recommendation) (api.Recommendation, error) {
	if c.transport == TransportEvent {
		if err := c.publishCreate(ctx, c.publishers.Recommendation, body.ProductID, body); err != nil {
			return api.Recommendation{}, err
		}
		return body, nil
	}

	base, err := c.resolver.BaseURL(ServiceRecommendation)
	if err != nil {
		return api.Recommendation{}, apperrors.NewInternal("%v", err)
	}

	var created api.Recommendation
	if err := c.postJSON(ctx, base+"/recommendation", body, &created); err != nil {
		return api.Recommendation{}, err
	}
	return created, nil
}

// CreateReview creates a review over the configured write transport.
func (c *Client) CreateReview(ctx context.Context, body api.Review) (api.Review, error) {
	if c.transport == TransportEvent {
		if err := c.publishCreate(ctx, c.publishers.Review, body.ProductID, body); err != nil {
			return api.Review{}, err
		}
		return body, nil
	}

	base, err := c.resolver.BaseURL(ServiceReview)
	if err != nil {
		return api.Review{}, apperrors.NewInternal("%v", err)
	}

	var created api.Review
	if err := c.postJSON(ctx, base+"/review", body, &created); err != nil {
		return api.Review{}, err
	}
	return created, nil
}

// DeleteProduct deletes a product over the configured write transport.
func (c *Client) DeleteProduct(ctx context.Context, productID int) error {
	if c.transport == TransportEvent {
		return c.publishDelete(ctx, c.publishers.Product, productID)
	}

	base, err := c.resolver.BaseURL(ServiceProduct)
	if err != nil {
		return apperrors.NewInternal("%v", err)
	}
	return c.delete(ctx, fmt.Sprintf("%s/product/%d", base, productID))
}

// DeleteRecommendations deletes the recommendations for a product over the
// configured write transport.
func (c *Client) DeleteRecommendations(ctx context.Context, productID int) error {
	if c.transport == TransportEvent {
		return c.publishDelete(ctx, c.publishers.Recommendation, productID)
	}

	base, err := c.resolver.BaseURL(ServiceRecommendation)
	if err != nil {
		return apperrors.NewInternal("%v", err)
	}
	return c.delete(ctx, fmt.Sprintf("%s/recommendation?productId=%d", base, productID))
}

// DeleteReviews deletes the reviews for a product over the configured
// write transport.
func (c *Client) DeleteReviews(ctx context.Context, productID int) error {
	if c.transport == TransportEvent {
		return c.publishDelete(ctx, c.publishers.Review, productID)
	}

	base, err := c.resolver.BaseURL(ServiceReview)
	if err != nil {
		return apperrors.NewInternal("%v", err)
	}
	return c.delete(ctx, fmt.Sprintf("%s/review?productId=%d", base, productID))
}

// CheckHealth probes one core service. It reports status, never an error:
// an unreachable service is simply down.
func (c *Client) CheckHealth(ctx context.Context, name string) bool {
	base, err := c.resolver.BaseURL(name)
	if err != nil {
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (c *Client) publishCreate(ctx context.Context, pub messaging.Publisher, key int, data interface{}) error {
	if pub == nil {
		return apperrors.NewInternal("event transport selected but no publisher configured")
	}

	event, err := api.NewDataEvent(api.EventCreate, key, data)
	if err != nil {
		return apperrors.NewInternal("failed to build create event: %v", err)
	}

	if err := pub.Publish(ctx, event, fmt.Sprintf("%d", key)); err != nil {
		return apperrors.NewInternal("failed to publish create event: %v", err)
	}
	return nil
}

func (c *Client) publishDelete(ctx context.Context, pub messaging.Publisher, key int) error {
	if pub == nil {
		return apperrors.NewInternal("event transport selected but no publisher configured")
	}

	event, err := api.NewDataEvent(api.EventDelete, key, nil)
	if err != nil {
		return apperrors.NewInternal("failed to build delete event: %v", err)
	}

	if err := pub.Publish(ctx, event, fmt.Sprintf("%d", key)); err != nil {
		return apperrors.NewInternal("failed to publish delete event: %v", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.NewInternal("failed to build request: %v", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewInternal("failed to marshal request body: %v", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewInternal("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, url string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodDelete, url, nil)
	if err != nil {
		return apperrors.NewInternal("failed to build request: %v", err)
	}
	return c.do(req, nil)
}

// do executes a request and maps non-2xx responses back into the domain
// error taxonomy using the shared error body.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewInternal("request to %s failed: %v", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewInternal("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		return httperr.FromStatus(resp.StatusCode, httperr.ParseMessage(body))
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return apperrors.NewInternal("failed to decode response from %s: %v", req.URL.Path, err)
		}
	}
	return nil
}
