// Package userapi is the HTTP client for the external user directory. Both
// lookups run through a shared circuit breaker; order data must stay viewable
// when the directory is degraded, so the by-id lookup converts a 404 into a
// sentinel profile instead of failing. The by-email lookup decides whose
// orders a caller may see and therefore never degrades silently.
package userapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"order-service/internal/breaker"
	"order-service/internal/domain"
	"order-service/internal/logging"
)

type Client interface {
	GetUserByID(ctx context.Context, id int64) (*domain.UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
}

type client struct {
	baseURL string
	http    *http.Client
	breaker *breaker.Breaker
}

func NewClient(baseURL string, httpClient *http.Client, b *breaker.Breaker) Client {
	return &client{
		baseURL: baseURL,
		http:    httpClient,
		breaker: b,
	}
}

func (c *client) GetUserByID(ctx context.Context, id int64) (*domain.UserProfile, error) {
	user, err := c.get(ctx, fmt.Sprintf("%s/users/%d", c.baseURL, id))
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
			logging.Log(logging.Fields{
				Service: "userapi",
				UserID:  id,
				Status:  "fallback",
				Message: "user not found upstream, returning sentinel profile",
			})
			return domain.NotFoundUser(), nil
		}
		return nil, err
	}
	return user, nil
}

func (c *client) GetUserByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return c.get(ctx, c.baseURL+"/users/search?email="+url.QueryEscape(email))
}

// get issues one GET under the breaker. Every non-200 response and every
// transport error counts against the breaker's failure rate.
func (c *client) get(ctx context.Context, rawURL string) (*domain.UserProfile, error) {
	var user domain.UserProfile
	err := c.breaker.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &domain.UpstreamError{StatusCode: resp.StatusCode}
		}
		return json.NewDecoder(resp.Body).Decode(&user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
