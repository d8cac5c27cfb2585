// Package teller provides a typed HTTP client for the Teller aggregation API.
// Authentication is mutual TLS plus HTTP Basic auth where the enrollment's
// access token is the username and the password is empty. The client performs
// no retries; transport and validation failures surface to the caller.
package teller

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	playgroundvalidator "github.com/go-playground/validator/v10"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/validator"
)

const defaultTimeout = 30 * time.Second

// Config holds the client configuration. CertFile and KeyFile are the mutual
// TLS client certificate issued by the aggregator; both may be empty for test
// servers that do not require client certificates.
type Config struct {
	BaseURL  string
	CertFile string
	KeyFile  string
	Timeout  time.Duration
}

// Client is a client for the aggregator API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *playgroundvalidator.Validate
}

// NewClient creates a new aggregator API client.
func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
		}
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		validate: validator.NewRemote(),
	}, nil
}

// ListTransactionsOptions holds the cursor parameters for transaction paging.
// FromID is the identifier of the last transaction already seen; the server
// returns the next page, newest first.
type ListTransactionsOptions struct {
	Count  int
	FromID string
}

// ListAccounts fetches all accounts visible to the given access token.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, accessToken, "/accounts", &accounts); err != nil {
		return nil, err
	}

	for i := range accounts {
		if err := c.validate.Struct(&accounts[i]); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRemoteValidation, fmt.Errorf("account %d failed schema validation: %w", i, err))
		}
	}

	return accounts, nil
}

// ListTransactions fetches a page of transactions for an account, newest
// first. The page starts after opts.FromID when set and holds at most
// opts.Count entries.
func (c *Client) ListTransactions(ctx context.Context, accessToken, accountID string, opts ListTransactionsOptions) ([]Transaction, error) {
	path := "/accounts/" + url.PathEscape(accountID) + "/transactions"

	query := url.Values{}
	if opts.Count > 0 {
		query.Set("count", strconv.Itoa(opts.Count))
	}
	if opts.FromID != "" {
		query.Set("from_id", opts.FromID)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var transactions []Transaction
	if err := c.get(ctx, accessToken, path, &transactions); err != nil {
		return nil, err
	}

	for i := range transactions {
		if err := c.validate.Struct(&transactions[i]); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRemoteValidation, fmt.Errorf("transaction %d failed schema validation: %w", i, err))
		}
	}

	return transactions, nil
}

// get executes an authenticated GET request and decodes the JSON response
// into out. Unknown response fields are rejected.
func (c *Client) get(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteTransport, fmt.Errorf("failed to create request: %w", err))
	}

	req.SetBasicAuth(accessToken, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteTransport, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Wrap(apperrors.ErrRemoteTransport, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path))
	}

	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteValidation, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
