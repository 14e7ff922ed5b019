package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"qrius/internal/platform/config"
)

// Client is an HTTP implementation of Provider. Every call carries the fixed
// hosting timeout on top of whatever deadline the request context already has.
type Client struct {
	apiBase string
	token   string
	project string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient constructs the provider client from configuration.
func NewClient(cfg config.HostingConfig, opts ...ClientOption) *Client {
	c := &Client{
		apiBase: cfg.APIBase,
		token:   cfg.Token,
		project: cfg.Project,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type registerRequest struct {
	Name string `json:"name"`
}

type registerResponse struct {
	Name        string `json:"name"`
	CNAMETarget string `json:"cname_target"`
}

type checkResponse struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

type providerError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RegisterDomain registers the hostname with the provider's project and
// returns the CNAME target the customer's DNS must point at.
func (c *Client) RegisterDomain(ctx context.Context, hostname string) (RegisterResult, error) {
	payload, err := json.Marshal(registerRequest{Name: hostname})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("marshal register request: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, c.domainsURL(""), payload)
	if err != nil {
		return RegisterResult{}, err
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		var out registerResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return RegisterResult{}, fmt.Errorf("decode register response: %w", err)
		}
		return RegisterResult{CNAMETarget: out.CNAMETarget}, nil
	case status == http.StatusConflict && errorCode(body) == "domain_taken":
		return RegisterResult{}, ErrDomainTaken
	default:
		return RegisterResult{}, &StatusError{StatusCode: status}
	}
}

// CheckDomain asks the provider whether the hostname's DNS is configured.
func (c *Client) CheckDomain(ctx context.Context, hostname string) (CheckResult, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.domainsURL(hostname)+"/status", nil)
	if err != nil {
		return CheckResult{}, err
	}

	if status != http.StatusOK {
		return CheckResult{}, &StatusError{StatusCode: status}
	}

	var out checkResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return CheckResult{}, fmt.Errorf("decode check response: %w", err)
	}
	return CheckResult{Verified: out.Verified, Reason: out.Reason}, nil
}

// RemoveDomain deregisters the hostname. Returns ErrDomainNotFound when the
// provider has no such domain.
func (c *Client) RemoveDomain(ctx context.Context, hostname string) error {
	status, _, err := c.do(ctx, http.MethodDelete, c.domainsURL(hostname), nil)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrDomainNotFound
	default:
		return &StatusError{StatusCode: status}
	}
}

// do issues the request under the hosting timeout and drains the body before
// the deadline is released.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, config.HostingTimeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read provider response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) domainsURL(hostname string) string {
	base := fmt.Sprintf("%s/v1/projects/%s/domains", c.apiBase, url.PathEscape(c.project))
	if hostname == "" {
		return base
	}
	return base + "/" + url.PathEscape(hostname)
}

func errorCode(body []byte) string {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil {
		return ""
	}
	return pe.Error.Code
}
