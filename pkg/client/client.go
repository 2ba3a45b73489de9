// Package client provides the signed Learnosity Data API client used to read
// from an item bank.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/itembank-client/pkg/itembank"
	"github.com/dghubble/sling"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ActionGet is the Data API action for read requests.
const ActionGet = "get"

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a response body that is not JSON.
	ErrorClassDecode ErrorClass = "decode"
)

// Client performs signed Data API requests.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
	now        func() time.Time
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the item bank root that endpoint names are appended to.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// HTTPClient performs the requests. Nil means http.DefaultClient; no
	// timeout is set here.
	HTTPClient *http.Client
}

// DefaultConfig returns the configuration for the production Data API.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   itembank.DefaultBaseURL,
		UserAgent: userAgent,
	}
}

// New creates a new Data API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = itembank.DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "itembank-client").Logger(),
		now:        time.Now,
	}, nil
}

// signedForm is the form body of a Data API request.
type signedForm struct {
	Security string `url:"security"`
	Request  string `url:"request,omitempty"`
	Action   string `url:"action,omitempty"`
}

// Request signs security with secret and posts it to endpoint together with
// the JSON-encoded request packet and action. A nil request is omitted from
// both the signature and the form. Non-2xx responses return an *APIError.
func (c *Client) Request(ctx context.Context, endpoint string, security SecurityPacket, secret string, request any, action string) (*Response, error) {
	requestJSON, err := encodeRequest(request)
	if err != nil {
		return nil, fmt.Errorf("encode request packet: %w", err)
	}

	if security.Timestamp == "" {
		security.Timestamp = FormatTimestamp(c.now())
	}
	security.Signature = Sign(security, secret, requestJSON, action)

	securityJSON, err := json.Marshal(security)
	if err != nil {
		return nil, fmt.Errorf("encode security packet: %w", err)
	}

	label := endpointLabel(endpoint)
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(label).Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("action", action).
		Str("consumer_key", security.ConsumerKey).
		Str("timestamp", security.Timestamp).
		Msg("Executing itembank request")

	req, err := sling.New().
		Set("User-Agent", c.config.UserAgent).
		Set("Accept", "application/json").
		Post(endpoint).
		BodyForm(signedForm{
			Security: string(securityJSON),
			Request:  requestJSON,
			Action:   action,
		}).
		Request()
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req = req.WithContext(ctx)

	var body []byte
	resp, err := sling.New().
		Client(c.httpClient).
		ResponseDecoder(rawDecoder{}).
		Do(req, &body, &body)
	if err != nil {
		if resp == nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(label, "network_error").Inc()
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			return nil, fmt.Errorf("post %s: %w", endpoint, err)
		}
		return nil, fmt.Errorf("read response body: %w", err)
	}

	requestsTotal.WithLabelValues(label, strconv.Itoa(resp.StatusCode)).Inc()

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}

	if errClass := classifyStatus(resp.StatusCode); errClass != "" {
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Itembank request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
			Body:       body,
		}
	}

	c.logger.Info().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("Itembank request succeeded")

	return out, nil
}

// Fetch reads records from an item bank endpoint and returns the response
// body indented with two spaces. A non-nil reference fetches that single
// record and limit is ignored.
func (c *Client) Fetch(ctx context.Context, endpoint itembank.Endpoint, reference *string, creds itembank.Credentials, limit int) (string, error) {
	resp, err := c.Request(
		ctx,
		itembank.BuildURL(c.config.BaseURL, endpoint),
		SecurityPacket{
			ConsumerKey: creds.ConsumerKey,
			Domain:      creds.Domain,
		},
		creds.ConsumerSecret,
		itembank.MakeRequestPacket(reference, limit),
		ActionGet,
	)
	if err != nil {
		return "", err
	}

	out, err := resp.Indent()
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return "", err
	}
	return out, nil
}

// classifyStatus categorizes a response status. Successful statuses have no
// class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 200 && status < 300:
		return ""
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		// 1xx and 3xx left unfollowed by the transport.
		return ErrorClassClient
	}
}

func encodeRequest(request any) (string, error) {
	if request == nil {
		return "", nil
	}
	data, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// endpointLabel keeps metric cardinality bounded to the URL path.
func endpointLabel(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Path == "" {
		return endpoint
	}
	return u.Path
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetClock overrides the time source used for security timestamps (for testing).
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}
