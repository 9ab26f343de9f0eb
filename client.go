package deepl

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/lexigo/deepl-go/internal/buildinfo"
)

const (
	serverURLPro  = "https://api.deepl.com"
	serverURLFree = "https://api-free.deepl.com"

	defaultMaxRetries   = 5
	defaultMinTimeout   = 10 * time.Second
	defaultPollInterval = 5 * time.Second
)

// Client is a DeepL API client. It is safe for concurrent use.
type Client struct {
	serverURL    string
	headers      http.Header
	exec         *executor
	pollInterval time.Duration
}

type clientConfig struct {
	serverURL    string
	proxyURL     string
	transport    Transport
	httpClient   *http.Client
	maxRetries   int
	minTimeout   time.Duration
	pollInterval time.Duration
	userAgent    string
	sendPlatform bool
	appName      string
	appVersion   string
	extraHeaders http.Header
}

// Option configures a Client.
type Option func(*clientConfig)

// WithServerURL overrides the API base URL, for example to target a mock
// server in tests.
func WithServerURL(u string) Option {
	return func(c *clientConfig) { c.serverURL = u }
}

// WithProxyURL routes all requests through the given proxy. HTTP, HTTPS and
// SOCKS5 proxy URLs are supported.
func WithProxyURL(u string) Option {
	return func(c *clientConfig) { c.proxyURL = u }
}

// WithTransport replaces the HTTP transport entirely. Mainly useful for
// tests.
func WithTransport(t Transport) Option {
	return func(c *clientConfig) { c.transport = t }
}

// WithHTTPClient sends requests through the given http.Client instead of
// the default one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a failed request is retried before
// giving up. The default is 5.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) { c.maxRetries = n }
}

// WithMinConnectionTimeout sets the lower bound for the per-attempt request
// timeout. The default is 10 seconds.
func WithMinConnectionTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.minTimeout = d }
}

// WithDocumentPollInterval sets how often document translation status is
// polled while waiting. The default is 5 seconds.
func WithDocumentPollInterval(d time.Duration) Option {
	return func(c *clientConfig) { c.pollInterval = d }
}

// WithUserAgent replaces the whole User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) { c.userAgent = ua }
}

// WithoutPlatformInfo omits library, OS and Go version details from the
// User-Agent header.
func WithoutPlatformInfo() Option {
	return func(c *clientConfig) { c.sendPlatform = false }
}

// WithAppInfo appends an identifier for the calling application to the
// User-Agent header.
func WithAppInfo(name, version string) Option {
	return func(c *clientConfig) {
		c.appName = name
		c.appVersion = version
	}
}

// WithHeader sets an extra header on every request.
func WithHeader(key, value string) Option {
	return func(c *clientConfig) {
		if c.extraHeaders == nil {
			c.extraHeaders = http.Header{}
		}
		c.extraHeaders.Set(key, value)
	}
}

// NewClient creates a client for the given authentication key. Keys issued
// for the free tier (suffix ":fx") are routed to the free API endpoint
// automatically.
func NewClient(authKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(authKey) == "" {
		return nil, fmt.Errorf("authKey must not be empty")
	}

	cfg := clientConfig{
		maxRetries:   defaultMaxRetries,
		minTimeout:   defaultMinTimeout,
		pollInterval: defaultPollInterval,
		sendPlatform: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	serverURL := cfg.serverURL
	if serverURL == "" {
		if isFreeAccountAuthKey(authKey) {
			serverURL = serverURLFree
		} else {
			serverURL = serverURLPro
		}
	}
	serverURL = strings.TrimRight(serverURL, "/")

	transport := cfg.transport
	if transport == nil {
		if cfg.httpClient != nil {
			transport = NewHTTPTransportWithClient(cfg.httpClient)
		} else {
			var err error
			transport, err = NewHTTPTransport(cfg.proxyURL)
			if err != nil {
				return nil, err
			}
		}
	}

	headers := http.Header{}
	headers.Set("Authorization", "DeepL-Auth-Key "+authKey)
	headers.Set("User-Agent", buildUserAgent(cfg))
	for key, values := range cfg.extraHeaders {
		for _, v := range values {
			headers.Set(key, v)
		}
	}

	return &Client{
		serverURL:    serverURL,
		headers:      headers,
		exec:         newExecutor(transport, cfg.maxRetries, cfg.minTimeout),
		pollInterval: cfg.pollInterval,
	}, nil
}

// isFreeAccountAuthKey reports whether the key belongs to a free-tier
// account.
func isFreeAccountAuthKey(key string) bool {
	return strings.HasSuffix(key, ":fx")
}

func buildUserAgent(cfg clientConfig) string {
	if cfg.userAgent != "" {
		return cfg.userAgent
	}
	var b strings.Builder
	fmt.Fprintf(&b, "deepl-go/%s", buildinfo.Version)
	if cfg.sendPlatform {
		fmt.Fprintf(&b, " (%s/%s) go/%s", runtime.GOOS, runtime.GOARCH, strings.TrimPrefix(runtime.Version(), "go"))
	}
	if cfg.appName != "" && cfg.appVersion != "" {
		fmt.Fprintf(&b, " %s/%s", cfg.appName, cfg.appVersion)
	}
	return b.String()
}

// callAPI sends one API request and checks the response status. The
// returned response is only valid when err is nil.
func (c *Client) callAPI(ctx context.Context, req *LogicalRequest, sc statusContext) (*NormalizedResponse, error) {
	req.URL = c.serverURL + req.URL
	if req.Header == nil {
		req.Header = http.Header{}
	}
	for key, values := range c.headers {
		if req.Header.Get(key) == "" {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
	}

	resp, err := c.exec.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, sc); err != nil {
		return nil, err
	}
	return resp, nil
}

// sleep waits for the given duration unless the context ends first.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	return waitWithContext(ctx, d)
}
