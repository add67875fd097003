package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/flash"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/infra/buildinfo"
	"github.com/foxcodenine/iot-parking-console/internal/infra/tlsroots"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
)

// DefaultTimeout bounds every call.
const DefaultTimeout = 15 * time.Second

// maxBody caps how much of a reply is read.
const maxBody = 10 << 20

// LoginPath is where a hard redirect lands.
const LoginPath = "/login"

// reauthMessage is shown when the backend asks for a fresh sign-in.
const reauthMessage = "Your session needs to be renewed. Please log out and sign in again."

// errSessionEnded is the cancellation cause of calls cut off by sign-out.
var errSessionEnded = errors.New("session ended")

// Session is the part of the session store the client needs.
type Session interface {
	Token(ctx context.Context) string
	IsAuthenticated(ctx context.Context) bool
	Clear(ctx context.Context) error
	Lifetime() (string, context.Context)
	IsCurrent(generation string) bool
}

// Flash receives envelope messages.
type Flash interface {
	SetSeverity(sev flash.Severity, messages ...string)
	SetPersist(n int)
}

// Navigator reports the current route and performs hard redirects.
type Navigator interface {
	Route() string
	HardRedirect(ctx context.Context, path string)
}

// Config configures the client.
type Config struct {
	// BaseURL is the platform API origin, e.g. https://parking.example.com.
	BaseURL string

	// Timeout bounds each call. Default: 15s.
	Timeout time.Duration

	// CAFile is an optional PEM bundle trusted in addition to nothing else.
	CAFile string

	// LoginRoute is the route name on which a logout action is ignored.
	// Default: "login".
	LoginRoute string
}

// Deps are the collaborators of the client. Only Session is required.
type Deps struct {
	Session   Session
	Flash     Flash
	Navigator Navigator
	Logger    logger.Logger
	Metrics   *metric.Registry
}

// HTTPClient provides HTTP communication with the platform API.
type HTTPClient struct {
	baseURL    string
	loginRoute string
	userAgent  string
	client     *http.Client

	session Session
	flash   Flash
	nav     Navigator
	logger  logger.Logger
	metrics *metric.Registry

	// unauthorized serialises the clear-and-redirect of a 401.
	unauthorized sync.Mutex
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(cfg Config, deps Deps) (*HTTPClient, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL != "" && !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.CAFile != "" {
		pool, err := tlsroots.Load(cfg.CAFile)
		if err != nil {
			return nil, domain.ErrConfig.WithDetails("ca_file").WithCause(err)
		}
		transport.TLSClientConfig = pool.ClientConfig()
	}

	loginRoute := cfg.LoginRoute
	if loginRoute == "" {
		loginRoute = "login"
	}

	c := &HTTPClient{
		baseURL:    baseURL,
		loginRoute: loginRoute,
		userAgent:  "parking-console/" + buildinfo.Get().Version,
		client:     &http.Client{Timeout: timeout, Transport: transport},
		session:    deps.Session,
		flash:      deps.Flash,
		nav:        deps.Navigator,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
	if c.logger == nil {
		c.logger = logger.Discard()
	}
	return c, nil
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetNavigator attaches the navigator after construction.
func (c *HTTPClient) SetNavigator(nav Navigator) {
	c.nav = nav
}

// Get performs a GET request and decodes the reply into out.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one request. path may be absolute (http://...) or relative to
// the base URL. Non-2xx replies are returned as *domain.APIError; failures
// without a reply wrap domain.ErrTransport.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) error {
	generation, lifetime := c.session.Lifetime()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := context.AfterFunc(lifetime, func() { cancel(errSessionEnded) })
	defer stop()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	requestID := req.Header.Get("X-Request-ID")
	log := c.logger.With("method", method, "path", path, "request_id", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveHTTP(method, 0, time.Since(start))
		if cause := context.Cause(ctx); errors.Is(cause, errSessionEnded) {
			err = cause
		}
		log.Debug("request failed", "error", err)
		return domain.ErrTransport.WithDetails(method + " " + path).WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.metrics.ObserveHTTP(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return domain.ErrTransport.WithDetails(method + " " + path).WithCause(err)
	}
	log.Debug("request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	current := c.session.IsCurrent(generation)
	if !current {
		log.Debug("reply belongs to an ended session; side effects skipped")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.onError(ctx, req, resp.StatusCode, data, generation, current)
	}
	return c.onSuccess(data, out, current)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.baseURL + path
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", ulid.Make().String())
	if c.session.IsAuthenticated(ctx) {
		req.Header.Set("Authorization", "Bearer "+c.session.Token(ctx))
	}
	return req, nil
}

func (c *HTTPClient) onSuccess(data []byte, out any, current bool) error {
	var env domain.Envelope
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err != nil {
			if out != nil {
				return domain.ErrDecodeResponse.WithCause(err)
			}
			return nil
		}
	}

	if current && c.flash != nil && len(env.Messages) > 0 && !env.HasAction(domain.ActionHideMessage) {
		c.flash.SetSeverity(flash.SeverityInfo, env.Messages...)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return domain.ErrDecodeResponse.WithCause(err)
		}
	}
	return nil
}

func (c *HTTPClient) onError(ctx context.Context, req *http.Request, status int, data []byte, generation string, current bool) error {
	apiErr := &domain.APIError{
		Status: status,
		Method: req.Method,
		Path:   req.URL.Path,
	}

	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err == nil {
		apiErr.Messages = env.Messages
		if len(apiErr.Messages) == 0 && env.Message != "" {
			apiErr.Messages = []string{env.Message}
		}
		apiErr.Actions = env.Actions
	} else if text := strings.TrimSpace(string(data)); text != "" && len(text) < 512 {
		// Plain-text error bodies are kept for the caller, not flashed.
		apiErr.Messages = []string{text}
		env = domain.Envelope{}
	}

	if !current {
		return apiErr
	}

	if c.flash != nil && len(env.Messages) > 0 {
		c.flash.SetSeverity(flash.SeverityError, env.Messages...)
	}

	ctx = context.WithoutCancel(ctx)
	if status == http.StatusUnauthorized && c.session.IsAuthenticated(ctx) {
		c.expire(ctx, generation)
		return apiErr
	}

	if c.flash != nil {
		if env.HasAction(domain.ActionLogout) && (c.nav == nil || c.nav.Route() != c.loginRoute) {
			c.flash.SetSeverity(flash.SeverityWarning, append(env.Messages, reauthMessage)...)
			c.flash.SetPersist(1)
		}
	}
	return apiErr
}

// expire clears the session and redirects to login, once per lifetime.
func (c *HTTPClient) expire(ctx context.Context, generation string) {
	c.unauthorized.Lock()
	defer c.unauthorized.Unlock()

	if !c.session.IsCurrent(generation) {
		return
	}
	if err := c.session.Clear(ctx); err != nil {
		c.logger.Error("clear session after 401", "error", err)
	}
	c.logger.Info("session rejected by server; signing out")
	if c.nav != nil {
		c.nav.HardRedirect(ctx, LoginPath)
	}
}
