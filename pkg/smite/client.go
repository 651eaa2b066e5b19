package smite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamestats/smite-stats/pkg/audit"
)

// DefaultEndpoint is the PC endpoint of the Smite API.
const DefaultEndpoint = "http://api.smitegame.com/smiteapi.svc/"

// DefaultLanguageCode selects English static game data.
const DefaultLanguageCode = 1

// responseFormat is appended to every method name in the request URL. The
// client only speaks JSON.
const responseFormat = "Json"

// queueDateLayout formats the date argument of getmatchidsbyqueue.
const queueDateLayout = "20060102"

// API method names.
const (
	createSessionMethod   = "createsession"
	methodGetQueueMatches = "getmatchidsbyqueue"
	methodGetMatch        = "getmatchdetails"
	methodGetGods         = "getgods"
	methodGetDataUsed     = "getdataused"
)

// Client is a synchronous Smite API client holding one logical session.
// Every authenticated operation checks the session before issuing its
// request and transparently creates a new one if the current session has
// expired. A mutex serializes the check-refresh-call sequence, so a Client
// shared across goroutines will not double-refresh; it also means requests
// on a shared Client are serialized, which matches the single-session
// model the API imposes per developer id.
type Client struct {
	devID    string
	authKey  string
	endpoint string

	transport  Transport
	logger     *slog.Logger
	accountant audit.Logger
	now        func() time.Time

	mu      sync.Mutex
	session Session
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithEndpoint overrides the API endpoint. The value must end with a
// trailing slash, like DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithSession seeds the client with a previously persisted session. An
// expired or empty session is harmless: the first authenticated call
// replaces it.
func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

// WithUsageLog records an accounting event for every API call issued.
func WithUsageLog(l audit.Logger) Option {
	return func(c *Client) { c.accountant = l }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Client for the given developer credentials.
func New(devID, authKey string, opts ...Option) *Client {
	c := &Client{
		devID:    devID,
		authKey:  authKey,
		endpoint: DefaultEndpoint,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.accountant == nil {
		c.accountant = audit.NopLogger{}
	}
	return c
}

// Session returns a snapshot of the client's current session.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// signedURL builds the request URL for a call: endpoint + method +
// format, then devID, signature, session id (omitted for createsession),
// timestamp, and method arguments as slash-joined path segments. The
// timestamp is computed once and shared by the signature and the URL; two
// different timestamps for one request would make the signature invalid.
func (c *Client) signedURL(method, sessionID string, args ...string) string {
	ts := c.now().UTC().Format(TimestampLayout)
	sig := Sign(c.devID, method, c.authKey, ts)

	segments := make([]string, 0, len(args)+4)
	segments = append(segments, c.devID, sig)
	if method != createSessionMethod {
		segments = append(segments, sessionID)
	}
	segments = append(segments, ts)
	segments = append(segments, args...)

	return c.endpoint + method + responseFormat + "/" + strings.Join(segments, "/")
}

// call issues an authenticated request: it refreshes the session if it is
// no longer active, signs the URL, and performs the GET. The mutex is held
// across the whole sequence so the session used to sign the request cannot
// be replaced mid-flight by a concurrent caller.
func (c *Client) call(ctx context.Context, method string, args ...string) (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.Active(c.now()) {
		sess, err := c.createSession(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("refreshing session: %w", err)
		}
		c.session = sess
	}

	return c.get(ctx, method, c.signedURL(method, c.session.ID, args...))
}

// get performs the transport GET and records a usage event for it.
func (c *Client) get(ctx context.Context, method, url string) (int, []byte, error) {
	event := audit.NewEvent(method)
	status, body, err := c.transport.Get(ctx, url)
	event.Finish(err == nil, err)
	if logErr := c.accountant.Log(ctx, *event); logErr != nil {
		c.logger.Error("recording usage event", "method", method, "error", logErr)
	}
	return status, body, err
}

// createSession performs the unauthenticated createsession call. Callers
// must hold c.mu.
func (c *Client) createSession(ctx context.Context) (Session, error) {
	url := c.signedURL(createSessionMethod, "")
	status, body, err := c.get(ctx, createSessionMethod, url)
	if err != nil {
		return Session{}, err
	}
	return normalizer{logger: c.logger}.createSession(status, body)
}

// CreateSession explicitly creates a new session and installs it as the
// client's current session. Authenticated operations do this on demand, so
// calling it directly is only needed to force a fresh session, for example
// before persisting one.
func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.createSession(ctx)
	if err != nil {
		return Session{}, err
	}
	c.session = sess
	return sess, nil
}

// GetQueueMatches lists the ids of completed matches for a queue on a
// given date and hour. Hour -1 selects the whole day; valid values are
// -1 through 23 and anything else returns a ValidationError without
// touching the network.
func (c *Client) GetQueueMatches(ctx context.Context, queue int, date time.Time, hour int) ([]int64, error) {
	if hour < -1 || hour > 23 {
		err := &ValidationError{
			Field:  "hour",
			Reason: fmt.Sprintf("%d is outside -1..23", hour),
		}
		c.logger.Error("rejecting getmatchidsbyqueue call", "error", err)
		return nil, err
	}

	status, body, err := c.call(ctx, methodGetQueueMatches,
		strconv.Itoa(queue), date.Format(queueDateLayout), strconv.Itoa(hour))
	if err != nil {
		return nil, err
	}
	return normalizer{logger: c.logger}.queueMatches(status, body)
}

// GetMatch retrieves and normalizes the detail record of a single match.
func (c *Client) GetMatch(ctx context.Context, matchID int64) (Match, error) {
	status, body, err := c.call(ctx, methodGetMatch, strconv.FormatInt(matchID, 10))
	if err != nil {
		return Match{}, err
	}
	return normalizer{logger: c.logger}.matchDetails(status, body)
}

// GetGods returns the static god data for a language code, unreshaped.
// A non-positive code selects DefaultLanguageCode.
func (c *Client) GetGods(ctx context.Context, langCode int) (json.RawMessage, error) {
	if langCode <= 0 {
		langCode = DefaultLanguageCode
	}
	status, body, err := c.call(ctx, methodGetGods, strconv.Itoa(langCode))
	if err != nil {
		return nil, err
	}
	return normalizer{logger: c.logger}.rawJSON(methodGetGods, status, body)
}

// GetDataUsed returns the API's usage accounting response as raw body
// text. Only the transport-level status check is applied.
func (c *Client) GetDataUsed(ctx context.Context) (string, error) {
	status, body, err := c.call(ctx, methodGetDataUsed)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		c.logger.Error("api responded with non-200 status",
			"method", methodGetDataUsed, "status", status, "body", string(body))
		return "", &TransportError{StatusCode: status, Body: string(body)}
	}
	return string(body), nil
}
