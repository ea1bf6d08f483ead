package api

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

// DefaultTimeout bounds every call made through the default HTTP client.
const DefaultTimeout = 30 * time.Second

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option configures a Request at construction time.
type Option func(*Request)

// WithHTTPClient replaces the HTTP client used to reach the API. A later
// WithTimeout or WithInsecureSkipVerify configures a copy of client, never
// client itself.
func WithHTTPClient(client Doer) Option {
	return func(r *Request) {
		r.client = client
		r.ownsClient = false
	}
}

// WithTimeout sets the timeout of the HTTP client. It has no effect once
// WithHTTPClient installed a client that is not an *http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Request) {
		if c := r.httpClient(); c != nil {
			c.Timeout = timeout
		}
	}
}

// WithVersion overrides the API version segment of the route.
func WithVersion(version string) Option {
	return func(r *Request) {
		r.version = version
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. Meant for
// local API stacks with self-signed certificates. The transport is a clone of
// the current one, or of http.DefaultTransport, so proxy and dial settings
// are kept. Clients with a custom RoundTripper are left untouched.
func WithInsecureSkipVerify() Option {
	return func(r *Request) {
		c := r.httpClient()
		if c == nil {
			return
		}

		var transport *http.Transport
		switch t := c.Transport.(type) {
		case nil:
			transport = http.DefaultTransport.(*http.Transport).Clone()
		case *http.Transport:
			transport = t.Clone()
		default:
			return
		}
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
		c.Transport = transport
	}
}

// httpClient returns the *http.Client the Request may modify, copying a
// caller-supplied one first. It returns nil for other Doers.
func (r *Request) httpClient() *http.Client {
	c, ok := r.client.(*http.Client)
	if !ok {
		return nil
	}
	if !r.ownsClient {
		copied := *c
		c = &copied
		r.client = c
		r.ownsClient = true
	}
	return c
}

// BreakerSettings configures the circuit breaker installed by
// WithCircuitBreaker.
type BreakerSettings struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval of the closed state after which counts are cleared.
	Interval time.Duration
	// Timeout of the open state before moving to half-open.
	Timeout time.Duration
	// ConsecutiveFailures that trip the breaker.
	ConsecutiveFailures uint32
}

// WithCircuitBreaker wraps the HTTP client in a circuit breaker. Transport
// errors and 5xx responses count as failures; 5xx responses are still handed
// back so they map to a RequestError. While the breaker is open, calls fail
// with a RequestError whose cause is gobreaker.ErrOpenState.
//
// Apply it after WithHTTPClient so the replacement client is the one wrapped.
func WithCircuitBreaker(settings BreakerSettings) Option {
	return func(r *Request) {
		r.client = newBreakerDoer(r.client, settings)
	}
}

type breakerDoer struct {
	next Doer
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

// serverFailure carries a 5xx response through the breaker so it is counted
// as a failure but still reaches the caller.
type serverFailure struct {
	resp *http.Response
}

func (e *serverFailure) Error() string {
	return e.resp.Status
}

func newBreakerDoer(next Doer, settings BreakerSettings) *breakerDoer {
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return &breakerDoer{
		next: next,
		cb: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "yampi api",
			MaxRequests: settings.MaxRequests,
			Interval:    settings.Interval,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		}),
	}
}

func (b *breakerDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := b.cb.Execute(func() (*http.Response, error) {
		resp, err := b.next.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverFailure{resp: resp}
		}
		return resp, nil
	})
	var failure *serverFailure
	if errors.As(err, &failure) {
		return failure.resp, nil
	}
	return resp, err
}

// withTiming attaches an httptrace hook to ctx that fills timing as the
// connection progresses.
func withTiming(ctx context.Context, timing *TimingInfo) context.Context {
	var dnsStart, connectStart, tlsStart time.Time
	var connectDone bool
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			now := time.Now()
			timing.DNSLookupTime = now.Sub(dnsStart)
			lastPhaseEnd = now
		},
		ConnectStart: func(string, string) {
			connectStart = time.Now()
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil && !connectStart.IsZero() {
				now := time.Now()
				timing.TCPConnectTime = now.Sub(connectStart)
				connectDone = true
				lastPhaseEnd = now
			}
		},
		TLSHandshakeStart: func() {
			if connectDone {
				tlsStart = time.Now()
			}
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil && !tlsStart.IsZero() {
				now := time.Now()
				timing.TLSHandshakeTime = now.Sub(tlsStart)
				lastPhaseEnd = now
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}

	return httptrace.WithClientTrace(ctx, trace)
}
