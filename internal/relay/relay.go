package relay

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// EventPrefix is prepended to every forwarded broadcast name.
const EventPrefix = "graph:"

const defaultConnectTimeout = 15 * time.Second

var ErrInvalidURL = errors.New("relay: invalid url")

// Config describes the remote endpoint.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout bounds Dial. Zero means 15s.
	ConnectTimeout time.Duration
}

// Client is a connected relay.
type Client struct {
	session string
	logger  *slog.Logger
	seq     atomic.Int64
	send    func(event string, payload map[string]any)
	close   func()
}

// Dial connects to the socket.io endpoint and waits for the handshake.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("component", "relay", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: %q needs a scheme and host", ErrInvalidURL, cfg.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)
	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host), opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	logger.Debug("Dialing relay endpoint...")
	io.Connect()

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("relay connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("relay connection aborted: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for relay connection", timeout)
	}

	c := newClient(logger, func(event string, payload map[string]any) {
		io.Emit(event, payload)
	}, func() {
		io.Disconnect()
	})
	logger.Info("Relay connected.", "sid", io.Id(), "session", c.session)
	return c, nil
}

func newClient(logger *slog.Logger, send func(string, map[string]any), closeFn func()) *Client {
	return &Client{
		session: uuid.NewString()[:12],
		logger:  logger,
		send:    send,
		close:   closeFn,
	}
}

// Session identifies this client in every message.
func (c *Client) Session() string { return c.session }

// Listener returns a graph listener forwarding each broadcast.
func (c *Client) Listener() graph.Listener {
	return func(event string, args ...any) {
		msg := Message(event, args...)
		msg["session"] = c.session
		msg["seq"] = c.seq.Add(1)
		c.logger.Debug("Relaying graph event.", "event", event)
		c.send(EventPrefix+event, msg)
	}
}

// Close disconnects. It is safe to call more than once.
func (c *Client) Close() {
	if c.close != nil {
		c.close()
		c.close = nil
	}
}

// Message builds the payload for one broadcast.
func Message(event string, args ...any) map[string]any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = safeValue(a)
	}
	return map[string]any{"event": event, "args": out}
}

func safeValue(v any) any {
	switch t := v.(type) {
	case *graph.Node:
		if t == nil {
			return nil
		}
		return map[string]any{"id": int(t.ID()), "type": t.Type(), "title": t.Title}
	case *graph.Link:
		if t == nil {
			return nil
		}
		return t.Tuple()
	case error:
		return t.Error()
	case nil, string, bool, int, int64, float64:
		return t
	default:
		return fmt.Sprint(t)
	}
}
