package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GabrielG71/online-chat/module/chat/model"
	"github.com/GabrielG71/online-chat/tools/safe"
)

// State is the controller's connection state, surfaced to the UI layer.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

// ErrRetriesExhausted is the terminal error after the retry budget is
// spent. No further automatic reconnects happen; the caller must invoke
// Connect again explicitly.
var ErrRetriesExhausted = errors.New("reconnect attempts exhausted")

var errStreamEnded = errors.New("stream ended")

// Config tunes the controller. Zero values pick the documented defaults.
type Config struct {
	BaseURL string
	Token   string

	// ConnectTimeout bounds the wait for the server's connected event.
	ConnectTimeout time.Duration
	// ActivityTimeout triggers a preventive reconnect when the stream has
	// been completely silent for this long. Set it just below the server's
	// maximum stream lifetime to avoid an observable delivery gap.
	ActivityTimeout time.Duration

	MaxReconnectAttempts int
	BackoffBase          time.Duration
	BackoffCap           time.Duration
	DedupWindow          int

	HTTPClient *http.Client
}

func (c *Config) norm() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ActivityTimeout <= 0 {
		c.ActivityTimeout = 45 * time.Second
	}
	if c.MaxReconnectAttempts < 0 {
		c.MaxReconnectAttempts = 0
	} else if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = 10
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 30 * time.Second
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = 256
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
}

// wireEvent is the client-side decoding of one stream frame. Message stays
// raw because the field carries a message record or an error string
// depending on the event type.
type wireEvent struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
	SenderID  string          `json:"senderId"`
	IsTyping  *bool           `json:"isTyping"`
	UserID    string          `json:"userId"`
}

// Controller maintains the live event stream for one authenticated user:
// opens it, keeps it alive, reconnects with capped exponential backoff and
// jitter, deduplicates messages, and exposes connection state.
type Controller struct {
	cfg Config

	mu               sync.Mutex
	state            State
	running          bool
	intentionalClose bool
	// cancelRun tears down the whole run loop: the live stream, a pending
	// retry wait, and a dial still in flight all hang off this context.
	cancelRun    context.CancelFunc
	lastActivity time.Time

	recon *reconnector
	dedup *recentIDs

	onMessage []func(model.Message)
	onTyping  []func(senderID string, isTyping bool)
	onState   []func(State)
	onError   []func(error)
}

func New(cfg Config) *Controller {
	cfg.norm()
	return &Controller{
		cfg:   cfg,
		state: StateIdle,
		recon: newReconnector(cfg.BackoffBase, cfg.BackoffCap, cfg.MaxReconnectAttempts),
		dedup: newRecentIDs(cfg.DedupWindow),
	}
}

// OnMessage registers a handler for deduplicated incoming messages.
func (c *Controller) OnMessage(h func(model.Message)) {
	c.mu.Lock()
	c.onMessage = append(c.onMessage, h)
	c.mu.Unlock()
}

// OnTyping registers a handler for typing indicators.
func (c *Controller) OnTyping(h func(senderID string, isTyping bool)) {
	c.mu.Lock()
	c.onTyping = append(c.onTyping, h)
	c.mu.Unlock()
}

// OnStateChange registers a handler invoked on every state transition.
func (c *Controller) OnStateChange(h func(State)) {
	c.mu.Lock()
	c.onState = append(c.onState, h)
	c.mu.Unlock()
}

// OnError registers a handler for stream errors, including the terminal
// ErrRetriesExhausted.
func (c *Controller) OnError(h func(error)) {
	c.mu.Lock()
	c.onError = append(c.onError, h)
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the stream loop. No-op while already running. The loop
// stops when ctx is cancelled, Disconnect is called, or retries exhaust.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.intentionalClose = false
	c.recon.reset()
	runCtx, cancel := context.WithCancel(ctx)
	c.cancelRun = cancel
	c.mu.Unlock()

	go c.run(runCtx)
	return nil
}

// Disconnect always wins: it cancels the run loop's context, which covers
// the live stream, a dial still in flight, and any pending retry timer,
// and settles in Idle without triggering reconnect logic. Safe to call in
// any state, including immediately after Connect.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	c.intentionalClose = true
	cancel := c.cancelRun
	c.cancelRun = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Controller) run(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	first := true
	for {
		if first {
			c.setState(StateConnecting)
			first = false
		} else {
			c.setState(StateReconnecting)
		}

		err := c.streamOnce(ctx)

		if c.closedIntentionally() || ctx.Err() != nil {
			c.setState(StateIdle)
			return
		}
		if err != nil && !errors.Is(err, errStreamEnded) {
			c.emitError(err)
		}

		if !c.recon.shouldReconnect() {
			c.setState(StateFailed)
			c.emitError(ErrRetriesExhausted)
			return
		}
		delay := c.recon.nextDelay()

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.setState(StateIdle)
			return
		}
	}
}

// streamOnce opens the stream, waits for the handshake and then pumps
// events until the connection ends. Always returns a non-nil reason for
// the close unless the controller is shutting down.
func (c *Controller) streamOnce(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()

	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/chat/sse?token=" + url.QueryEscape(c.cfg.Token)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// The whole open, from the dial until the server's connected event,
	// must finish inside the connect timeout. Started before Do: a server
	// that accepts but never writes headers blocks there.
	connectTimer := time.AfterFunc(c.cfg.ConnectTimeout, cancel)
	defer connectTimer.Stop()

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream HTTP %d", resp.StatusCode)
	}

	safe.SafeGo(func() { c.activityWatchdog(streamCtx, cancel) })

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		c.mu.Lock()
		c.lastActivity = time.Now()
		c.mu.Unlock()

		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev wireEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			// Malformed frame: drop it, keep the stream.
			c.emitError(fmt.Errorf("malformed event: %w", err))
			continue
		}

		switch ev.Type {
		case "connected":
			connectTimer.Stop()
			c.recon.reset()
			c.setState(StateConnected)

		case "ping":
			// Heartbeat; activity already recorded.

		case "new_message":
			var msg model.Message
			if err := json.Unmarshal(ev.Message, &msg); err != nil {
				c.emitError(fmt.Errorf("malformed message: %w", err))
				continue
			}
			c.mu.Lock()
			dup := c.dedup.Observe(msg.ID)
			handlers := append([]func(model.Message){}, c.onMessage...)
			c.mu.Unlock()
			if dup {
				continue
			}
			for _, h := range handlers {
				h(msg)
			}

		case "typing_status":
			if ev.IsTyping == nil {
				continue
			}
			c.mu.Lock()
			handlers := append([]func(string, bool){}, c.onTyping...)
			c.mu.Unlock()
			for _, h := range handlers {
				h(ev.SenderID, *ev.IsTyping)
			}

		case "timeout":
			// Server is about to force-close; the read loop ends next and
			// the run loop schedules the reconnect.

		case "error":
			// The server declared the stream broken: end it and let the
			// run loop schedule the reconnect.
			var reason string
			_ = json.Unmarshal(ev.Message, &reason)
			return fmt.Errorf("server error: %s", reason)
		}
	}

	if err := scanner.Err(); err != nil && streamCtx.Err() == nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return errStreamEnded
}

// activityWatchdog cancels the stream when nothing at all has arrived for
// ActivityTimeout, forcing a proactive reconnect instead of waiting for a
// forced server-side timeout.
func (c *Controller) activityWatchdog(ctx context.Context, cancel context.CancelFunc) {
	interval := c.cfg.ActivityTimeout / 4
	if interval < 100*time.Millisecond {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			stale := time.Since(c.lastActivity) > c.cfg.ActivityTimeout
			c.mu.Unlock()
			if stale {
				cancel()
				return
			}
		}
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	handlers := append([]func(State){}, c.onState...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(s)
	}
}

func (c *Controller) emitError(err error) {
	c.mu.Lock()
	handlers := append([]func(error){}, c.onError...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(err)
	}
}

func (c *Controller) closedIntentionally() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intentionalClose
}
