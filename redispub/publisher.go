package redispub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/finalize/strategy"
)

// DefaultChannel is used when Config.Channel is empty.
const DefaultChannel = "finalize.errors"

// ErrNoSubscribers is returned by a Publisher built WithRequireSubscribers
// when nobody received the message.
var ErrNoSubscribers = errors.New("redispub: no subscribers received the error")

// Client is the subset of *redis.Client a Publisher needs.
type Client interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Message is the JSON payload published for each finalizer error.
type Message struct {
	ID     string    `json:"id"`
	Error  string    `json:"error"`
	Time   time.Time `json:"time"`
	Source string    `json:"source,omitempty"`
}

// Config holds connection settings for Dial.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Channel  string `yaml:"channel"`
	Source   string `yaml:"source"`

	// RequireSubscribers makes a publish nobody received a failure.
	RequireSubscribers bool `yaml:"require_subscribers"`
}

// Publisher is a strategy.FallibleHandler that publishes each error.
type Publisher struct {
	client             Client
	closer             io.Closer
	channel            string
	source             string
	requireSubscribers bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSource tags every message with source, e.g. a hostname.
func WithSource(source string) Option {
	return func(p *Publisher) { p.source = source }
}

// WithRequireSubscribers fails a publish that reached no subscriber.
func WithRequireSubscribers(require bool) Option {
	return func(p *Publisher) { p.requireSubscribers = require }
}

// New returns a Publisher on channel. The caller keeps ownership of client.
func New(client Client, channel string, opts ...Option) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	p := &Publisher{client: client, channel: channel}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dial connects to redis, verifies the connection and returns a Publisher
// that owns the client. Close releases it.
func Dial(ctx context.Context, cfg Config) (*Publisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redispub: parse url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redispub: connect: %w", err)
	}

	p := New(rdb, cfg.Channel, WithSource(cfg.Source), WithRequireSubscribers(cfg.RequireSubscribers))
	p.closer = rdb
	return p, nil
}

// TryHandle publishes err as a Message.
func (p *Publisher) TryHandle(ctx context.Context, err error) error {
	report := strategy.NewReport(err)
	msg := Message{
		ID:     report.ID.String(),
		Time:   report.Time.UTC(),
		Source: p.source,
	}
	if err != nil {
		msg.Error = err.Error()
	}

	payload, merr := json.Marshal(msg)
	if merr != nil {
		return fmt.Errorf("redispub: encode: %w", merr)
	}

	n, perr := p.client.Publish(ctx, p.channel, payload).Result()
	if perr != nil {
		return fmt.Errorf("redispub: publish to %q: %w", p.channel, perr)
	}
	if n == 0 && p.requireSubscribers {
		return ErrNoSubscribers
	}
	return nil
}

// Ping checks the connection. It fits health.NewPingChecker.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Channel returns the channel messages are published on.
func (p *Publisher) Channel() string { return p.channel }

// Close closes the client if the Publisher owns it.
func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
