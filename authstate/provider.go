// Package authstate derives the authentication state of a client from a JWT
// kept in persistent client storage.
package authstate

import (
	"context"
	"sync"

	"github.com/goliatone/go-storefront"
)

// Observer is notified after every derivation of the authentication state.
type Observer interface {
	AuthenticationStateChanged(ctx context.Context, state State)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(ctx context.Context, state State)

// AuthenticationStateChanged implements Observer.
func (f ObserverFunc) AuthenticationStateChanged(ctx context.Context, state State) {
	if f != nil {
		f(ctx, state)
	}
}

type observerEntry struct {
	id       uint64
	observer Observer
}

// Provider derives the authentication state from the stored token.
type Provider struct {
	storage  Storage
	key      string
	header   HeaderSetter
	logger   storefront.Logger
	provider storefront.LoggerProvider

	mu        sync.RWMutex
	observers []observerEntry
	nextID    uint64
}

// Option configures a Provider.
type Option func(*Provider)

// WithTokenKey overrides the storage key, DefaultTokenKey by default.
func WithTokenKey(key string) Option {
	return func(p *Provider) {
		if key != "" {
			p.key = key
		}
	}
}

// WithHeaderSetter sets where the derived authorization header is applied.
func WithHeaderSetter(h HeaderSetter) Option {
	return func(p *Provider) {
		if h != nil {
			p.header = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l storefront.Logger) Option {
	return func(p *Provider) {
		p.provider, p.logger = storefront.ResolveLogger("authstate", nil, l)
	}
}

// WithLoggerProvider sets the logger provider.
func WithLoggerProvider(lp storefront.LoggerProvider) Option {
	return func(p *Provider) {
		p.provider, p.logger = storefront.ResolveLogger("authstate", lp, p.logger)
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(p *Provider) {
		p.Subscribe(o)
	}
}

// NewProvider creates a Provider reading the token from storage.
func NewProvider(storage Storage, opts ...Option) *Provider {
	p := &Provider{
		storage: storage,
		key:     DefaultTokenKey,
		header:  nopHeaderSetter{},
	}
	p.provider, p.logger = storefront.ResolveLogger("authstate", nil, storefront.NopLogger{})

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// TokenKey returns the storage key of the token.
func (p *Provider) TokenKey() string {
	return p.key
}

// Subscribe registers o and returns a function that removes it.
func (p *Provider) Subscribe(o Observer) (unsubscribe func()) {
	if o == nil {
		return func() {}
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.observers = append(p.observers, observerEntry{id: id, observer: o})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, entry := range p.observers {
				if entry.id == id {
					p.observers = append(p.observers[:i:i], p.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// GetAuthenticationState reads the stored token and derives the current
// state. It never fails: unreadable tokens are evicted and reported as an
// anonymous identity. Observers are notified before it returns.
func (p *Provider) GetAuthenticationState(ctx context.Context) State {
	if ctx == nil {
		ctx = context.Background()
	}

	p.header.SetAuthorization("")

	state := p.derive(ctx)
	if state.Authorization != "" {
		p.header.SetAuthorization(state.Authorization)
	}

	p.notify(ctx, state)
	return state
}

// Login stores token and derives the resulting state.
func (p *Provider) Login(ctx context.Context, token string) (State, error) {
	writable, ok := p.storage.(WritableStorage)
	if !ok {
		return p.GetAuthenticationState(ctx), storefront.ErrStorageReadOnly
	}

	if err := writable.SetItemAsString(ctx, p.key, token); err != nil {
		p.logger.Error("token storage write failed", "key", p.key, "error", err)
		return p.GetAuthenticationState(ctx), storefront.WrapWith(storefront.ErrCollaborator, err, map[string]any{
			"operation": "set_item",
			"key":       p.key,
		})
	}

	return p.GetAuthenticationState(ctx), nil
}

// Logout removes the stored token and derives the resulting state.
func (p *Provider) Logout(ctx context.Context) (State, error) {
	if err := p.storage.RemoveItem(ctx, p.key); err != nil {
		p.logger.Error("token storage remove failed", "key", p.key, "error", err)
		return p.GetAuthenticationState(ctx), storefront.WrapWith(storefront.ErrCollaborator, err, map[string]any{
			"operation": "remove_item",
			"key":       p.key,
		})
	}
	return p.GetAuthenticationState(ctx), nil
}

func (p *Provider) derive(ctx context.Context) State {
	anonymous := State{Identity: Anonymous()}

	raw, found, err := p.storage.GetItemAsString(ctx, p.key)
	if err != nil {
		p.logger.Warn("token storage read failed", "key", p.key, "error", err)
		return anonymous
	}
	if !found || raw == "" {
		return anonymous
	}

	decoded := DecodeToken(raw)
	if !decoded.OK() {
		p.evict(ctx, decoded.Err)
		return anonymous
	}

	return State{
		Identity:      decoded.Identity,
		Authorization: decoded.Header,
	}
}

// evict drops a token that cannot be decoded so the next derivation starts
// from a clean slate.
func (p *Provider) evict(ctx context.Context, cause error) {
	p.logger.Warn("stored token could not be decoded, removing it", "key", p.key, "error", cause)
	if err := p.storage.RemoveItem(ctx, p.key); err != nil {
		p.logger.Error("token eviction failed", "key", p.key, "error", err)
	}
}

func (p *Provider) notify(ctx context.Context, state State) {
	p.mu.RLock()
	observers := make([]Observer, 0, len(p.observers))
	for _, entry := range p.observers {
		observers = append(observers, entry.observer)
	}
	p.mu.RUnlock()

	for _, o := range observers {
		o.AuthenticationStateChanged(ctx, state)
	}
}
