package session

import "go.uber.org/zap"

// Registry hands out Managers bound to one client's storage namespace. All
// of them publish to the same Broadcaster, tagged with the client id.
type Registry struct {
	storage func(clientID string) Storage
	secret  []byte
	events  *Broadcaster
	opts    []Option
	log     *zap.SugaredLogger
}

func NewRegistry(storage func(clientID string) Storage, secret []byte, log *zap.SugaredLogger, opts ...Option) *Registry {
	return &Registry{
		storage: storage,
		secret:  secret,
		events:  NewBroadcaster(),
		opts:    opts,
		log:     log,
	}
}

func (r *Registry) ForClient(clientID string) *Manager {
	opts := make([]Option, 0, len(r.opts)+2)
	opts = append(opts, r.opts...)
	opts = append(opts, WithBroadcaster(r.events), WithScope(clientID))
	return NewManager(r.storage(clientID), r.secret, r.log, opts...)
}

func (r *Registry) Events() *Broadcaster {
	return r.events
}
