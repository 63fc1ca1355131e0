package syncer

import "go.uber.org/zap"

// EventType names a step of a sync run.
type EventType string

const (
	EventState   EventType = "state"   // The orchestrator moved to State
	EventLookup  EventType = "lookup"  // Listing remote assets of Kind
	EventFound   EventType = "found"   // A remote asset named Name exists, Message holds its uid
	EventMissing EventType = "missing" // No remote asset named Name
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventError   EventType = "error"
)

// Event reports progress of a sync run. Only the fields relevant to Type
// are set.
type Event struct {
	Type    EventType
	State   State
	Kind    AssetKind
	Name    string
	Message string
	Result  *UpsertResult
	Err     error
}

// EventCallback receives events as a run progresses. It is called on the
// goroutine running the sync and must not block for long.
type EventCallback func(Event)

// Option configures an upsert or a run.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	callback EventCallback
}

// WithLogger sets the logger for sync decisions.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEventCallback registers cb for progress events.
func WithEventCallback(cb EventCallback) Option {
	return func(o *options) {
		o.callback = cb
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) emit(e Event) {
	if o.callback != nil {
		o.callback(e)
	}
}
