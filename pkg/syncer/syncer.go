// Package syncer pushes local environment and collection definitions to
// the remote service. Every sync is an upsert keyed by asset name: the
// remote list is searched for the name, a match is replaced wholesale and
// a miss is created.
package syncer

import (
	"context"

	"go.uber.org/zap"

	"github.com/blackcoderx/pmsync/pkg/postman"
	"github.com/blackcoderx/pmsync/pkg/storage"
)

// AssetKind selects which remote sub-API an upsert targets.
type AssetKind string

const (
	KindEnvironment AssetKind = "environment"
	KindCollection  AssetKind = "collection"
)

// Action is what an upsert did remotely.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// UpsertResult describes one completed upsert.
type UpsertResult struct {
	Kind     AssetKind
	Name     string
	Action   Action
	RemoteID string
}

// Asset is a local definition identified remotely by its name.
type Asset interface {
	AssetName() string
}

// RemoteAPI is the list/create/update surface of one asset kind.
type RemoteAPI[T Asset] interface {
	List(ctx context.Context) ([]postman.Summary, error)
	Create(ctx context.Context, local T) (string, error)
	Update(ctx context.Context, uid string, local T) error
}

// Upsert creates local remotely, or fully replaces the first remote asset
// with the same name. Calls are issued one after another and never retried.
//
// Only the first page of the remote list is inspected, so an asset beyond
// it is not found and gets created a second time. Updates discard anything
// the remote holds that local does not describe.
func Upsert[T Asset](ctx context.Context, kind AssetKind, api RemoteAPI[T], local T, opts ...Option) (UpsertResult, error) {
	o := newOptions(opts)
	name := local.AssetName()
	result := UpsertResult{Kind: kind, Name: name}

	o.emit(Event{Type: EventLookup, Kind: kind, Name: name})
	target, found, err := resolveTarget(ctx, kind, api, name, o.logger)
	if err != nil {
		return result, err
	}

	if found {
		o.emit(Event{Type: EventFound, Kind: kind, Name: name, Message: target.UID})
		if err := api.Update(ctx, target.UID, local); err != nil {
			return result, err
		}
		result.Action = ActionUpdated
		result.RemoteID = target.UID
	} else {
		o.emit(Event{Type: EventMissing, Kind: kind, Name: name})
		uid, err := api.Create(ctx, local)
		if err != nil {
			return result, err
		}
		result.Action = ActionCreated
		result.RemoteID = uid
	}

	o.logger.Info("asset synced",
		zap.String("kind", string(kind)),
		zap.String("action", string(result.Action)),
		zap.String("name", name),
		zap.String("uid", result.RemoteID),
	)
	evType := EventCreated
	if result.Action == ActionUpdated {
		evType = EventUpdated
	}
	o.emit(Event{Type: evType, Kind: kind, Name: name, Result: &result})
	return result, nil
}

// lister is the part of a remote API needed to find an asset by name.
type lister interface {
	List(ctx context.Context) ([]postman.Summary, error)
}

// resolveTarget lists the remote assets and returns the first one named
// name. Later entries with the same name are ignored.
func resolveTarget(ctx context.Context, kind AssetKind, api lister, name string, logger *zap.Logger) (postman.Summary, bool, error) {
	list, err := api.List(ctx)
	if err != nil {
		return postman.Summary{}, false, err
	}

	var (
		target postman.Summary
		found  bool
	)
	for _, s := range list {
		if s.Name != name {
			continue
		}
		if !found {
			target, found = s, true
			continue
		}
		logger.Debug("ignoring duplicate remote asset",
			zap.String("kind", string(kind)),
			zap.String("name", name),
			zap.String("uid", s.UID),
			zap.String("kept", target.UID),
		)
	}
	return target, found, nil
}

// Syncer binds the environment and collection endpoints of a client.
type Syncer struct {
	environments RemoteAPI[storage.Environment]
	collections  RemoteAPI[storage.Collection]
	opts         []Option
}

// New returns a Syncer using the given endpoints.
func New(environments RemoteAPI[storage.Environment], collections RemoteAPI[storage.Collection], opts ...Option) *Syncer {
	return &Syncer{environments: environments, collections: collections, opts: opts}
}

// NewForClient returns a Syncer using the endpoints of c.
func NewForClient(c *postman.Client, opts ...Option) *Syncer {
	return New(c.Environments(), c.Collections(), opts...)
}

// UpsertEnvironment upserts env by name.
func (s *Syncer) UpsertEnvironment(ctx context.Context, env storage.Environment, opts ...Option) (UpsertResult, error) {
	return Upsert(ctx, KindEnvironment, s.environments, env, append(s.opts[:len(s.opts):len(s.opts)], opts...)...)
}

// UpsertCollection upserts col by name.
func (s *Syncer) UpsertCollection(ctx context.Context, col storage.Collection, opts ...Option) (UpsertResult, error) {
	return Upsert(ctx, KindCollection, s.collections, col, append(s.opts[:len(s.opts):len(s.opts)], opts...)...)
}
