package syncer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/blackcoderx/pmsync/pkg/storage"
)

// State is the progress of one orchestrated run.
type State string

const (
	StateNotStarted         State = "not_started"
	StateSyncingEnvironment State = "syncing_environment"
	StateSyncingCollection  State = "syncing_collection"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// RunResult holds both upsert results of a successful run.
type RunResult struct {
	Environment UpsertResult
	Collection  UpsertResult
}

// StepError reports which upsert of a run failed. The remote error is
// available through errors.As and errors.Is.
type StepError struct {
	Kind AssetKind
	Name string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed to sync %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Orchestrator runs the environment upsert, then the collection upsert.
// A failed step ends the run; nothing already applied is rolled back.
type Orchestrator struct {
	syncer *Syncer
	opts   []Option

	mu    sync.Mutex
	state State
}

// NewOrchestrator returns an orchestrator driving s.
func NewOrchestrator(s *Syncer, opts ...Option) *Orchestrator {
	return &Orchestrator{syncer: s, opts: opts, state: StateNotStarted}
}

// State returns the state the last run reached.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Run syncs env and then col. The collection is not touched if the
// environment fails.
func (o *Orchestrator) Run(ctx context.Context, env storage.Environment, col storage.Collection) (*RunResult, error) {
	opts := newOptions(o.opts)
	o.transition(opts, StateNotStarted)

	o.transition(opts, StateSyncingEnvironment)
	envResult, err := o.syncer.UpsertEnvironment(ctx, env, o.opts...)
	if err != nil {
		return nil, o.fail(opts, KindEnvironment, env.Name, err)
	}

	o.transition(opts, StateSyncingCollection)
	colResult, err := o.syncer.UpsertCollection(ctx, col, o.opts...)
	if err != nil {
		return nil, o.fail(opts, KindCollection, col.Name, err)
	}

	o.transition(opts, StateDone)
	return &RunResult{Environment: envResult, Collection: colResult}, nil
}

func (o *Orchestrator) transition(opts *options, s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()

	if s != StateNotStarted {
		opts.emit(Event{Type: EventState, State: s})
	}
}

func (o *Orchestrator) fail(opts *options, kind AssetKind, name string, err error) error {
	stepErr := &StepError{Kind: kind, Name: name, Err: err}
	opts.logger.Debug("run aborted", zap.String("state", string(o.State())), zap.Error(err))
	opts.emit(Event{Type: EventError, Kind: kind, Name: name, Err: stepErr})
	o.transition(opts, StateFailed)
	return stepErr
}
