package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blackcoderx/pmsync/pkg/postman"
	"github.com/blackcoderx/pmsync/pkg/storage"
)

// fakeRemote is an in-memory RemoteAPI that records every call in a shared
// log, so ordering across asset kinds can be asserted.
type fakeRemote[T Asset] struct {
	kind    string
	log     *[]string
	list    []postman.Summary
	content map[string]T
	nextUID int

	listErr   error
	createErr error
	updateErr error
}

func newFakeRemote[T Asset](kind string, log *[]string) *fakeRemote[T] {
	return &fakeRemote[T]{kind: kind, log: log, content: make(map[string]T)}
}

func (f *fakeRemote[T]) List(ctx context.Context) ([]postman.Summary, error) {
	*f.log = append(*f.log, "GET /"+f.kind+"s")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]postman.Summary(nil), f.list...), nil
}

func (f *fakeRemote[T]) Create(ctx context.Context, local T) (string, error) {
	*f.log = append(*f.log, "POST /"+f.kind+"s")
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextUID++
	uid := fmt.Sprintf("%s-uid-%d", f.kind, f.nextUID)
	f.list = append(f.list, postman.Summary{Name: local.AssetName(), UID: uid})
	f.content[uid] = local
	return uid, nil
}

func (f *fakeRemote[T]) Update(ctx context.Context, uid string, local T) error {
	*f.log = append(*f.log, "PUT /"+f.kind+"s/"+uid)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.content[uid] = local
	return nil
}

func (f *fakeRemote[T]) Get(ctx context.Context, uid string) (T, error) {
	*f.log = append(*f.log, "GET /"+f.kind+"s/"+uid)
	v, ok := f.content[uid]
	if !ok {
		var zero T
		return zero, &postman.APIError{Op: "get", Status: 404, Code: postman.CodeNotFound}
	}
	return v, nil
}

func (f *fakeRemote[T]) Render(local T) ([]byte, error) {
	switch v := any(local).(type) {
	case storage.Environment:
		return postman.RenderEnvironment(v)
	case storage.Collection:
		return postman.RenderCollection(v)
	}
	return nil, errors.New("unsupported asset")
}

var e1 = storage.Environment{
	Name:   "E1",
	Values: []storage.Variable{{Key: "k", Value: "v", Enabled: true}},
}

func TestUpsert_CreatePath(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)

	res, err := Upsert[storage.Environment](context.Background(), KindEnvironment, api, e1)
	require.NoError(t, err)

	assert.Equal(t, UpsertResult{Kind: KindEnvironment, Name: "E1", Action: ActionCreated, RemoteID: "environment-uid-1"}, res)
	assert.Equal(t, []string{"GET /environments", "POST /environments"}, log)
	assert.Equal(t, e1, api.content["environment-uid-1"])
}

func TestUpsert_UpdatePath(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)
	api.list = []postman.Summary{{Name: "other", UID: "zzz"}, {Name: "E1", UID: "abc"}}

	res, err := Upsert[storage.Environment](context.Background(), KindEnvironment, api, e1)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, res.Action)
	assert.Equal(t, "abc", res.RemoteID)
	assert.Equal(t, []string{"GET /environments", "PUT /environments/abc"}, log)
}

func TestUpsert_DuplicateTieBreak(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)
	api.list = []postman.Summary{{Name: "E1", UID: "a"}, {Name: "E1", UID: "b"}}

	res, err := Upsert[storage.Environment](context.Background(), KindEnvironment, api, e1, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, "a", res.RemoteID)
	assert.Equal(t, []string{"GET /environments", "PUT /environments/a"}, log)
	_, touched := api.content["b"]
	assert.False(t, touched)
}

func TestUpsert_NameMatchIsExact(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)
	api.list = []postman.Summary{{Name: "e1", UID: "lower"}, {Name: "E1 ", UID: "space"}}

	res, err := Upsert[storage.Environment](context.Background(), KindEnvironment, api, e1)
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, res.Action)
}

func TestUpsert_IdempotentFullReplace(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)
	ctx := context.Background()

	first, err := Upsert[storage.Environment](ctx, KindEnvironment, api, e1)
	require.NoError(t, err)
	second, err := Upsert[storage.Environment](ctx, KindEnvironment, api, e1)
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, first.Action)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, first.RemoteID, second.RemoteID)
	assert.Equal(t, e1, api.content[first.RemoteID])

	// Same name, different content: nothing of the first version survives.
	replacement := storage.Environment{Name: "E1", Values: []storage.Variable{{Key: "other", Value: "x"}}}
	third, err := Upsert[storage.Environment](ctx, KindEnvironment, api, replacement)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, third.Action)
	assert.Equal(t, replacement, api.content[first.RemoteID])
	assert.Len(t, api.list, 1)
}

func TestUpsert_ErrorsPropagateUnchanged(t *testing.T) {
	listErr := &postman.TransportError{Op: "list environments", Err: context.DeadlineExceeded}
	createErr := &postman.RemoteValidationError{Op: "create environment", Status: 400, Payload: `{"error":"x"}`}
	updateErr := &postman.AuthError{Op: "update environment", Status: 401}

	tests := []struct {
		name    string
		setup   func(*fakeRemote[storage.Environment])
		want    error
		wantLog []string
	}{
		{
			name:    "list",
			setup:   func(f *fakeRemote[storage.Environment]) { f.listErr = listErr },
			want:    listErr,
			wantLog: []string{"GET /environments"},
		},
		{
			name:    "create",
			setup:   func(f *fakeRemote[storage.Environment]) { f.createErr = createErr },
			want:    createErr,
			wantLog: []string{"GET /environments", "POST /environments"},
		},
		{
			name: "update",
			setup: func(f *fakeRemote[storage.Environment]) {
				f.list = []postman.Summary{{Name: "E1", UID: "abc"}}
				f.updateErr = updateErr
			},
			want:    updateErr,
			wantLog: []string{"GET /environments", "PUT /environments/abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []string
			api := newFakeRemote[storage.Environment]("environment", &log)
			tt.setup(api)

			_, err := Upsert[storage.Environment](context.Background(), KindEnvironment, api, e1)
			assert.Same(t, tt.want, err)
			assert.Equal(t, tt.wantLog, log, "no retries")
		})
	}
}

func TestUpsert_Events(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)
	api.list = []postman.Summary{{Name: "E1", UID: "abc"}}

	var events []Event
	_, err := Upsert[storage.Environment](context.Background(), KindEnvironment, api, e1,
		WithEventCallback(func(e Event) { events = append(events, e) }))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, EventLookup, events[0].Type)
	assert.Equal(t, EventFound, events[1].Type)
	assert.Equal(t, "abc", events[1].Message)
	assert.Equal(t, EventUpdated, events[2].Type)
	require.NotNil(t, events[2].Result)
	assert.Equal(t, "abc", events[2].Result.RemoteID)
}

func TestUpsert_LogsResultAsFields(t *testing.T) {
	tests := []struct {
		name   string
		list   []postman.Summary
		action Action
		uid    string
	}{
		{"created", nil, ActionCreated, "collection-uid-1"},
		{"updated", []postman.Summary{{Name: "C1", UID: "abc"}}, ActionUpdated, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []string
			api := newFakeRemote[storage.Collection]("collection", &log)
			api.list = tt.list

			core, logs := observer.New(zap.InfoLevel)
			_, err := Upsert[storage.Collection](context.Background(), KindCollection, api, c1, WithLogger(zap.New(core)))
			require.NoError(t, err)

			entries := logs.FilterMessage("asset synced").All()
			require.Len(t, entries, 1)
			assert.Equal(t, map[string]interface{}{
				"kind":   "collection",
				"action": string(tt.action),
				"name":   "C1",
				"uid":    tt.uid,
			}, entries[0].ContextMap())
		})
	}
}
