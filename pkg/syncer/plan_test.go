package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/pmsync/pkg/postman"
	"github.com/blackcoderx/pmsync/pkg/storage"
)

func TestPlan_Missing(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)

	entry, err := Plan[storage.Environment](context.Background(), KindEnvironment, api, e1)
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, entry.Action)
	assert.Empty(t, entry.RemoteID)
	assert.True(t, entry.Changed())
	assert.Contains(t, entry.Diff, "+++ local/environment/E1")
	assert.Contains(t, entry.Diff, `+  "name": "E1",`)
	assert.Equal(t, []string{"GET /environments"}, log)
}

func TestPlan_UpdateShowsReplacedContent(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Environment]("environment", &log)
	api.list = []postman.Summary{{Name: "E1", UID: "a"}, {Name: "E1", UID: "b"}}
	api.content["a"] = storage.Environment{Name: "E1", Values: []storage.Variable{{Key: "k", Value: "old", Enabled: true}}}

	entry, err := Plan[storage.Environment](context.Background(), KindEnvironment, api, e1)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, entry.Action)
	assert.Equal(t, "a", entry.RemoteID)
	assert.Contains(t, entry.Diff, `-      "value": "old",`)
	assert.Contains(t, entry.Diff, `+      "value": "v",`)
	assert.Equal(t, []string{"GET /environments", "GET /environments/a"}, log, "preview never writes")
}

func TestPlan_Unchanged(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Collection]("collection", &log)
	api.list = []postman.Summary{{Name: "C1", UID: "abc"}}
	api.content["abc"] = c1

	entry, err := Plan[storage.Collection](context.Background(), KindCollection, api, c1)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, entry.Action)
	assert.Empty(t, entry.Diff)
	assert.False(t, entry.Changed())
}

func TestPlan_GetError(t *testing.T) {
	var log []string
	api := newFakeRemote[storage.Collection]("collection", &log)
	api.list = []postman.Summary{{Name: "C1", UID: "gone"}}

	_, err := Plan[storage.Collection](context.Background(), KindCollection, api, c1)
	assert.Equal(t, postman.CodeNotFound, postman.CodeOf(err))
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, unifiedDiff("x", "a\nb", "a\nb"))

	d := unifiedDiff("x", "a\nb", "a\nc")
	assert.Contains(t, d, "--- remote/x")
	assert.Contains(t, d, "+++ local/x")
	assert.Contains(t, d, "-b\n")
	assert.Contains(t, d, "+c\n")
}
