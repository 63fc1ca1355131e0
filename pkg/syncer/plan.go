package syncer

import (
	"context"
	"fmt"

	"github.com/aymanbagabas/go-udiff"

	"github.com/blackcoderx/pmsync/pkg/postman"
)

// PreviewAPI is the read-only surface needed to preview an upsert.
type PreviewAPI[T Asset] interface {
	List(ctx context.Context) ([]postman.Summary, error)
	Get(ctx context.Context, uid string) (T, error)
	Render(local T) ([]byte, error)
}

// PlanEntry is what an upsert of one asset would do.
type PlanEntry struct {
	Kind     AssetKind
	Name     string
	Action   Action // ActionCreated or ActionUpdated
	RemoteID string // Empty when the asset would be created
	Diff     string // Unified diff of the wire forms, empty when identical
}

// Changed reports whether applying the entry would modify the remote.
func (p PlanEntry) Changed() bool {
	return p.Action == ActionCreated || p.Diff != ""
}

// Plan computes what Upsert would do for local without writing anything.
// Both sides are compared in their wire form, so remote fields the local
// model does not carry do not show up even though an update discards them.
func Plan[T Asset](ctx context.Context, kind AssetKind, api PreviewAPI[T], local T, opts ...Option) (PlanEntry, error) {
	o := newOptions(opts)
	name := local.AssetName()
	entry := PlanEntry{Kind: kind, Name: name, Action: ActionCreated}

	target, found, err := resolveTarget(ctx, kind, api, name, o.logger)
	if err != nil {
		return entry, err
	}

	want, err := api.Render(local)
	if err != nil {
		return entry, fmt.Errorf("failed to render local %s: %w", kind, err)
	}

	var have []byte
	if found {
		remote, err := api.Get(ctx, target.UID)
		if err != nil {
			return entry, err
		}
		if have, err = api.Render(remote); err != nil {
			return entry, fmt.Errorf("failed to render remote %s: %w", kind, err)
		}
		entry.Action = ActionUpdated
		entry.RemoteID = target.UID
	}

	entry.Diff = unifiedDiff(fmt.Sprintf("%s/%s", kind, name), string(have), string(want))
	return entry, nil
}

// unifiedDiff returns the diff from original to modified with 3 lines of
// context, or "" when they are equal.
func unifiedDiff(label, original, modified string) string {
	if original != "" {
		original += "\n"
	}
	if modified != "" {
		modified += "\n"
	}
	if original == modified {
		return ""
	}

	edits := udiff.Strings(original, modified)
	unified, err := udiff.ToUnified("remote/"+label, "local/"+label, original, edits, 3)
	if err != nil {
		return fmt.Sprintf("--- remote/%s\n+++ local/%s\n(diff generation failed)\n", label, label)
	}
	return unified
}
