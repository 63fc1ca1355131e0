package tui

import (
	"fmt"

	"github.com/blackcoderx/pmsync/pkg/syncer"
)

// FormatEvent renders one orchestrator event as a styled progress line.
// Events with nothing to show yield "".
func FormatEvent(e syncer.Event) string {
	switch e.Type {
	case syncer.EventState:
		switch e.State {
		case syncer.StateSyncingEnvironment:
			return StepStyle.Render(StepPrefix + "Environment")
		case syncer.StateSyncingCollection:
			return StepStyle.Render(StepPrefix + "Collection")
		}
		return ""

	case syncer.EventLookup:
		return LookupStyle.Render(fmt.Sprintf("%slooking up %s %q", DetailPrefix, e.Kind, e.Name))

	case syncer.EventFound:
		return LookupStyle.Render(fmt.Sprintf("%sfound %s, replacing its content", DetailPrefix, e.Message))

	case syncer.EventMissing:
		return LookupStyle.Render(DetailPrefix + "not found, creating it")

	case syncer.EventCreated, syncer.EventUpdated:
		style := CreatedStyle
		if e.Type == syncer.EventUpdated {
			style = UpdatedStyle
		}
		uid := ""
		if e.Result != nil {
			uid = e.Result.RemoteID
		}
		return style.Render(fmt.Sprintf("%s%s%s %s (%s)", DetailPrefix, OkPrefix, e.Type, e.Kind, uid))

	case syncer.EventError:
		return ErrorStyle.Render(fmt.Sprintf("%s%s%v", DetailPrefix, ErrorPrefix, e.Err))
	}
	return ""
}
