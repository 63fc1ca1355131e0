package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackcoderx/pmsync/pkg/syncer"
)

// logEntry is one line of the progress log.
type logEntry struct {
	Type    syncer.EventType
	Content string
}

// Model is the Bubble Tea model of the progress view.
type Model struct {
	spinner spinner.Model
	logs    []logEntry
	state   syncer.State
	width   int

	ctx    context.Context
	run    RunFunc
	cancel context.CancelFunc
	ref    *programRef

	done   bool
	result *syncer.RunResult
	err    error
	status string // Footer note shown instead of the key hint
}

// syncEventMsg wraps an orchestrator event for the TUI
type syncEventMsg struct {
	event syncer.Event
}

// syncDoneMsg signals the run has finished
type syncDoneMsg struct {
	result *syncer.RunResult
	err    error
}

// programRef holds the program reference for sending messages from the
// sync goroutine.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// Set updates the program reference (thread-safe).
func (p *programRef) Set(prog *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = prog
}

// Send sends a message to the program if it exists (thread-safe).
func (p *programRef) Send(msg tea.Msg) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.program != nil {
		p.program.Send(msg)
	}
}
