package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"sonforge/internal/convert"
)

// Lifecycle messages relayed from the conversion orchestrator.
type (
	busyMsg          bool
	progressMsg      int
	beatsConsumedMsg struct{}
	resultMsg        convert.Result
	convertErrMsg    struct{ err error }
)

// bridge forwards orchestrator lifecycle events into a running bubbletea
// program. Events sent before attach are dropped; the orchestrator only runs
// once the program is up.
type bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func (b *bridge) attach(program *tea.Program) {
	b.mu.Lock()
	b.program = program
	b.mu.Unlock()
}

func (b *bridge) send(msg tea.Msg) {
	b.mu.Lock()
	program := b.program
	b.mu.Unlock()
	if program != nil {
		program.Send(msg)
	}
}

func (b *bridge) SetBusy(busy bool)            { b.send(busyMsg(busy)) }
func (b *bridge) Progress(percent int)         { b.send(progressMsg(percent)) }
func (b *bridge) BeatsConsumed()               { b.send(beatsConsumedMsg{}) }
func (b *bridge) Result(result convert.Result) { b.send(resultMsg(result)) }

var _ convert.Presenter = (*bridge)(nil)
