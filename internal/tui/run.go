package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"sonforge/internal/beatsteal"
	"sonforge/internal/config"
	"sonforge/internal/convert"
	"sonforge/internal/history"
	"sonforge/internal/services/dsptool"
	"sonforge/internal/services/oggtool"
	"sonforge/internal/wav"
)

// Deps carries everything the interactive front-end needs.
type Deps struct {
	Config  *config.Config
	Beats   *beatsteal.Manager
	History *history.Store
	Logger  *slog.Logger
}

// Run builds the orchestrator with a presenter bridged into the bubbletea
// program and blocks until the user exits.
func Run(deps Deps) error {
	relay := &bridge{}
	orchestrator := convert.NewOrchestrator(convert.Deps{
		Validator: wav.Validate,
		DSP:       dsptool.NewCLI(dsptool.WithBinary(deps.Config.DSPBinary())),
		OGG:       oggtool.NewCLI(oggtool.WithBinary(deps.Config.OGGBinary())),
		Beats:     deps.Beats,
		Presenter: relay,
		History:   deps.History,
		Logger:    deps.Logger,
	})

	model := New(deps.Config, orchestrator, deps.Beats, deps.Logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	relay.attach(program)
	_, err := program.Run()
	return err
}
