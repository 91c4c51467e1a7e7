// Package tui provides an interactive terminal front-end for conversions and
// beat borrowing.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sonforge/internal/beatsteal"
	"sonforge/internal/config"
	"sonforge/internal/convert"
	"sonforge/internal/logging"
	"sonforge/internal/options"
	"sonforge/internal/textutil"
)

// State identifies the active screen.
type State int

const (
	StateMenu State = iota
	StatePickWav
	StatePickBeats
	StateOptions
	StateConverting
	StateResult
)

type menuItem struct {
	Title       string
	Description string
}

var menuItems = []menuItem{
	{Title: "Convert WAV", Description: "Encode a WAV file into a SON or SNS container"},
	{Title: "Steal Beats", Description: "Borrow beat markers from an existing SON/SNS file"},
	{Title: "Clear Beats", Description: "Drop the currently borrowed beat markers"},
	{Title: "Exit", Description: "Exit the application"},
}

// optionRow indexes the rows on the options screen.
type optionRow int

const (
	rowCodec optionRow = iota
	rowFormat
	rowSampleRate
	rowForceMono
	rowNormalize
	rowFourChannel
	rowExtras
	rowStart
	rowCount
)

// Converter runs a conversion attempt to completion.
type Converter interface {
	Convert(ctx context.Context, req Request) (convert.Result, error)
}

// Request aliases the orchestrator request so callers outside this package
// only deal with one type.
type Request = convert.Request

// Model is the bubbletea model for the interactive front-end.
type Model struct {
	state      State
	menuIndex  int
	optionIdx  optionRow
	raw        options.RawSelection
	resolution options.Resolution

	filePicker filepicker.Model
	spinner    spinner.Model
	progress   progress.Model

	cfg       *config.Config
	converter Converter
	beats     *beatsteal.Manager
	logger    *slog.Logger

	selectedFile string
	outputFile   string
	percent      int
	busy         bool
	status       string
	result       *convert.Result
	convertErr   error
	width        int
	height       int
}

// New builds the initial model. The converter runs attempts; the beats
// manager backs the steal/clear menu entries.
func New(cfg *config.Config, converter Converter, beats *beatsteal.Manager, logger *slog.Logger) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".wav"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentGreen)

	if logger == nil {
		logger = logging.NewNop()
	}

	raw := options.RawSelection{
		SampleRate: strconv.Itoa(cfg.Defaults.SampleRate),
		Normalize:  cfg.Defaults.Normalize,
		ForceMono:  cfg.Defaults.ForceMono,
	}
	raw.FormatIndex = options.FormatIndex(options.ParseFormat(cfg.Defaults.Format))

	return Model{
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
		progress:   progress.New(progress.WithDefaultGradient()),
		cfg:        cfg,
		converter:  converter,
		beats:      beats,
		logger:     logging.WithComponent(logger, "tui"),
		raw:        raw,
		resolution: options.Resolve(raw),
	}
}

// Init starts the spinner ticking.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StatePickWav || m.state == StatePickBeats {
		return m.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.Height = msg.Height - 10
		m.progress.Width = msg.Width - 12
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateOptions:
			return m.updateOptions(msg)
		case StateResult:
			return m.updateResult(msg)
		case StateConverting:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case busyMsg:
		m.busy = bool(msg)
		return m, nil

	case progressMsg:
		m.percent = int(msg)
		return m, nil

	case beatsConsumedMsg:
		m.status = "Borrowed beats consumed"
		return m, nil

	case resultMsg:
		result := convert.Result(msg)
		m.result = &result
		m.state = StateResult
		return m, nil

	case convertErrMsg:
		m.convertErr = msg.err
		m.state = StateResult
		return m, nil
	}

	return m, nil
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = StateMenu
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		if m.state == StatePickBeats {
			return m.loadBeats(path)
		}
		m.selectedFile = path
		m.state = StateOptions
		m.optionIdx = rowCodec
		return m, nil
	}

	return m, cmd
}

func (m Model) loadBeats(path string) (tea.Model, tea.Cmd) {
	count := m.beats.TryLoadFrom(path)
	if count == 0 {
		m.status = fmt.Sprintf("No beat markers found in %s", filepath.Base(path))
	} else {
		m.status = fmt.Sprintf("Borrowed %d beat markers from %s", count, filepath.Base(path))
	}
	m.state = StateMenu
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		switch m.menuIndex {
		case 0:
			m.state = StatePickWav
			m.filePicker.AllowedTypes = []string{".wav"}
			return m, m.filePicker.Init()
		case 1:
			m.state = StatePickBeats
			m.filePicker.AllowedTypes = []string{".son", ".sns"}
			return m, m.filePicker.Init()
		case 2:
			m.beats.Clear()
			m.status = "Borrowed beats cleared"
			return m, nil
		default:
			return m, tea.Quit
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateMenu
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.optionIdx = m.prevRow()
	case "down", "j":
		m.optionIdx = m.nextRow()
	case "left", "h":
		m = m.cycleOption(-1)
	case "right", "l", " ":
		m = m.cycleOption(1)
	case "enter":
		if m.optionIdx == rowStart {
			return m.startConversion()
		}
		m = m.cycleOption(1)
	}
	return m, nil
}

func (m Model) prevRow() optionRow {
	row := m.optionIdx
	for {
		if row == 0 {
			return m.optionIdx
		}
		row--
		if m.rowEnabled(row) {
			return row
		}
	}
}

func (m Model) nextRow() optionRow {
	row := m.optionIdx
	for {
		if row == rowCount-1 {
			return m.optionIdx
		}
		row++
		if m.rowEnabled(row) {
			return row
		}
	}
}

func (m Model) rowEnabled(row optionRow) bool {
	if row == rowFourChannel {
		return m.resolution.FourChannelActionable
	}
	return true
}

// cycleOption changes the value of the highlighted row and re-resolves the
// raw selection, applying any four-channel reset directive it returns.
func (m Model) cycleOption(delta int) Model {
	switch m.optionIdx {
	case rowCodec:
		if strings.EqualFold(m.raw.Codec, string(options.CodecOGG)) {
			m.raw.Codec = string(options.CodecDSP)
		} else {
			m.raw.Codec = string(options.CodecOGG)
		}
	case rowFormat:
		m.raw.FormatIndex = 1 - m.raw.FormatIndex
	case rowSampleRate:
		m.raw.SampleRate = strconv.Itoa(cycleRate(m.raw.SampleRate, delta))
	case rowForceMono:
		m.raw.ForceMono = !m.raw.ForceMono
	case rowNormalize:
		m.raw.Normalize = !m.raw.Normalize
	case rowFourChannel:
		m.raw.FourChannelChecked = !m.raw.FourChannelChecked
	case rowExtras:
		m.raw.ExtrasIndex = (m.raw.ExtrasIndex + 3 + delta) % 3
	}

	m.resolution = options.Resolve(m.raw)
	if m.resolution.FourChannelRawReset {
		m.raw.FourChannelChecked = false
		m.resolution = options.Resolve(m.raw)
	}
	if !m.rowEnabled(m.optionIdx) {
		m.optionIdx = m.prevRow()
	}
	return m
}

func cycleRate(current string, delta int) int {
	rates := config.AllowedSampleRates
	parsed, err := strconv.Atoi(strings.TrimSpace(current))
	if err != nil {
		return rates[0]
	}
	for i, rate := range rates {
		if rate == parsed {
			return rates[(i+len(rates)+delta)%len(rates)]
		}
	}
	return rates[0]
}

func (m Model) startConversion() (tea.Model, tea.Cmd) {
	cfg := m.resolution.Config
	outputName := textutil.SanitizeFileName(cfg.OutputFormat.DefaultOutputName(m.selectedFile))
	m.outputFile = filepath.Join(m.cfg.Paths.OutputDir, outputName)
	m.percent = 0
	m.result = nil
	m.convertErr = nil
	m.state = StateConverting

	req := Request{
		InputPath:  m.selectedFile,
		OutputPath: m.outputFile,
		Config:     cfg,
	}
	converter := m.converter
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		if _, err := converter.Convert(context.Background(), req); err != nil {
			return convertErrMsg{err: err}
		}
		// Terminal state arrives through the presenter bridge.
		return nil
	})
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.result = nil
		m.convertErr = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.percent = 0
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// View renders the active screen.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SONFORGE "))
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StatePickWav, StatePickBeats:
		s.WriteString(m.viewPicker())
	case StateOptions:
		s.WriteString(m.viewOptions())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("up/down: navigate - enter: select - q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render("> " + item.Title))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(amber).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render("  " + item.Title))
		}
		s.WriteString("\n")
	}

	if payload, ok := m.beats.Peek(); ok {
		s.WriteString(statusStyle.Render(fmt.Sprintf("Beats loaded: %d markers from %s", payload.BeatCount(), payload.SourceFileName)))
		s.WriteString("\n")
	}
	if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewPicker() string {
	var s strings.Builder

	label := " SELECT WAV FILE "
	if m.state == StatePickBeats {
		label = " SELECT SON/SNS FILE "
	}
	s.WriteString(titleStyle.Render(label))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewOptions() string {
	cfg := m.resolution.Config
	rows := []struct {
		row   optionRow
		label string
		value string
	}{
		{rowCodec, "Codec", strings.ToUpper(string(cfg.Codec))},
		{rowFormat, "Format", strings.ToUpper(string(cfg.OutputFormat))},
		{rowSampleRate, "Sample rate", fmt.Sprintf("%d Hz", cfg.SampleRateHz)},
		{rowForceMono, "Force mono", checkbox(cfg.ForceMono)},
		{rowNormalize, "Normalize", checkbox(cfg.Normalize)},
		{rowFourChannel, "Four channel", checkbox(cfg.FourChannel)},
		{rowExtras, "Extras", textutil.Humanize(string(cfg.Extras))},
		{rowStart, "Start conversion", ""},
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" ENCODING OPTIONS "))
	s.WriteString("\n\n")
	s.WriteString(menuStyle.Render("Input: " + filepath.Base(m.selectedFile)))
	s.WriteString("\n\n")

	for _, r := range rows {
		line := r.label
		if r.value != "" {
			line = fmt.Sprintf("%-16s %s", r.label, r.value)
		}
		switch {
		case !m.rowEnabled(r.row):
			s.WriteString(disabledStyle.Render("  " + line + "  (SON only)"))
		case r.row == m.optionIdx:
			s.WriteString(selectedStyle.Render("> " + line))
		default:
			s.WriteString(menuStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func checkbox(checked bool) string {
	return textutil.Ternary(checked, "[x]", "[ ]")
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Encoding %s\n\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(m.progress.ViewAs(float64(m.percent) / 100))
	s.WriteString("\n")
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %d%%", m.percent)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.convertErr != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("Conversion not started: " + m.convertErr.Error()))
	case m.result != nil && m.result.Succeeded():
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("Conversion complete"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", m.outputFile))
	case m.result != nil:
		s.WriteString(titleStyle.Render(" " + strings.ToUpper(textutil.Humanize(string(m.result.Outcome))) + " "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(m.result.Reason))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}
