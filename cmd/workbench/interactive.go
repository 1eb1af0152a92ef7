package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bytecodealliance.org/wit"

	"github.com/derivalab/pricing-bridge/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2F6F4F")).
			Padding(0, 1)

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2F6F4F"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type symbolEntry struct {
	path       string
	display    string
	resultType string
	params     []paramInfo
}

type paramInfo struct {
	name    string
	witType wit.Type
	typeStr string
}

func (p paramInfo) label() string {
	return p.name + ": " + typeStyle.Render(p.typeStr)
}

type browserState int

const (
	stateSelectSymbol browserState = iota
	stateInputArgs
	stateShowResult
)

type browserModel struct {
	cfg      session.Config
	sess     *session.Session
	err      error
	symbols  []symbolEntry
	inputs   []textinput.Model
	result   string
	selected int
	focusIdx int
	state    browserState
}

type bootstrappedMsg struct {
	err     error
	sess    *session.Session
	symbols []symbolEntry
}

type callResultMsg struct {
	err    error
	result string
}

func newBrowserModel(cfg session.Config) *browserModel {
	return &browserModel{cfg: cfg, state: stateSelectSymbol}
}

func (m *browserModel) Init() tea.Cmd {
	return m.bootstrap
}

func (m *browserModel) bootstrap() tea.Msg {
	ctx := context.Background()

	s := session.New(m.cfg)
	if err := s.Bootstrap(ctx); err != nil {
		return bootstrappedMsg{err: err}
	}

	var symbols []symbolEntry
	for _, ns := range s.Namespaces() {
		for _, sym := range ns.Symbols() {
			if sym.Builtin {
				continue
			}
			entry := symbolEntry{path: ns.FullPath() + "#" + sym.Name}
			for i, p := range sym.Params {
				pname := fmt.Sprintf("arg%d", i)
				if i < len(sym.ParamNames) && sym.ParamNames[i] != "" {
					pname = sym.ParamNames[i]
				}
				entry.params = append(entry.params, paramInfo{
					name:    pname,
					witType: p,
					typeStr: typeLabel(p),
				})
			}
			if len(sym.Results) > 0 {
				entry.resultType = typeLabel(sym.Results[0])
			}
			entry.display = formatEntry(entry)
			symbols = append(symbols, entry)
		}
	}

	return bootstrappedMsg{sess: s, symbols: symbols}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.sess != nil {
				_ = m.sess.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectSymbol && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectSymbol && m.selected < len(m.symbols)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectSymbol:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callSymbol
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callSymbol

			case stateShowResult:
				m.state = stateSelectSymbol
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectSymbol
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectSymbol
				m.result = ""
				m.err = nil
			}
		}

	case bootstrappedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sess = msg.sess
		m.symbols = msg.symbols

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *browserModel) prepareInputs() {
	entry := m.symbols[m.selected]
	m.inputs = make([]textinput.Model, len(entry.params))
	for i, p := range entry.params {
		ti := textinput.New()
		ti.Placeholder = p.typeStr
		ti.Prompt = p.name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *browserModel) callSymbol() tea.Msg {
	if m.sess == nil {
		return callResultMsg{err: fmt.Errorf("session not ready")}
	}

	entry := m.symbols[m.selected]
	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseArg(input.Value(), entry.params[i].witType)
		if err != nil {
			return callResultMsg{err: fmt.Errorf("%s: %w", entry.params[i].name, err)}
		}
		args[i] = v
	}

	result, err := m.sess.Call(context.Background(), entry.path, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: fmt.Sprintf("%v", result)}
}

func (m *browserModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.symbols) == 0 {
		return "Bootstrapping session..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Pricing Workbench"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectSymbol:
		b.WriteString("Select a symbol to call:\n\n")
		for i, entry := range m.symbols {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + entry.display))
			} else {
				b.WriteString(cursor + entry.display)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		entry := m.symbols[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", symbolStyle.Render(entry.path)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(entry.params[i].typeStr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		entry := m.symbols[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", symbolStyle.Render(entry.path)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatEntry(e symbolEntry) string {
	var params []string
	for _, p := range e.params {
		params = append(params, p.label())
	}
	result := ""
	if e.resultType != "" {
		result = " -> " + typeStyle.Render(e.resultType)
	}
	return symbolStyle.Render(e.path) + "(" + strings.Join(params, ", ") + ")" + result
}

// parseArg builds a call argument of the declared WIT type from user
// text. Unparseable input is reported, not silently zeroed.
func parseArg(value string, t wit.Type) (any, error) {
	switch t.(type) {
	case wit.String:
		return value, nil
	case wit.Bool:
		switch value {
		case "true", "1":
			return true, nil
		case "false", "0", "":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a bool", value)
	case wit.U8, wit.U16, wit.U32, wit.Char:
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not a %s", value, typeLabel(t))
		}
		return uint32(v), nil
	case wit.S8, wit.S16, wit.S32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not a %s", value, typeLabel(t))
		}
		return int32(v), nil
	case wit.U64:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a u64", value)
		}
		return v, nil
	case wit.S64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an s64", value)
		}
		return v, nil
	case wit.F32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not an f32", value)
		}
		return float32(v), nil
	case wit.F64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an f64", value)
		}
		return v, nil
	}
	return nil, fmt.Errorf("cannot build a %s argument from text", typeLabel(t))
}

func looseConvert(value string) any {
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v
	}
	return value
}

// Display names for the scalar WIT types. wit.ParseType hands these
// back as comparable zero-size values, so a plain map works.
var primitiveLabels = map[wit.Type]string{
	wit.Bool{}:   "bool",
	wit.U8{}:     "u8",
	wit.S8{}:     "s8",
	wit.U16{}:    "u16",
	wit.S16{}:    "s16",
	wit.U32{}:    "u32",
	wit.S32{}:    "s32",
	wit.U64{}:    "u64",
	wit.S64{}:    "s64",
	wit.F32{}:    "f32",
	wit.F64{}:    "f64",
	wit.Char{}:   "char",
	wit.String{}: "string",
}

func typeLabel(t wit.Type) string {
	if td, ok := t.(*wit.TypeDef); ok {
		if td.Name != nil {
			return *td.Name
		}
		return "typedef"
	}
	if label, ok := primitiveLabels[t]; ok {
		return label
	}
	return fmt.Sprintf("%T", t)
}

func runInteractive(cfg session.Config) error {
	p := tea.NewProgram(newBrowserModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
