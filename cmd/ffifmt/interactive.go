package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/wasmhost"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newInteractiveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Call the formatter functions from a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.Unsupported(errors.PhaseRuntime, "interactive mode needs a terminal")
			}

			sigs, err := wasmhost.Signatures()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			p := tea.NewProgram(newInteractiveModel(ctx, c, a.binding, sigs), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

type interactiveModel struct {
	err      error
	ctx      context.Context
	caller   ffifmt.Caller
	binding  string
	result   string
	funcs    []wasmhost.Signature
	input    textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(ctx context.Context, c ffifmt.Caller, binding string, funcs []wasmhost.Signature) *interactiveModel {
	return &interactiveModel{
		ctx:     ctx,
		caller:  c,
		binding: binding,
		funcs:   funcs,
		state:   stateSelectFunc,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInput()
				m.state = stateInputArgs
				return m, textinput.Blink

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateInputArgs, stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
			return m, nil
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) prepareInput() {
	f := m.funcs[m.selected]
	ti := textinput.New()
	ti.Width = 60
	if len(f.Params) > 0 {
		p := f.Params[0]
		ti.Prompt = p.Name + ": "
		ti.Placeholder = placeholder(p.Type)
	}
	ti.Focus()
	m.input = ti
}

func placeholder(t wit.Type) string {
	if _, ok := t.(*wit.TypeDef); ok {
		return "1.5, 2, 1e21, nan"
	}
	return "3.141592653589793"
}

func (m *interactiveModel) callFunction() tea.Msg {
	values, err := parseValues([]string{m.input.Value()})
	if err != nil {
		return callResultMsg{err: err}
	}

	f := m.funcs[m.selected]
	switch f.CoreName() {
	case wasmhost.FuncFormatScalar:
		if len(values) != 1 {
			return callResultMsg{err: fmt.Errorf("%s takes exactly one value, got %d", f.Name, len(values))}
		}
		s, err := m.caller.FormatScalar(m.ctx, values[0])
		return callResultMsg{result: s, err: err}
	case wasmhost.FuncFormatArray:
		s, err := m.caller.FormatArray(m.ctx, values)
		return callResultMsg{result: s, err: err}
	default:
		return callResultMsg{err: fmt.Errorf("no binding for %s", f.Name)}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ffifmt"))
	b.WriteString(" binding ")
	b.WriteString(m.binding)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.Name))
				b.WriteString(formatSignature(f))
			} else {
				b.WriteString("  " + funcStyle.Render(f.Name) + formatSignature(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(fmt.Sprintf("%q", m.result)))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatSignature(f wasmhost.Signature) string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.Name+": "+typeStyle.Render(wasmhost.TypeString(p.Type)))
	}
	result := ""
	if len(f.Results) > 0 {
		result = " -> " + typeStyle.Render(wasmhost.TypeString(f.Results[0]))
	}
	return "(" + strings.Join(params, ", ") + ")" + result
}
