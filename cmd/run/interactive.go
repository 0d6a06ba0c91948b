package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/sharedmod/codec"
	"github.com/wippyai/sharedmod/driver"
	"github.com/wippyai/sharedmod/lamport"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginRight(1)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type opInfo struct {
	name   string
	params []paramInfo
}

type paramInfo struct {
	name    string
	typeStr string
}

// The simulator's operation menu. "module" selects the dispatch target by
// handle; relay runs host-side and takes no target.
var ops = []opInfo{
	{name: "enqueue", params: []paramInfo{
		{name: "module", typeStr: "u32"},
		{name: "recipient", typeStr: "u32"},
		{name: "payload", typeStr: "bytes"},
	}},
	{name: "poll", params: []paramInfo{
		{name: "module", typeStr: "u32"},
	}},
	{name: "fanout", params: []paramInfo{
		{name: "module", typeStr: "u32"},
	}},
	{name: "relay", params: nil},
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	driver   *driver.Driver
	err      error
	result   string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type opResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(count int, logger *zap.Logger) *interactiveModel {
	if count < 1 {
		count = 1
	}
	return &interactiveModel{
		driver: newNativeDriver(count, logger),
		state:  stateSelectOp,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.driver.Close(context.Background())
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(ops)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.runOp
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.runOp

			case stateShowResult:
				m.state = stateSelectOp
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
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}
		}

	case opResultMsg:
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

func (m *interactiveModel) prepareInputs() {
	op := ops[m.selected]
	m.inputs = make([]textinput.Model, len(op.params))
	for i, p := range op.params {
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

func (m *interactiveModel) runOp() tea.Msg {
	ctx := context.Background()
	op := ops[m.selected]

	if op.name == "relay" {
		n := m.driver.Relay()
		return opResultMsg{result: fmt.Sprintf("relayed %d outbound blobs", n)}
	}

	handle, err := parseU32(m.inputs[0].Value())
	if err != nil {
		return opResultMsg{err: fmt.Errorf("module: %w", err)}
	}

	var req codec.Request
	switch op.name {
	case "enqueue":
		recipient, err := parseU32(m.inputs[1].Value())
		if err != nil {
			return opResultMsg{err: fmt.Errorf("recipient: %w", err)}
		}
		req = codec.Enqueue{Recipient: recipient, Payload: []byte(m.inputs[2].Value())}
	case "poll":
		req = codec.Poll{}
	case "fanout":
		req = codec.FanOut{}
	}

	if err := m.driver.Dispatch(ctx, handle, 0, codec.EncodeRequest(req)); err != nil {
		return opResultMsg{err: err}
	}
	return opResultMsg{result: fmt.Sprintf("%s dispatched to module %d", op.name, handle)}
}

func parseU32(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Shared Module Simulator"))
	b.WriteString("\n\n")
	b.WriteString(m.statePanes())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation:\n\n")
		for i, op := range ops {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + formatOp(op)))
			} else {
				b.WriteString(cursor + formatOp(op))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateInputArgs:
		op := ops[m.selected]
		b.WriteString(fmt.Sprintf("Running %s\n\n", opStyle.Render(op.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(op.params[i].typeStr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateShowResult:
		op := ops[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(op.name)))
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

// statePanes renders one bordered pane per registered module: its clock,
// pending queue and accumulator slots.
func (m *interactiveModel) statePanes() string {
	panes := make([]string, 0, m.driver.Len())
	for h := uint32(0); int(h) < m.driver.Len(); h++ {
		rt := m.driver.Runtime(h)
		var p strings.Builder
		fmt.Fprintf(&p, "%s\n", opStyle.Render(fmt.Sprintf("[%d] %s", h, rt.Name())))

		snap, err := lamport.State(rt.Storage())
		if err != nil {
			fmt.Fprintf(&p, "%s\n", errorStyle.Render(err.Error()))
		} else {
			fmt.Fprintf(&p, "clock %s  queue %s\n",
				typeStyle.Render(strconv.FormatUint(snap.Timestamp, 10)),
				typeStyle.Render(strconv.Itoa(len(snap.Queue))))
			for _, entry := range snap.Queue {
				fmt.Fprintf(&p, "  -> %d at %d %q\n", entry.Recipient, entry.Message.At, entry.Message.Payload)
			}
		}
		for recipient, blob := range rt.Outbound() {
			fmt.Fprintf(&p, "out -> %d: %s\n", recipient, formatGroup(blob))
		}
		for _, g := range rt.Inbound() {
			fmt.Fprintf(&p, "in <- %d: %s\n", g.Sender, formatGroup(g.Blob))
		}
		panes = append(panes, paneStyle.Render(strings.TrimRight(p.String(), "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func formatOp(op opInfo) string {
	params := make([]string, len(op.params))
	for i, p := range op.params {
		params[i] = p.name + ": " + typeStyle.Render(p.typeStr)
	}
	return opStyle.Render(op.name) + "(" + strings.Join(params, ", ") + ")"
}

func runInteractive(count int, logger *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(count, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
