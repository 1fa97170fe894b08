package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"resumerag/internal/domain"
)

// EnginePort is the TUI-facing subset of the résumé engine.
type EnginePort interface {
	RetrieveContext(query string, topK int) []domain.Chunk
	GetAutofillValue(ctx context.Context, req domain.AutofillRequest) domain.AutofillResult
	AnswerHRQuestion(ctx context.Context, req domain.HRQuestionRequest) domain.HRAnswerResult
}

type mode int

const (
	modeHR mode = iota
	modeAutofill
)

func (m mode) String() string {
	if m == modeAutofill {
		return "Autofill field"
	}
	return "HR question"
}

const (
	contextTopK    = 5
	requestTimeout = 2 * time.Minute
)

// answerMsg carries a finished request back into Update.
type answerMsg struct {
	query  string
	mode   mode
	text   string
	detail string
	chunks []domain.Chunk
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	engine    EnginePort
	input     textinput.Model
	viewport  viewport.Model
	mode      mode
	answer    *answerMsg
	summary   string
	status    string
	cursor    int
	busy      bool
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(engine EnginePort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{engine: engine, input: ti, viewport: vp, summary: summary, status: "Resume indexed. Tab switches mode."}
	m.applyMode()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 3 + 1 + qh + 1 // header, summary, mode; status; spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case answerMsg:
		m.busy = false
		m.answer = &msg
		m.cursor = 0
		m.lastQuery = msg.query
		m.status = fmt.Sprintf("%s: %q", msg.mode, msg.query)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == modeHR {
				m.mode = modeAutofill
			} else {
				m.mode = modeHR
			}
			m.applyMode()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			return m, m.ask(q, m.mode)
		case "down":
			if m.answer != nil && len(m.answer.chunks) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.chunks)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.chunks) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.chunks)) % len(m.answer.chunks)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyMode() {
	if m.mode == modeAutofill {
		m.input.Placeholder = "Form field label, e.g. Email Address"
	} else {
		m.input.Placeholder = "HR question, e.g. Why do you want this job?"
	}
}

// ask runs the request off the UI goroutine.
func (m Model) ask(query string, md mode) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		out := answerMsg{query: query, mode: md}
		if md == modeAutofill {
			res := engine.GetAutofillValue(ctx, domain.AutofillRequest{FieldLabel: query, FieldType: domain.FieldText})
			out.text = res.Value
			out.detail = formatAutofill(res)
			// same query the engine builds for a field with no extra context
			out.chunks = engine.RetrieveContext(query+" ", contextTopK)
		} else {
			res := engine.AnswerHRQuestion(ctx, domain.HRQuestionRequest{Question: query})
			out.text = res.Answer
			out.detail = formatHR(res)
			out.chunks = engine.RetrieveContext(query, contextTopK)
		}
		return out
	}
}

func formatAutofill(res domain.AutofillResult) string {
	if res.NeedsManual {
		return fmt.Sprintf("needs manual entry: %s", res.Suggestion)
	}
	return fmt.Sprintf("confidence=%.2f source=%s", res.Confidence, res.Source)
}

func formatHR(res domain.HRAnswerResult) string {
	if res.NeedsManual {
		return "needs manual entry: " + res.Error
	}
	return fmt.Sprintf("confidence=%.2f", res.Confidence)
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Resume Autofill Assistant")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	modeLine := modeStyle.Render("Mode: " + m.mode.String() + "  (Tab to switch)")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + modeLine + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if m.answer == nil {
		return "No results yet."
	}
	var b strings.Builder
	text := m.answer.text
	if text == "" {
		text = "(no value)"
	}
	b.WriteString(answerStyle.Render(text))
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(m.answer.detail))
	b.WriteString("\n\n")

	if len(m.answer.chunks) == 0 {
		b.WriteString("No resume context retrieved.")
		return b.String()
	}
	ch := m.answer.chunks[m.cursor]
	b.WriteString(fmt.Sprintf("Context %d/%d  [%s]", m.cursor+1, len(m.answer.chunks), ch.Section))
	b.WriteString("\n")
	b.WriteString(highlightBestSentence(ch.Content, m.lastQuery))
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	modeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	answerStyle    = lipgloss.NewStyle().Bold(true)
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
