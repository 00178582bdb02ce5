package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"adsight/internal/router"
)

// Asker is the TUI-facing subset of the question dispatcher.
type Asker interface {
	Ask(question string, k int) (router.Answer, error)
}

// Model is the Bubble Tea model for the interactive ask loop.
type Model struct {
	asker    Asker
	input    textinput.Model
	viewport viewport.Model
	answer   *router.Answer
	summary  string
	status   string
	cursor   int
	topK     int
	ready    bool
}

// New creates a new TUI model. summary is shown under the header (the
// knowledge-base ingest summary, typically).
func New(asker Asker, summary string, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask about campaign performance and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{asker: asker, input: ti, viewport: vp, summary: summary, topK: topK, status: "Ready. Ask a question."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				ans, err := m.asker.Ask(q, m.topK)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = nil
				} else {
					m.status = fmt.Sprintf("Answered via %s", ans.Intent)
					m.answer = &ans
					m.cursor = 0
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "down":
			if n := m.resultCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if n := m.resultCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("adsight — campaign Q&A")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	answer := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) resultCount() int {
	if m.answer == nil || m.answer.Retrieval == nil {
		return 0
	}
	return len(m.answer.Retrieval.Results)
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}
	if m.answer.Retrieval == nil {
		return m.answer.Text
	}
	results := m.answer.Retrieval.Results
	if len(results) == 0 {
		return "No matching passages."
	}
	r := results[m.cursor]
	title := fmt.Sprintf("Passage %d/%d  score=%.3f", m.cursor+1, len(results), r.Score)
	if src, ok := r.Chunk.Metadata["path"]; ok {
		title += "  " + sourceStyle.Render(src)
	}
	return title + "\n\n" + r.Chunk.Text
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
