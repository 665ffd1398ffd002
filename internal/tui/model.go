// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/paulhankin/poker"

	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/matrix"
	"github.com/verte-zerg/pfdrill/internal/model"
	statsPkg "github.com/verte-zerg/pfdrill/internal/stats"
	"github.com/verte-zerg/pfdrill/internal/trainer"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	redCardStyle   = cardStyle.Foreground(lipgloss.Color("#FF4D4F"))
	actionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#28A745")).Bold(true)
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea drill UI.
type Model struct {
	session *trainer.Session
	store   trainer.Store

	width  int
	height int

	drill    trainer.Drill
	hasDrill bool
	result   *trainer.Result
	peek     bool
	weight   int
	errMsg   string

	allCorrect int
	allTotal   int
}

// NewModel constructs a drill TUI over session. st supplies all-time totals.
func NewModel(session *trainer.Session, st trainer.Store) *Model {
	m := &Model{session: session, store: st}
	m.loadFooterStats()
	m.nextDrill()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		if msg.Type == tea.KeyCtrlC || key == "q" || key == "esc" {
			return m, tea.Quit
		}
		if m.result != nil {
			m.handleRating(key)
			return m, nil
		}
		switch key {
		case "f":
			m.answer(model.ActionFold)
		case "c":
			m.answer(model.ActionCall)
		case "r":
			m.answer(model.ActionRaise)
		case "m":
			m.peek = !m.peek
		case "n":
			if !m.hasDrill {
				m.nextDrill()
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) answer(action model.Action) {
	if !m.hasDrill {
		return
	}
	res, err := m.session.Answer(context.Background(), action)
	if errors.Is(err, trainer.ErrIllegalAction) {
		m.errMsg = fmt.Sprintf("%s is not available here", strings.ToLower(string(action)))
		return
	}
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.result = &res
	m.allTotal++
	if res.Correct {
		m.allCorrect++
	}
}

func (m *Model) handleRating(key string) {
	var rating model.Rating
	switch key {
	case "1":
		rating = model.RatingHard
	case "2", "enter", " ":
		rating = model.RatingNormal
	case "3":
		rating = model.RatingEasy
	default:
		return
	}
	w, err := m.session.Rate(context.Background(), rating)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.weight = w
	m.result = nil
	m.peek = false
	m.nextDrill()
}

func (m *Model) nextDrill() {
	d, err := m.session.Next(context.Background())
	if err != nil {
		m.hasDrill = false
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.drill = d
	m.hasDrill = true
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	records, err := m.store.ListHistory(context.Background(), model.StatsConfig{})
	if err != nil {
		logErrf("failed to load history: %v\n", err)
		return
	}
	totals := statsPkg.Summary(records)
	m.allCorrect = totals.Correct
	m.allTotal = totals.Total
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderContent() string {
	if !m.hasDrill {
		msg := "No drill available."
		if m.errMsg != "" {
			msg = m.errMsg
		}
		return errorStyle.Render(msg) + "\n" + mutedStyle.Render("q: quit")
	}
	d := m.drill
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s · %s · %s", d.Key.Source, d.Key.Scenario, d.Key.Name)),
		mutedStyle.Render(describeSetup(d.Spot)),
		"",
		renderCards(d.Cards),
		mutedStyle.Render(fmt.Sprintf("%s   RNG %d", d.Hand, d.Roll)),
		"",
	}
	if m.result == nil {
		lines = append(lines, m.renderActions())
		if m.peek {
			lines = append(lines, "", matrix.Render(matrix.Build(d.Spot, d.Hand)), matrix.Legend())
		}
	} else {
		lines = append(lines, renderFeedback(*m.result), "", matrix.Render(matrix.Build(d.Spot, d.Hand)), matrix.Legend(), "",
			actionStyle.Render("Rate: [1] hard  [2/enter] normal  [3] easy"))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func describeSetup(spot model.Spot) string {
	s := spot.Setup
	hero := s.HeroPos
	if hero == "" {
		hero = "?"
	}
	if spot.Kind() == model.SpotOpen {
		return fmt.Sprintf("Hero %s · folded to you", hero)
	}
	return fmt.Sprintf("Hero %s vs %s · hero %.1fbb · villain %.1fbb", hero, s.VillainPos, s.HeroBet, s.VillainBet)
}

func renderCards(cards hand.HoleCards) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		style := cardStyle
		if c.Suit == poker.Heart || c.Suit == poker.Diamond {
			style = redCardStyle
		}
		parts = append(parts, style.Render(c.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderActions() string {
	labels := map[model.Action]string{
		model.ActionFold:  "[F]old",
		model.ActionCall:  "[C]all",
		model.ActionRaise: "[R]aise",
	}
	legal := map[model.Action]bool{}
	for _, a := range m.drill.Legal {
		legal[a] = true
	}
	parts := make([]string, 0, len(labels))
	for _, a := range []model.Action{model.ActionFold, model.ActionCall, model.ActionRaise} {
		if legal[a] {
			parts = append(parts, actionStyle.Render(labels[a]))
		} else {
			parts = append(parts, disabledStyle.Render(labels[a]))
		}
	}
	return strings.Join(parts, "   ") + "   " + mutedStyle.Render("[M]atrix")
}

func renderFeedback(res trainer.Result) string {
	d := res.Drill
	freq := fmt.Sprintf("raise %.0f%% · call %.0f%% · fold %.0f%%", d.Raise, d.Call, foldShare(d.Raise, d.Call))
	if res.Correct {
		return correctStyle.Render("Correct: "+string(d.Expected)) + "\n" + mutedStyle.Render(freq)
	}
	return incorrectStyle.Render(fmt.Sprintf("Wrong: %s (you chose %s)", d.Expected, res.Chosen)) + "\n" + mutedStyle.Render(freq)
}

func foldShare(raise, call float64) float64 {
	fold := 100 - raise - call
	if fold < 0 {
		return 0
	}
	return fold
}

func (m *Model) renderFooter() string {
	score := m.session.Score()
	segments := []string{fmt.Sprintf("Session %d/%d · %.1f%%", score.Correct, score.Answered, score.Accuracy())}
	all := statsPkg.Aggregate{Total: m.allTotal, Correct: m.allCorrect}
	segments = append(segments, fmt.Sprintf("All-time %d/%d · %.1f%%", all.Correct, all.Total, all.Accuracy()))
	if m.weight > 0 {
		segments = append(segments, fmt.Sprintf("Last weight %d", m.weight))
	}
	segments = append(segments, fmt.Sprintf("Pool %d spots", len(m.session.Pool())))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
