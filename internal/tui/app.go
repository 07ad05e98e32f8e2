// Package tui is the terminal dashboard around a heater card. The bubbletea
// loop owns the card; hosts feed it catalog snapshots through a channel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/jask/webastocard/internal/card"
	"github.com/jask/webastocard/internal/hass"
)

const (
	actionTimeout = 15 * time.Second
	cardWidth     = 64
	labelWidth    = 22
	sliderWidth   = 16
)

// Options tune the dashboard.
type Options struct {
	// TrendPoints is how many exhaust temperature readings the trend keeps.
	TrendPoints int
}

// App is the bubbletea model.
type App struct {
	ctx     context.Context
	card    *card.Card
	updates <-chan hass.Catalog
	logger  zerolog.Logger

	keys keyMap
	help help.Model

	width  int
	cursor int
	// pending holds slider values adjusted but not yet committed, by slug.
	pending map[string]float64
	trend   *trend
	status  string
	failed  bool
	// diagnosed is set once missing entities have been logged.
	diagnosed bool
}

// New wraps c. updates may be nil when the host never pushes.
func New(ctx context.Context, c *card.Card, updates <-chan hass.Catalog, logger zerolog.Logger, opts Options) *App {
	a := &App{
		ctx:     ctx,
		card:    c,
		updates: updates,
		logger:  logger.With().Str("component", "tui").Logger(),
		keys:    newKeyMap(),
		help:    help.New(),
		pending: map[string]float64{},
		trend:   newTrend(opts.TrendPoints),
	}
	a.trend.observe(c.Entities().Get(card.KindSensor, card.SensorExhaustTemp))
	return a
}

// messages
type catalogMsg hass.Catalog

type updatesClosedMsg struct{}

type actionDoneMsg struct {
	action card.Action
	err    error
}

// HostStoppedMsg tells the dashboard that the host connection ended for
// good. Send it with tea.Program.Send.
type HostStoppedMsg struct{ Err error }

func (a *App) Init() tea.Cmd {
	return a.waitForCatalog()
}

func (a *App) waitForCatalog() tea.Cmd {
	if a.updates == nil {
		return nil
	}
	ctx, updates := a.ctx, a.updates
	return func() tea.Msg {
		select {
		case c, ok := <-updates:
			if !ok {
				return updatesClosedMsg{}
			}
			return catalogMsg(c)
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
	case tea.KeyMsg:
		return a.handleKey(m)
	case catalogMsg:
		a.card.OnCatalogUpdated(hass.Catalog(m))
		if !a.diagnosed && len(m) > 0 {
			a.logMissing(hass.Catalog(m))
			a.diagnosed = true
		}
		a.trend.observe(a.card.Entities().Get(card.KindSensor, card.SensorExhaustTemp))
		a.clampCursor()
		return a, a.waitForCatalog()
	case updatesClosedMsg:
		a.logger.Debug().Msg("catalog updates closed")
	case HostStoppedMsg:
		a.card.Detach()
		a.pending = map[string]float64{}
		if m.Err != nil {
			a.setError("connection lost: " + m.Err.Error())
		} else {
			a.setStatus("connection closed")
		}
	case actionDoneMsg:
		a.card.Settle(m.action)
		if m.err != nil {
			a.setError("failed: " + m.action.String() + ": " + rootCause(m.err))
		} else {
			a.setStatus("sent " + m.action.String())
		}
	}
	return a, nil
}

func (a *App) logMissing(catalog hass.Catalog) {
	missing := a.card.Entities().Missing()
	for _, r := range missing {
		ev := a.logger.Warn().Str("key", r.Key).Str("entity_id", r.EntityID)
		if hints := card.Suggest(r.EntityID, catalog, 3); len(hints) > 0 {
			ev = ev.Strs("similar", hints)
		}
		ev.Msg("entity not found")
	}
	if len(missing) > 0 {
		a.logger.Warn().Int("missing", len(missing)).Str("prefix", a.card.Config().Prefix()).Msg("some card entities did not resolve")
	}
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.NextTab):
		a.card.NextTab()
		a.resetFocus()
	case key.Matches(m, a.keys.PrevTab):
		a.card.PrevTab()
		a.resetFocus()
	case key.Matches(m, a.keys.JumpTab):
		n, _ := strconv.Atoi(m.String())
		if tabs := card.Tabs(); n >= 1 && n <= len(tabs) {
			a.card.SelectTab(tabs[n-1])
			a.resetFocus()
		}
	case key.Matches(m, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.cursor < len(a.focusable())-1 {
			a.cursor++
		}
	case key.Matches(m, a.keys.Decrease):
		a.adjust(-1)
	case key.Matches(m, a.keys.Increase):
		a.adjust(1)
	case key.Matches(m, a.keys.Discard):
		a.pending = map[string]float64{}
		a.setStatus("")
	case key.Matches(m, a.keys.Commit):
		return a, a.commit()
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return a, nil
}

// resetFocus runs on tab changes; uncommitted slider values are dropped.
func (a *App) resetFocus() {
	a.cursor = 0
	a.pending = map[string]float64{}
}

// focusable lists the rows of the active tab the cursor can sit on.
func (a *App) focusable() []card.Row {
	var out []card.Row
	for _, sec := range a.card.Sections(a.card.ActiveTab()) {
		for _, row := range sec.Rows {
			if row.Kind == card.RowNumber || row.Kind == card.RowButton {
				out = append(out, row)
			}
		}
	}
	return out
}

func (a *App) selected() (card.Row, bool) {
	rows := a.focusable()
	if a.cursor < 0 || a.cursor >= len(rows) {
		return card.Row{}, false
	}
	return rows[a.cursor], true
}

func (a *App) clampCursor() {
	if n := len(a.focusable()); a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// adjust moves the pending value of the selected slider by one step. The
// host is not contacted until commit.
func (a *App) adjust(dir float64) {
	row, ok := a.selected()
	if !ok || row.Kind != card.RowNumber {
		return
	}
	base, ok := a.pending[row.Slug]
	if !ok {
		base = row.Bounds.Min
		if row.HasNum {
			base = row.Number
		}
	}
	a.pending[row.Slug] = stepValue(base, dir, row.Bounds)
}

func stepValue(v, dir float64, b card.Bounds) float64 {
	next := v + dir*b.Step
	// snap to the step grid so repeated float additions do not drift
	next = b.Min + math.Round((next-b.Min)/b.Step)*b.Step
	return min(max(next, b.Min), b.Max)
}

func (a *App) commit() tea.Cmd {
	row, ok := a.selected()
	if !ok {
		return nil
	}
	var (
		action card.Action
		err    error
	)
	switch row.Kind {
	case card.RowButton:
		action, err = a.card.PressButton(row.Slug)
	case card.RowNumber:
		v, ok := a.pending[row.Slug]
		if !ok {
			a.setStatus("nothing to save, adjust with ←/→ first")
			return nil
		}
		delete(a.pending, row.Slug)
		action, err = a.card.CommitNumber(row.Slug, v)
	default:
		return nil
	}
	if err != nil {
		a.setError(rootCause(err))
		return nil
	}
	a.setStatus("sending " + action.String() + "…")
	return a.dispatch(action)
}

// dispatch runs the host call off the update loop. The host is captured now
// so a later Detach does not affect an action already under way.
func (a *App) dispatch(action card.Action) tea.Cmd {
	ctx, c, host := a.ctx, a.card, a.card.Host()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		return actionDoneMsg{action: action, err: c.Dispatch(ctx, host, action)}
	}
}

func (a *App) setStatus(s string) {
	a.status = s
	a.failed = false
}

func (a *App) setError(s string) {
	a.status = s
	a.failed = true
}

func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		var apiErr *hass.APIError
		if errors.As(err, &apiErr) {
			return apiErr.Error()
		}
		err = next
	}
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (a *App) View() string {
	width := cardWidth
	if a.width > 0 {
		width = min(width, a.width)
	}
	inner := max(width-4, 10)

	parts := []string{
		a.renderHeader(inner),
		a.renderTabs(),
		"",
		a.renderSections(inner),
	}
	if a.card.ActiveTab() == card.TabMain {
		if tr := a.trend.view(inner); tr != "" {
			parts = append(parts, "", sectionTitleStyle.Render("Exhaust trend"), tr)
		}
	}
	if a.status != "" {
		st := statusStyle
		if a.failed {
			st = errorStyle
		}
		parts = append(parts, "", st.Render(ansi.Truncate(a.status, inner, "…")))
	}

	body := lipgloss.NewStyle().
		Background(background(a.card.Style())).
		Foreground(colorText).
		Padding(1, 2).
		Width(width).
		Render(strings.Join(parts, "\n"))
	return body + "\n" + a.help.View(a.keys)
}

func (a *App) renderHeader(width int) string {
	h := a.card.Header()
	dot := toneStyle(h.Indicator).Render("●")
	left := dot + " " + titleStyle.Render(h.Title) + "  " + headerMessageStyle.Render(h.Message)
	right := toneStyle(h.Availability.Tone).Render(h.Availability.Text)
	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return ansi.Truncate(left, width, "…")
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) renderTabs() string {
	active := a.card.ActiveTab()
	tabs := make([]string, 0, len(card.Tabs()))
	for i, t := range card.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, t.Title())
		if t == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderSections(width int) string {
	var lines []string
	focus := 0
	for i, sec := range a.card.Sections(a.card.ActiveTab()) {
		if i > 0 {
			lines = append(lines, "")
		}
		if sec.Title != "" {
			lines = append(lines, sectionTitleStyle.Render(sec.Title))
		}
		var buttons []string
		for _, row := range sec.Rows {
			switch row.Kind {
			case card.RowButton:
				buttons = append(buttons, a.renderButton(row, focus == a.cursor))
				focus++
			case card.RowNumber:
				lines = append(lines, a.renderNumber(row, focus == a.cursor, width))
				focus++
			default:
				lines = append(lines, renderValue(row, width))
			}
		}
		if len(buttons) > 0 {
			lines = append(lines, strings.Join(buttons, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func renderValue(row card.Row, width int) string {
	label := labelStyle.Render(padRight(row.Label, labelWidth))
	line := "  " + label + toneStyle(row.Value.Tone).Render(row.Value.Text)
	return ansi.Truncate(line, width, "…")
}

func (a *App) renderNumber(row card.Row, focused bool, width int) string {
	marker := "  "
	if focused {
		marker = cursorStyle.Render("▶ ")
	}
	label := labelStyle.Render(padRight(row.Label, labelWidth))
	value, hasValue := row.Number, row.HasNum
	text := row.Value.Text
	if v, ok := a.pending[row.Slug]; ok {
		value, hasValue = v, true
		text = pendingStyle.Render(formatPending(row, v) + " *")
	}
	line := marker + label + slider(value, hasValue, row.Bounds) + " " + text
	return ansi.Truncate(line, width, "…")
}

func formatPending(row card.Row, v float64) string {
	text := strconv.FormatFloat(v, 'f', -1, 64) + row.Unit
	if row.Percent {
		if p, ok := card.Percent(v, row.Bounds.Max); ok {
			text += " (" + strconv.Itoa(p) + "%)"
		}
	}
	return text
}

func slider(v float64, ok bool, b card.Bounds) string {
	if !ok || b.Max <= b.Min {
		return sliderTrackStyle.Render(strings.Repeat("─", sliderWidth))
	}
	filled := int(math.Round((min(max(v, b.Min), b.Max) - b.Min) / (b.Max - b.Min) * sliderWidth))
	return sliderFillStyle.Render(strings.Repeat("━", filled)) +
		sliderTrackStyle.Render(strings.Repeat("─", sliderWidth-filled))
}

func (a *App) renderButton(row card.Row, focused bool) string {
	label := buttonStyle(row.Style, row.Enabled).Render(row.Label)
	if focused {
		return cursorStyle.Render("▶") + label
	}
	return " " + label
}

func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
