// Package tui provides the Bubble Tea live dashboard: a running session
// clock, today/week/all-time totals, the idle auto-pause countdown, and the
// recent segment history.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rbeaumont/shiftclock/internal/bus"
	"github.com/rbeaumont/shiftclock/internal/store"
	"github.com/rbeaumont/shiftclock/internal/track"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	frozenClockStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("245"))

	statusActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	statusPausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	statusIdleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// Options configures the dashboard.
type Options struct {
	Subject       string
	IdleEnabled   bool
	IdleThreshold time.Duration
	Scheduler     track.Scheduler
}

type tickMsg time.Time

type refreshMsg struct {
	snapshot *track.Session
	segments []track.Segment
	fetched  time.Time
}

type busyMsg struct{} // a peer process signalled activity

type errMsg struct{ err error }

type model struct {
	st      store.Store
	opts    Options
	clock   *track.LiveClock
	idle    *track.IdleMonitor
	events  chan tea.Msg
	vp      viewport.Model
	ready   bool
	width   int
	height  int
	snap    *track.Session
	history []track.Segment
	seconds int64
	lastErr error
}

// Run opens the dashboard and blocks until the user quits.
func Run(st store.Store, activity *bus.Bus, opts Options) error {
	events := make(chan tea.Msg, 16)

	m := &model{
		st:     st,
		opts:   opts,
		clock:  track.NewLiveClock(nil), // tea.Tick drives the display
		events: events,
	}

	// The idle monitor shares the manual pause action surface: its firing
	// goes through the same store call as pressing "p". Its logger is
	// discarded so nothing writes over the alt screen.
	logger := slog.New(slog.DiscardHandler)
	m.idle = track.NewIdleMonitor(opts.Scheduler, opts.IdleThreshold, m.pauseForIdle, func(err error) {
		select {
		case events <- errMsg{err: err}:
		default:
		}
	}, logger)
	m.idle.SetEnabled(opts.IdleEnabled)
	defer m.idle.Stop()

	// Cross-process activity signals rearm the countdown and trigger a
	// snapshot refresh, since a peer may have changed our session.
	unsubscribe := activity.Subscribe(func() {
		m.idle.Activity()
		select {
		case events <- busyMsg{}:
		default:
		}
	})
	defer unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}

// pauseForIdle is the idle monitor's pause action. It runs off the Bubble
// Tea loop, on the scheduler goroutine.
func (m *model) pauseForIdle() error {
	snap, err := m.st.Snapshot(context.Background(), m.opts.Subject)
	if err != nil {
		return err
	}
	if snap.Status != track.StatusActive {
		return nil // already paused or ended elsewhere; nothing to do
	}
	if _, err := m.st.ApplyPause(context.Background(), m.opts.Subject, snap.OpenSegmentID); err != nil {
		return err
	}
	select {
	case m.events <- busyMsg{}:
	default:
	}
	return nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick(), m.listen())
}

// tick drives the display clock at a coarse granularity.
func (m *model) tick() tea.Cmd {
	return tea.Tick(track.DefaultTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listen forwards external events (idle pause, peer activity) into the loop.
func (m *model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// refresh fetches an authoritative snapshot plus the segment history. The
// snapshot tuple is replaced whole; fields from two fetches are never mixed.
func (m *model) refresh() tea.Cmd {
	st, subject := m.st, m.opts.Subject
	return func() tea.Msg {
		ctx := context.Background()
		snap, err := st.Snapshot(ctx, subject)
		if err != nil {
			return errMsg{err: err}
		}
		segments, err := st.Segments(ctx, subject)
		if err != nil {
			return errMsg{err: err}
		}
		return refreshMsg{snapshot: snap, segments: segments, fetched: time.Now()}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		historyHeight := msg.Height - 12
		if historyHeight < 3 {
			historyHeight = 3
		}
		m.vp = viewport.New(msg.Width, historyHeight)
		m.ready = true
		m.vp.SetContent(m.renderHistory())
		return m, nil

	case tea.KeyMsg:
		// Every key press is user activity.
		m.idle.Activity()
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			return m, m.action(func(ctx context.Context, snap *track.Session) (*track.Session, error) {
				return m.st.ApplyStart(ctx, m.opts.Subject)
			})
		case "p":
			return m, m.action(func(ctx context.Context, snap *track.Session) (*track.Session, error) {
				return m.st.ApplyPause(ctx, m.opts.Subject, snap.OpenSegmentID)
			})
		case "r":
			return m, m.action(func(ctx context.Context, snap *track.Session) (*track.Session, error) {
				return m.st.ApplyResume(ctx, m.opts.Subject, snap.ResumeTarget())
			})
		case "e":
			return m, m.action(func(ctx context.Context, snap *track.Session) (*track.Session, error) {
				return m.st.ApplyEnd(ctx, m.opts.Subject, snap.OpenSegmentID)
			})
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case tea.FocusMsg:
		// Regaining focus resets the tick baseline so a suspended terminal
		// never inflates the live delta, and counts as activity.
		m.clock.Resync(time.Now())
		m.idle.Activity()
		return m, m.refresh()

	case tickMsg:
		m.seconds = m.clock.Seconds(time.Time(msg))
		return m, m.tick()

	case refreshMsg:
		m.snap = msg.snapshot
		m.history = msg.segments
		m.clock.Update(msg.snapshot, msg.fetched, msg.fetched)
		m.seconds = m.clock.Seconds(msg.fetched)
		m.idle.OnState(msg.snapshot.Status, msg.snapshot.HasOpenSegment())
		if m.ready {
			m.vp.SetContent(m.renderHistory())
		}
		return m, nil

	case busyMsg:
		return m, tea.Batch(m.refresh(), m.listen())

	case errMsg:
		m.lastErr = msg.err
		return m, tea.Batch(m.refresh(), m.listen())
	}

	if m.ready {
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

// action runs a session transition against the latest snapshot and reports
// the result back into the loop.
func (m *model) action(fn func(context.Context, *track.Session) (*track.Session, error)) tea.Cmd {
	st, subject := m.st, m.opts.Subject
	return func() tea.Msg {
		ctx := context.Background()
		snap, err := st.Snapshot(ctx, subject)
		if err != nil {
			return errMsg{err: err}
		}
		if _, err := fn(ctx, snap); err != nil {
			return errMsg{err: err}
		}
		segments, err := st.Segments(ctx, subject)
		if err != nil {
			return errMsg{err: err}
		}
		return refreshMsg{snapshot: mustSnapshot(st, subject), segments: segments, fetched: time.Now()}
	}
}

// mustSnapshot refetches after a transition; on failure the stale snapshot
// is better than nothing.
func mustSnapshot(st store.Store, subject string) *track.Session {
	snap, err := st.Snapshot(context.Background(), subject)
	if err != nil {
		return &track.Session{SubjectID: subject, Status: track.StatusInactive}
	}
	return snap
}

func (m *model) View() string {
	if !m.ready || m.snap == nil {
		return "loading…"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" shiftclock — " + m.opts.Subject))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Status: "))
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	style := clockStyle
	if m.snap.Status != track.StatusActive {
		style = frozenClockStyle
	}
	b.WriteString(labelStyle.Render("Clock:  "))
	b.WriteString(style.Render(formatClock(m.seconds)))
	b.WriteString("\n")

	if at, ok := m.idle.Deadline(); ok {
		remaining := time.Until(at).Round(time.Second)
		if remaining < 0 {
			remaining = 0
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("Auto-pause in %s without activity", remaining)))
		b.WriteString("\n")
	}

	now := time.Now()
	today := track.Aggregate(m.history, m.snap, track.Today(now), now)
	week := track.Aggregate(m.history, m.snap, track.ThisWeek(now), now)
	all := track.Aggregate(m.history, m.snap, track.AllTime(now), now)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Today"), formatClock(today.Seconds),
		labelStyle.Render("Week"), formatClock(week.Seconds),
		labelStyle.Render("Total"), formatClock(all.Seconds)))

	b.WriteString("\n")
	b.WriteString(sectionHeader.Render("Recent segments"))
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(warnStyle.Render("! " + m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(statusBarStyle.Render("s start · p pause · r resume · e end · q quit"))
	return b.String()
}

func (m *model) renderStatus() string {
	switch m.snap.Status {
	case track.StatusActive:
		return statusActiveStyle.Render("ACTIVE")
	case track.StatusPaused:
		return statusPausedStyle.Render("PAUSED")
	default:
		return statusIdleStyle.Render("INACTIVE")
	}
}

func (m *model) renderHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render("no segments recorded yet")
	}
	var b strings.Builder
	// Newest first.
	for i := len(m.history) - 1; i >= 0; i-- {
		seg := m.history[i]
		start := seg.Start.Format("Mon 15:04")
		if seg.End != nil {
			b.WriteString(fmt.Sprintf("%s – %s  %s\n",
				start, seg.End.Format("15:04"), dimStyle.Render(formatClock(seg.DurationSeconds))))
		} else {
			b.WriteString(fmt.Sprintf("%s – …      %s\n", start, statusActiveStyle.Render("running")))
		}
	}
	return b.String()
}

// formatClock renders whole seconds as h:mm:ss.
func formatClock(secs int64) string {
	h := secs / 3600
	mm := (secs % 3600) / 60
	ss := secs % 60
	return fmt.Sprintf("%d:%02d:%02d", h, mm, ss)
}
