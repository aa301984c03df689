package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vektorlab/chwire/insert"
	"github.com/vektorlab/chwire/session"
)

type insertConfig struct {
	host, database, user, password, table string
	port, rows, batch                     int
	timeout                               time.Duration
}

var barFilled = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var barEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
var doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

// progressMsg reports rows inserted so far.
type progressMsg int

// doneMsg reports the terminal outcome of the insert run.
type doneMsg struct{ err error }

type model struct {
	ctx context.Context
	cfg insertConfig
	ch  chan progressMsg
	res chan doneMsg

	done     int
	err      error
	finished bool
	start    time.Time
}

func newModel(ctx context.Context, cfg insertConfig) model {
	return model{
		ctx: ctx,
		cfg: cfg,
		ch:  make(chan progressMsg, 1),
		res: make(chan doneMsg, 1),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(runInsert(m.ctx, m.cfg, m.ch, m.res), waitProgress(m.ch), waitDone(m.res))
}

// runInsert dials the server and streams cfg.rows synthetic rows into
// cfg.table, reporting counts on ch as it goes and the final error on
// res exactly once.
func runInsert(ctx context.Context, cfg insertConfig, ch chan progressMsg, res chan doneMsg) tea.Cmd {
	return func() tea.Msg {
		res <- doneMsg{err: doInsert(ctx, cfg, ch)}
		return nil
	}
}

func doInsert(ctx context.Context, cfg insertConfig, ch chan progressMsg) error {
	sess, err := session.Dial(ctx, session.Settings{
		Host:             cfg.host,
		Port:             cfg.port,
		Database:         cfg.database,
		User:             cfg.user,
		Password:         cfg.password,
		ConnectTimeout:   cfg.timeout,
		ReadWriteTimeout: cfg.timeout,
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = sess.Close() }()

	fields := []insert.Field{
		{Name: "id"},
		{Name: "name"},
		{Name: "age"},
	}

	count := 0
	next := func() ([]any, error) {
		if count >= cfg.rows {
			return nil, nil
		}
		row := []any{
			uint32(count + 1),
			fmt.Sprintf("row-%d", count+1),
			uint8(count % 100),
		}
		count++
		select {
		case ch <- progressMsg(count):
		default:
		}
		return row, nil
	}

	reportEvery := cfg.batch
	if reportEvery <= 0 {
		reportEvery = 1000
	}
	return insert.InsertStream(sess, cfg.table, fields, next, reportEvery, insert.WithBatchSize(cfg.batch))
}

func waitProgress(ch chan progressMsg) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return n
	}
}

func waitDone(res chan doneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-res
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done = int(msg)
		if m.start.IsZero() {
			m.start = time.Now()
		}
		return m, waitProgress(m.ch)

	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chinsert: %s rows into %q\n\n", fmt.Sprint(m.cfg.rows), m.cfg.table)
	b.WriteString(renderBar(m.done, m.cfg.rows, 40))
	fmt.Fprintf(&b, "  %d/%d\n", m.done, m.cfg.rows)

	if m.finished {
		if m.err != nil {
			b.WriteString(errStyle.Render(fmt.Sprintf("\nfailed: %v\n", m.err)))
		} else {
			elapsed := time.Since(m.start)
			b.WriteString(doneStyle.Render(fmt.Sprintf("\ndone in %s\n", elapsed.Round(time.Millisecond))))
		}
	}
	return b.String()
}

func renderBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := width * done / total
	if filled > width {
		filled = width
	}
	return barFilled.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", width-filled))
}
