package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kleincho/humint/internal/auth"
	"github.com/kleincho/humint/internal/chat"
	"github.com/kleincho/humint/internal/models"
	"github.com/kleincho/humint/internal/threads"
	"github.com/kleincho/humint/internal/tui/styles"
)

type threadsLoadedMsg struct {
	buckets threads.Buckets
	err     error
}

type threadOpenedMsg struct{}

// threadRow is one selectable line in the picker. Section headers carry an
// empty thread id and are skipped by the cursor.
type threadRow struct {
	section string
	thread  models.Thread
}

func (r threadRow) selectable() bool {
	return r.section == ""
}

// threadsView lists the signed-in identity's recent threads bucketed by
// recency.
type threadsView struct {
	controller *chat.Controller
	threads    *threads.Client
	auth       *auth.Store

	rows    []threadRow
	cursor  int
	loading bool
	lastErr error
}

func newThreadsView(controller *chat.Controller, client *threads.Client, authStore *auth.Store) *threadsView {
	return &threadsView{
		controller: controller,
		threads:    client,
		auth:       authStore,
	}
}

func (v *threadsView) Init() tea.Cmd {
	v.loading = true
	v.lastErr = nil
	return v.loadCmd()
}

func (v *threadsView) loadCmd() tea.Cmd {
	client := v.threads
	authStore := v.auth
	return func() tea.Msg {
		if client == nil || authStore == nil {
			return threadsLoadedMsg{}
		}
		identity := authStore.Current()
		if identity == nil {
			return threadsLoadedMsg{}
		}
		threadList, err := client.ListThreads(context.Background(), identity.UserID)
		if err != nil {
			return threadsLoadedMsg{err: err}
		}
		return threadsLoadedMsg{buckets: threads.GroupByRecency(threadList, time.Now())}
	}
}

func (v *threadsView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case threadsLoadedMsg:
		v.loading = false
		v.lastErr = typed.err
		v.rows = flattenBuckets(typed.buckets)
		v.cursor = firstSelectable(v.rows)
		return nil
	case threadOpenedMsg:
		return pushViewCmd(ViewChat)
	case tea.KeyMsg:
		switch typed.String() {
		case "up", "k":
			v.moveCursor(-1)
			return nil
		case "down", "j":
			v.moveCursor(1)
			return nil
		case "enter":
			return v.openSelected()
		case "n":
			// "New thread" resets the session, not just the view: the old
			// conversation must not reappear behind the start screen.
			controller := v.controller
			return func() tea.Msg {
				controller.SelectThread(context.Background(), nil)
				return showPickerMsg{}
			}
		case "esc", "backspace":
			return popViewCmd()
		case "R":
			v.loading = true
			return v.loadCmd()
		}
	}
	return nil
}

func (v *threadsView) openSelected() tea.Cmd {
	if v.cursor < 0 || v.cursor >= len(v.rows) || !v.rows[v.cursor].selectable() {
		return nil
	}
	threadID := v.rows[v.cursor].thread.ThreadID
	controller := v.controller
	return func() tea.Msg {
		controller.ActivateThread(context.Background(), threadID, "")
		return threadOpenedMsg{}
	}
}

func (v *threadsView) moveCursor(delta int) {
	next := v.cursor
	for {
		next += delta
		if next < 0 || next >= len(v.rows) {
			return
		}
		if v.rows[next].selectable() {
			v.cursor = next
			return
		}
	}
}

func (v *threadsView) View(width, height int, theme styles.Theme) string {
	if v.loading {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.MutedStyle().Render("loading threads..."))
	}
	if v.lastErr != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.ErrorStyle().Render("Could not load threads. Press R to retry."))
	}
	if len(v.rows) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.MutedStyle().Render("No recent threads. Press n to start a conversation."))
	}

	selected := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.SelectedItem)).Bold(true)

	var b strings.Builder
	for i, row := range v.rows {
		if row.section != "" {
			b.WriteString(theme.MutedStyle().Render(row.section))
			b.WriteString("\n")
			continue
		}

		line := threadLine(row.thread, width-4)
		if i == v.cursor {
			b.WriteString(selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func threadLine(thread models.Thread, width int) string {
	title := thread.Title
	if title == "" {
		title = thread.ThreadID
	}
	if thread.LastMessage != "" {
		title = fmt.Sprintf("%s · %s", title, thread.LastMessage)
	}
	return truncate(title, maxInt(10, width))
}

func flattenBuckets(buckets threads.Buckets) []threadRow {
	var rows []threadRow
	appendBucket := func(label string, bucket []models.Thread) {
		if len(bucket) == 0 {
			return
		}
		rows = append(rows, threadRow{section: label})
		for _, thread := range bucket {
			rows = append(rows, threadRow{thread: thread})
		}
	}
	appendBucket("Today", buckets.Today)
	appendBucket("Yesterday", buckets.Yesterday)
	appendBucket("Previous 7 days", buckets.PreviousWeek)
	return rows
}

func firstSelectable(rows []threadRow) int {
	for i, row := range rows {
		if row.selectable() {
			return i
		}
	}
	return -1
}
