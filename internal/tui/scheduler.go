package tui

import (
	"time"

	"github.com/charmbracelet/bubbletea"
)

// timerMsg fires a callback registered with scheduler.Schedule.
type timerMsg struct {
	id int
}

// scheduler adapts exchange.Scheduler to bubbletea: each delayed callback
// becomes a tea.Tick whose message is handled in Update, so animation
// steps never run concurrently with rendering.
type scheduler struct {
	next    int
	pending map[int]func()
	queued  []tea.Cmd
}

func newScheduler() *scheduler {
	return &scheduler{pending: make(map[int]func())}
}

// Schedule runs fn after d. Non-positive delays run fn immediately.
func (s *scheduler) Schedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	s.next++
	id := s.next
	s.pending[id] = fn
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
}

// fire runs and forgets the callback for id.
func (s *scheduler) fire(id int) {
	fn, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)
	fn()
}

// flush returns the ticks queued since the last flush.
func (s *scheduler) flush() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

// Pending counts callbacks that have not fired yet.
func (s *scheduler) Pending() int {
	return len(s.pending)
}
