package board

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/1broseidon/gridswap/internal/grid"
)

// EntryKind names a delegate callback recorded in a board's trace.
type EntryKind string

const (
	EntryExchange EntryKind = "exchange"
	EntryEvent    EntryKind = "event"
	EntryFinish   EntryKind = "finish"
	EntryCancel   EntryKind = "cancel"
)

// Entry is one recorded delegate callback.
type Entry struct {
	Kind EntryKind     `json:"kind" yaml:"kind"`
	P1   grid.Position `json:"p1" yaml:"p1"`
	P2   grid.Position `json:"p2" yaml:"p2"`
}

func (e Entry) String() string {
	switch e.Kind {
	case EntryExchange, EntryFinish:
		return fmt.Sprintf("%s %s %s", e.Kind, e.P1, e.P2)
	default:
		return string(e.Kind)
	}
}

// Board is an in-memory host model: ordered sections of labelled items.
// It applies every exchange it is told about and records the callbacks it
// receives. Locked items can neither be caught nor displaced.
type Board struct {
	mu       sync.Mutex
	sections [][]string
	locked   map[grid.Position]struct{}
	trace    []Entry
	observer func(Entry)
	logger   *slog.Logger
}

// New creates a board with sections of the given sizes. Items are labelled
// by section letter and 1-based index: A1, A2, ..., B1, ...
func New(sizes []int) *Board {
	sections := make([][]string, len(sizes))
	for s, n := range sizes {
		sections[s] = make([]string, n)
		for i := range n {
			sections[s][i] = Label(s, i)
		}
	}
	return FromSections(sections)
}

// FromSections creates a board holding a copy of sections.
func FromSections(sections [][]string) *Board {
	return &Board{
		sections: copySections(sections),
		locked:   make(map[grid.Position]struct{}),
		logger:   slog.New(slog.DiscardHandler),
	}
}

// Label returns the initial label for an item.
func Label(section, item int) string {
	prefix := ""
	for n := section; ; n = n/26 - 1 {
		prefix = string(rune('A'+n%26)) + prefix
		if n < 26 {
			break
		}
	}
	return fmt.Sprintf("%s%d", prefix, item+1)
}

// SetLogger sets the logger used for model errors.
func (b *Board) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = l
}

// SetObserver registers fn to be called after each recorded entry. fn runs
// on the goroutine delivering the callback, without the board's lock held.
func (b *Board) SetObserver(fn func(Entry)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = fn
}

// Sections returns a copy of the model.
func (b *Board) Sections() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copySections(b.sections)
}

// Sizes returns the item count of each section.
func (b *Board) Sizes() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return grid.Sizes(b.sections)
}

// Item returns the label at pos.
func (b *Board) Item(pos grid.Position) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid(pos) {
		return "", false
	}
	return b.sections[pos.Section][pos.Item], true
}

// Lock pins the item at pos.
func (b *Board) Lock(pos grid.Position) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid(pos) {
		return fmt.Errorf("position %s is outside the board", pos)
	}
	b.locked[pos] = struct{}{}
	return nil
}

// Unlock releases a pinned position.
func (b *Board) Unlock(pos grid.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.locked, pos)
}

// Locked reports whether pos is pinned.
func (b *Board) Locked(pos grid.Position) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.locked[pos]
	return ok
}

// LockedPositions returns the pinned positions in row-major order.
func (b *Board) LockedPositions() []grid.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []grid.Position
	for s, items := range b.sections {
		for i := range items {
			pos := grid.Position{Section: s, Item: i}
			if _, ok := b.locked[pos]; ok {
				out = append(out, pos)
			}
		}
	}
	return out
}

// Trace returns the recorded callbacks.
func (b *Board) Trace() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.trace))
	copy(out, b.trace)
	return out
}

// ResetTrace drops the recorded callbacks.
func (b *Board) ResetTrace() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trace = nil
}

// RandomFreePosition picks a uniformly random position that is not locked.
func (b *Board) RandomFreePosition(r *rand.Rand) (grid.Position, bool) {
	b.mu.Lock()
	sizes := grid.Sizes(b.sections)
	excluded := make(map[grid.Position]struct{}, len(b.locked))
	for pos := range b.locked {
		excluded[pos] = struct{}{}
	}
	b.mu.Unlock()
	return grid.RandomPosition(r, sizes, excluded)
}

// DidExchange applies the exchange to the model.
func (b *Board) DidExchange(p1, p2 grid.Position) {
	b.mu.Lock()
	if err := grid.ExchangeItems(b.sections, p1, p2); err != nil {
		b.logger.Error("exchange rejected", "p1", p1, "p2", p2, "error", err)
	}
	b.mu.Unlock()
	b.record(Entry{Kind: EntryExchange, P1: p1, P2: p2})
}

func (b *Board) DidFinishExchangeEvent() {
	b.record(Entry{Kind: EntryEvent})
}

func (b *Board) DidFinishTransaction(p1, p2 grid.Position) {
	b.record(Entry{Kind: EntryFinish, P1: p1, P2: p2})
}

func (b *Board) DidCancelTransaction() {
	b.record(Entry{Kind: EntryCancel})
}

// CanBeginTransaction refuses locked items.
func (b *Board) CanBeginTransaction(pos grid.Position) bool {
	return !b.Locked(pos)
}

// CanDisplace refuses locked items.
func (b *Board) CanDisplace(candidate, _ grid.Position) bool {
	return !b.Locked(candidate)
}

func (b *Board) record(e Entry) {
	b.mu.Lock()
	b.trace = append(b.trace, e)
	fn := b.observer
	b.mu.Unlock()

	if fn != nil {
		fn(e)
	}
}

func (b *Board) valid(pos grid.Position) bool {
	return pos.Section >= 0 && pos.Section < len(b.sections) &&
		pos.Item >= 0 && pos.Item < len(b.sections[pos.Section])
}

func copySections(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, s := range in {
		out[i] = append([]string(nil), s...)
	}
	return out
}
