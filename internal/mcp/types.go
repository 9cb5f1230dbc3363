package mcp

import "github.com/1broseidon/gridswap/internal/grid"

// BoardInput names the board a tool acts on.
type BoardInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: default)"`
}

// NewBoardInput is the input for the new_board tool.
type NewBoardInput struct {
	Board    string   `json:"board,omitempty" jsonschema:"Board name (default: default). An existing board with this name is replaced."`
	Sections []int    `json:"sections" jsonschema:"required,Number of items in each section, e.g. [6, 4]"`
	Locked   [][2]int `json:"locked,omitempty" jsonschema:"Positions to lock as [section, item] pairs. Locked items can neither be caught nor displaced."`
}

// ItemInput addresses one item slot on a board.
type ItemInput struct {
	Board   string `json:"board,omitempty" jsonschema:"Board name (default: default)"`
	Section int    `json:"section" jsonschema:"required,Section index (0-based)"`
	Item    int    `json:"item" jsonschema:"required,Item index within the section (0-based)"`
}

// LockInput is the input for the lock_item tool.
type LockInput struct {
	Board   string `json:"board,omitempty" jsonschema:"Board name (default: default)"`
	Section int    `json:"section" jsonschema:"required,Section index (0-based)"`
	Item    int    `json:"item" jsonschema:"required,Item index within the section (0-based)"`
	Locked  bool   `json:"locked" jsonschema:"required,true to lock the slot, false to unlock it"`
}

// ReleaseInput is the input for the release tool.
type ReleaseInput struct {
	Board   string `json:"board,omitempty" jsonschema:"Board name (default: default)"`
	Timeout int    `json:"timeout,omitempty" jsonschema:"Seconds to wait for the release animation to finish (default: 10)"`
}

// TraceInput is the input for the get_trace tool.
type TraceInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: default)"`
	Since int    `json:"since,omitempty" jsonschema:"Return entries from this index on. Pass the previous next value to read only new entries."`
}

// NamedInput carries a saved board name.
type NamedInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: default)"`
	Name  string `json:"name" jsonschema:"required,Saved board name"`
}

// TransactionInfo describes the active transaction.
type TransactionInfo struct {
	Origin    grid.Position  `json:"origin"`
	Dragged   grid.Position  `json:"dragged"`
	Displaced *grid.Position `json:"displaced,omitempty"`
	LastHit   grid.Position  `json:"last_hit"`
}

// BoardStateOutput is returned by tools that report a whole board.
type BoardStateOutput struct {
	Board       string           `json:"board"`
	Sections    [][]string       `json:"sections"`
	Locked      []grid.Position  `json:"locked"`
	Phase       string           `json:"phase"`
	Transaction *TransactionInfo `json:"transaction,omitempty"`
}

// CatchOutput is the output for the catch tool.
type CatchOutput struct {
	Item        string           `json:"item"`
	Phase       string           `json:"phase"`
	Transaction *TransactionInfo `json:"transaction"`
}

// DragOutput is the output for the drag tool.
type DragOutput struct {
	Entries     []string         `json:"entries"`
	Sections    [][]string       `json:"sections"`
	Phase       string           `json:"phase"`
	Transaction *TransactionInfo `json:"transaction,omitempty"`
}

// ReleaseOutput is the output for the release tool.
type ReleaseOutput struct {
	Origin   grid.Position `json:"origin"`
	Final    grid.Position `json:"final"`
	Moved    bool          `json:"moved"`
	Sections [][]string    `json:"sections"`
}

// CancelOutput is the output for the cancel tool.
type CancelOutput struct {
	Entries  []string   `json:"entries"`
	Sections [][]string `json:"sections"`
}

// PickOutput is the output for the pick_position tool.
type PickOutput struct {
	Position grid.Position `json:"position"`
	Item     string        `json:"item"`
}

// TraceOutput is the output for the get_trace tool.
type TraceOutput struct {
	Entries []string `json:"entries"`
	Next    int      `json:"next"`
}

// SaveOutput is the output for the save_board tool.
type SaveOutput struct {
	Name string `json:"name"`
}

// ListSavedOutput is the output for the list_saved tool.
type ListSavedOutput struct {
	Names []string `json:"names"`
}

// ListBoardsOutput is the output for the list_boards tool.
type ListBoardsOutput struct {
	Boards []string `json:"boards"`
}

// ListInput is the input for tools that take no arguments.
type ListInput struct{}
