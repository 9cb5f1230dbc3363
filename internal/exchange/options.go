package exchange

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/gridswap/internal/config"
)

// CancelPolicy decides what happens to the host model when a transaction is
// cancelled.
type CancelPolicy string

const (
	// CancelKeep restores visuals only. The host keeps every exchange it was
	// told about, so a cancelled drag can leave the model changed; hosts that
	// need the original order back must undo it themselves.
	CancelKeep CancelPolicy = "keep"
	// CancelRevert sends one extra exchange that puts the dragged item back
	// at its origin before the cancelled callback.
	CancelRevert CancelPolicy = "revert"
)

// ParseCancelPolicy parses a policy name. Empty means CancelKeep.
func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch CancelPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CancelKeep:
		return CancelKeep, nil
	case CancelRevert:
		return CancelRevert, nil
	default:
		return "", fmt.Errorf("unknown cancel policy %q (want %q or %q)", s, CancelKeep, CancelRevert)
	}
}

// Scheduler runs fn after d. It must not block the caller.
type Scheduler func(d time.Duration, fn func())

// AfterFunc schedules with time.AfterFunc. Non-positive delays run fn
// immediately on the calling goroutine.
func AfterFunc(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, fn)
}

// Options configures a Controller.
type Options struct {
	MinimumPressDuration  time.Duration
	AlphaForDisplacedItem float64
	AnimationDuration     time.Duration
	CatchScale            float64
	ReleaseScale          float64
	SnapshotAlpha         float64
	SnapshotBackground    string
	AnimationBacklogDelay time.Duration
	AllowableMovement     int
	CancelPolicy          CancelPolicy

	// Schedule drives the built-in animations and the backlog delay.
	// Defaults to AfterFunc.
	Schedule Scheduler
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// OptionsFromConfig maps the exchange section of cfg onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	ex := cfg.Exchange
	policy, err := ParseCancelPolicy(ex.CancelPolicy)
	if err != nil {
		policy = CancelKeep
	}
	return Options{
		MinimumPressDuration:  ex.MinimumPressDuration,
		AlphaForDisplacedItem: ex.AlphaForDisplacedItem,
		AnimationDuration:     ex.AnimationDuration,
		CatchScale:            ex.CatchScale,
		ReleaseScale:          ex.ReleaseScale,
		SnapshotAlpha:         ex.SnapshotAlpha,
		SnapshotBackground:    ex.SnapshotBackground,
		AnimationBacklogDelay: ex.AnimationBacklogDelay,
		AllowableMovement:     ex.AllowableMovement,
		CancelPolicy:          policy,
	}
}

func (o Options) withDefaults() Options {
	if o.Schedule == nil {
		o.Schedule = AfterFunc
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.CancelPolicy == "" {
		o.CancelPolicy = CancelKeep
	}
	return o
}
