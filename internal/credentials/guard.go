package credentials

import (
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/config"
	"go.uber.org/zap"
)

// MaskedDisplay is what callers render while a secret is concealed.
const MaskedDisplay = "••••••••••••"

var ErrNotRevealed = errors.New("credentials_not_revealed")

// RevealState describes the active reveal window.
type RevealState struct {
	SubscriptionID string    `json:"subscription_id"`
	ExpiresAt      time.Time `json:"expires_at"`
	SecondsLeft    int       `json:"seconds_left"`
}

type activeReveal struct {
	subscriptionID string
	expiresAt      time.Time
	timer          *time.Timer
}

// Guard tracks at most one reveal window across all subscriptions. Starting
// a reveal for another subscription cancels the active one; reaching the
// deadline conceals without further user action.
type Guard struct {
	clk      clock.Clock
	settings *config.SettingsHolder
	log      *zap.Logger

	mu     sync.Mutex
	active *activeReveal
}

func NewGuard(clk clock.Clock, settings *config.SettingsHolder, log *zap.Logger) *Guard {
	return &Guard{
		clk:      clk,
		settings: settings,
		log:      log.Named("credentials.guard"),
	}
}

// Reveal opens the countdown window for one subscription, replacing any
// window already open for another.
func (g *Guard) Reveal(subscriptionID string) RevealState {
	duration := time.Duration(g.settings.Get().RevealSeconds) * time.Second

	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopLocked()

	expiresAt := g.clk.Now().Add(duration)
	reveal := &activeReveal{
		subscriptionID: subscriptionID,
		expiresAt:      expiresAt,
	}
	reveal.timer = time.AfterFunc(duration, func() {
		g.concealExpired(reveal)
	})
	g.active = reveal

	g.log.Info("credentials revealed",
		zap.String("subscription_id", subscriptionID),
		zap.Duration("window", duration),
	)
	return RevealState{
		SubscriptionID: subscriptionID,
		ExpiresAt:      expiresAt,
		SecondsLeft:    int(duration / time.Second),
	}
}

// RevealedFor reports whether the given subscription's window is open. The
// deadline is checked against the clock, so an expired window reads as
// concealed even before the timer callback runs.
func (g *Guard) RevealedFor(subscriptionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil || g.active.subscriptionID != subscriptionID {
		return false
	}
	return g.clk.Now().Before(g.active.expiresAt)
}

// Active returns the current window, if any.
func (g *Guard) Active() (RevealState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil {
		return RevealState{}, false
	}
	left := g.active.expiresAt.Sub(g.clk.Now())
	if left <= 0 {
		return RevealState{}, false
	}
	return RevealState{
		SubscriptionID: g.active.subscriptionID,
		ExpiresAt:      g.active.expiresAt,
		SecondsLeft:    int(left / time.Second),
	}, true
}

// Conceal closes the window immediately.
func (g *Guard) Conceal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

// Close cancels the countdown timer so it cannot outlive the guard.
func (g *Guard) Close() {
	g.Conceal()
}

func (g *Guard) concealExpired(reveal *activeReveal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active != reveal {
		return
	}
	g.active = nil
	g.log.Info("credentials concealed", zap.String("subscription_id", reveal.subscriptionID))
}

func (g *Guard) stopLocked() {
	if g.active == nil {
		return
	}
	g.active.timer.Stop()
	g.active = nil
}
