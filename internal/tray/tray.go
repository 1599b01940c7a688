// Package tray provides the system tray menu for the game.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	targets []string

	onToggle func() bool
	onTarget func(name string)
	onOpen   func()
	onQuit   func()
	playing  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuScore  *systray.MenuItem
	menuTarget map[string]*systray.MenuItem
}

// New creates a Tray offering the given target names.
func New(targets []string) *Tray {
	return &Tray{
		targets:    targets,
		menuTarget: make(map[string]*systray.MenuItem),
	}
}

// OnToggle sets the callback for Start/Pause. It returns whether the game is
// now playing.
func (t *Tray) OnToggle(fn func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnTarget sets the callback for target selection.
func (t *Tray) OnTarget(fn func(name string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTarget = fn
}

// OnOpen sets the callback for the open-in-browser menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Handstrike")
	systray.SetTooltip("Handstrike gesture arcade")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.playing), "Start or pause the game")
	systray.AddSeparator()

	t.menuScore = systray.AddMenuItem(ScoreTitle(0, 0), "Current score")
	t.menuScore.Disable()
	systray.AddSeparator()

	menuTargets := systray.AddMenuItem("Target", "Choose what to hit")
	for _, name := range t.targets {
		t.menuTarget[name] = menuTargets.AddSubMenuItemCheckbox(name, "Switch to "+name, false)
	}
	t.mu.Unlock()

	menuOpen := systray.AddMenuItem("Open Game...", "Open the game in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Handstrike")

	for name, item := range t.menuTarget {
		go func() {
			for range item.ClickedCh {
				t.handleTarget(name)
			}
		}()
	}

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.RLock()
	callback := t.onToggle
	t.mu.RUnlock()

	if callback == nil {
		return
	}
	t.SetPlaying(callback())
}

func (t *Tray) handleTarget(name string) {
	t.mu.RLock()
	callback := t.onTarget
	t.mu.RUnlock()

	if callback != nil {
		callback(name)
	}
	t.SetTarget(name)
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetPlaying updates the Start/Pause item.
func (t *Tray) SetPlaying(playing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.playing = playing
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(playing))
	}
}

// SetScore updates the score line.
func (t *Tray) SetScore(score, accuracy int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuScore != nil {
		t.menuScore.SetTitle(ScoreTitle(score, accuracy))
	}
}

// SetTarget checks the active target in the submenu.
func (t *Tray) SetTarget(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for n, item := range t.menuTarget {
		if n == name {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// IsPlaying returns the last known play state.
func (t *Tray) IsPlaying() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.playing
}

func toggleTitle(playing bool) string {
	if playing {
		return "❚❚ Pause"
	}
	return "▶ Start"
}

// ScoreTitle formats the score menu line.
func ScoreTitle(score, accuracy int) string {
	return fmt.Sprintf("Score: %d (%d%%)", score, accuracy)
}
