package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// DefaultProgressDescription labels the bar while pairs are scored
const DefaultProgressDescription = "Scoring"

// ProgressManagerImpl draws a progress bar for batch scoring on interactive terminals
type ProgressManagerImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	description string
	bar         *progressbar.ProgressBar
	interactive bool
	total       int
}

// NewProgressManager creates a progress manager writing to stderr
func NewProgressManager() *ProgressManagerImpl {
	pm := &ProgressManagerImpl{description: DefaultProgressDescription}
	pm.SetWriter(os.Stderr)
	return pm
}

// SetDescription changes the label shown next to the bar
func (pm *ProgressManagerImpl) SetDescription(description string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.description = description
}

// Initialize sets the number of pairs to score
func (pm *ProgressManagerImpl) Initialize(maxValue int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.total = maxValue
}

// Start creates the bar; nothing is drawn on non-interactive writers
func (pm *ProgressManagerImpl) Start() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureBar(pm.total)
}

// Update moves the bar to processed out of total
func (pm *ProgressManagerImpl) Update(processed, total int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if bar := pm.ensureBar(total); bar != nil {
		if total != pm.total {
			bar.ChangeMax(total)
			pm.total = total
		}
		_ = bar.Set(processed)
	}
}

// Complete finishes the bar; on failure it is cleared instead of filled
func (pm *ProgressManagerImpl) Complete(success bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.bar == nil {
		return
	}
	if success {
		_ = pm.bar.Finish()
	} else {
		_ = pm.bar.Clear()
	}
	pm.bar = nil
}

// SetWriter sets the output writer; only terminals get a bar
func (pm *ProgressManagerImpl) SetWriter(writer io.Writer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.writer = writer
	pm.interactive = false
	if file, ok := writer.(*os.File); ok {
		pm.interactive = term.IsTerminal(int(file.Fd()))
	}
}

// IsInteractive returns true if progress bars should be shown
func (pm *ProgressManagerImpl) IsInteractive() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.interactive
}

// Close finishes any bar still drawn
func (pm *ProgressManagerImpl) Close() {
	pm.Complete(true)
}

// ensureBar returns the current bar, creating it when the writer is interactive.
// Callers hold pm.mu.
func (pm *ProgressManagerImpl) ensureBar(max int) *progressbar.ProgressBar {
	if pm.bar != nil || !pm.interactive || max <= 0 {
		return pm.bar
	}

	writer := pm.writer
	if writer == nil {
		writer = io.Discard
	}
	pm.total = max
	pm.bar = progressbar.NewOptions(max,
		progressbar.OptionSetDescription(pm.description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
	return pm.bar
}
