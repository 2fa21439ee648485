package tiling

import (
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// BarProgress renders scan progress on stderr.
type BarProgress struct {
	description string

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBarProgress returns a terminal progress bar with the given description.
func NewBarProgress(description string) *BarProgress {
	return &BarProgress{description: description}
}

func (p *BarProgress) Start(total int) {
	if total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *BarProgress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *BarProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// Verify at compile time that *BarProgress reports progress.
var _ ProgressReporter = (*BarProgress)(nil)
