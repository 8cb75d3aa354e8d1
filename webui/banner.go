package webui

import (
	"sync"

	"github.com/kastheco/atlas/ipc"
)

// ErrorBanner holds the latest error the host reported. A new error
// replaces the one shown.
type ErrorBanner struct {
	mu     sync.Mutex
	reason *ipc.ErrorReason
	count  int
}

func (b *ErrorBanner) Show(r ipc.ErrorReason) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reason = &r
	b.count++
}

// Current returns the error on display, if any.
func (b *ErrorBanner) Current() (ipc.ErrorReason, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reason == nil {
		return ipc.ErrorReason{}, false
	}
	return *b.reason, true
}

// Seen returns how many errors have been shown since the screen mounted.
func (b *ErrorBanner) Seen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *ErrorBanner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reason = nil
}

// PMFController shows the product-market-fit banner when the host asks for
// it and reports the user's answer back.
type PMFController struct {
	mu      sync.Mutex
	visible bool
	post    func(ipc.Action) error
}

func (p *PMFController) setVisible(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = v
}

// Visible reports whether the banner is shown.
func (p *PMFController) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *PMFController) answer(a ipc.Action) error {
	p.setVisible(false)
	return p.post(a)
}

func (p *PMFController) DismissLater() error { return p.answer(ipc.DismissPMFLater{}) }

func (p *PMFController) DismissNever() error { return p.answer(ipc.DismissPMFNever{}) }

// OpenSurvey replaces the banner with the survey form.
func (p *PMFController) OpenSurvey() error { return p.answer(ipc.OpenPMFSurvey{}) }

func (p *PMFController) Submit(data ipc.PMFData) error {
	return p.answer(ipc.SubmitPMF{PMFData: data})
}
