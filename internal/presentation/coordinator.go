package presentation

import (
	"sync"

	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/models"
)

// Coordinator holds the page/expansion controls and writes page-size changes
// through the preference store. The view itself stays a pure projection.
type Coordinator struct {
	store interfaces.PreferenceStore

	mu       sync.Mutex
	controls Controls
}

func NewCoordinator(store interfaces.PreferenceStore) *Coordinator {
	controls := Controls{
		PageSize:        DefaultPageSize,
		ExpandedFilled:  NoExpansion,
		ExpandedPending: NoExpansion,
	}
	if size, ok := store.GetPageSize(); ok {
		controls.PageSize = NormalizePageSize(size)
	}
	return &Coordinator{
		store:    store,
		controls: controls,
	}
}

// SetPageSize changes the page size, persisting the preference exactly once
// per change and resetting both partitions to their first page. Setting the
// current size is a no-op.
func (c *Coordinator) SetPageSize(size int) error {
	size = NormalizePageSize(size)

	c.mu.Lock()
	defer c.mu.Unlock()

	if size == c.controls.PageSize {
		return nil
	}

	c.controls.PageSize = size
	c.controls.FilledPage = 0
	c.controls.PendingPage = 0
	return c.store.SetPageSize(size)
}

// SetFilledPage moves the filled partition to the given page.
func (c *Coordinator) SetFilledPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.FilledPage = page
}

// SetPendingPage moves the pending partition to the given page.
func (c *Coordinator) SetPendingPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.PendingPage = page
}

// ToggleFilled expands or collapses a filled row. The pending partition's
// expansion is untouched.
func (c *Coordinator) ToggleFilled(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.ExpandedFilled = Toggle(c.controls.ExpandedFilled, idx)
}

// TogglePending expands or collapses a pending row. The filled partition's
// expansion is untouched.
func (c *Coordinator) TogglePending(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.ExpandedPending = Toggle(c.controls.ExpandedPending, idx)
}

// ShowLinks toggles the links modal payload.
func (c *Coordinator) ShowLinks(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.ShowLinks = show
}

// Controls returns a copy of the current controls.
func (c *Coordinator) Controls() Controls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controls
}

// View projects the current controls over the given partitions.
func (c *Coordinator) View(filled, pending []models.Transfer, explorerBaseURL string) View {
	return Project(filled, pending, c.Controls(), explorerBaseURL)
}
