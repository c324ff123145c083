package presentation

import (
	"liquidity-monitor/internal/models"
)

// PageSizes are the selectable page sizes.
var PageSizes = []int{10, 25, 50}

// DefaultPageSize is used when no preference is stored.
const DefaultPageSize = 10

// NoExpansion marks a partition with no expanded row.
const NoExpansion = -1

// Controls are the user-driven inputs to the projection. Page indices and
// expansion indices are tracked per partition; partitions page and expand
// independently.
type Controls struct {
	PageSize        int
	FilledPage      int
	PendingPage     int
	ExpandedFilled  int
	ExpandedPending int
	ShowLinks       bool
}

// LinkEntry is one row of the on-demand links modal.
type LinkEntry struct {
	Label string
	URL   string
}

// View is the derived presentation state. It owns nothing and is recomputed
// from scratch on every input change.
type View struct {
	FilledRows       []models.Transfer
	PendingRows      []models.Transfer
	FilledPage       int
	PendingPage      int
	FilledPageCount  int
	PendingPageCount int
	PageSize         int
	ExpandedFilled   int
	ExpandedPending  int
	Links            []LinkEntry
}

// Project derives the view from the two transfer partitions and the
// controls. Pure function of its inputs.
func Project(filled, pending []models.Transfer, c Controls, explorerBaseURL string) View {
	size := NormalizePageSize(c.PageSize)

	filledRows, filledPage, filledPages := paginate(filled, c.FilledPage, size)
	pendingRows, pendingPage, pendingPages := paginate(pending, c.PendingPage, size)

	view := View{
		FilledRows:       filledRows,
		PendingRows:      pendingRows,
		FilledPage:       filledPage,
		PendingPage:      pendingPage,
		FilledPageCount:  filledPages,
		PendingPageCount: pendingPages,
		PageSize:         size,
		ExpandedFilled:   clampExpansion(c.ExpandedFilled, len(filledRows)),
		ExpandedPending:  clampExpansion(c.ExpandedPending, len(pendingRows)),
	}

	if c.ShowLinks {
		view.Links = buildLinks(filledRows, pendingRows, explorerBaseURL)
	}

	return view
}

// NormalizePageSize snaps an arbitrary value onto the allowed set.
func NormalizePageSize(size int) int {
	for _, allowed := range PageSizes {
		if size == allowed {
			return size
		}
	}
	return DefaultPageSize
}

// Toggle returns the new expansion index after clicking a row: expanding a
// row collapses whichever row in the same partition was expanded before, and
// clicking the expanded row collapses it.
func Toggle(current, clicked int) int {
	if current == clicked {
		return NoExpansion
	}
	return clicked
}

func paginate(rows []models.Transfer, page, size int) ([]models.Transfer, int, int) {
	pageCount := (len(rows) + size - 1) / size
	if pageCount == 0 {
		pageCount = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= pageCount {
		page = pageCount - 1
	}

	start := page * size
	if start >= len(rows) {
		return nil, page, pageCount
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], page, pageCount
}

func clampExpansion(idx, rows int) int {
	if idx < 0 || idx >= rows {
		return NoExpansion
	}
	return idx
}

func buildLinks(filled, pending []models.Transfer, explorerBaseURL string) []LinkEntry {
	links := make([]LinkEntry, 0, len(filled)+len(pending))
	for _, t := range append(append([]models.Transfer{}, filled...), pending...) {
		if t.TxHash == "" {
			continue
		}
		links = append(links, LinkEntry{
			Label: t.TokenSymbol + " " + t.Amount,
			URL:   explorerBaseURL + t.TxHash,
		})
	}
	return links
}
