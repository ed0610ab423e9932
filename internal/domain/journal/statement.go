package journal

import (
	"strconv"
	"strings"
)

// NoHistoryMessage is shown when an account has no journal entries
const NoHistoryMessage = "No transaction history available for this account."

const overdraftNotice = "\nYou are in your overdraft"

// FormatBalance renders minor units for display. Negative values carry an overdraft notice.
func FormatBalance(amount int64) string {
	if amount < 0 {
		return "-£" + strconv.FormatInt(-amount, 10) + overdraftNotice
	}
	return "£" + strconv.FormatInt(amount, 10)
}

// Window keeps the last size entries pushed into it
type Window struct {
	size    int
	entries []*Entry
}

// NewWindow creates a sliding window of the given size
func NewWindow(size int) *Window {
	return &Window{size: size, entries: make([]*Entry, 0, size+1)}
}

// Push adds an entry, dropping the oldest once the window is full
func (w *Window) Push(e *Entry) {
	w.entries = append(w.entries, e)
	if len(w.entries) > w.size {
		w.entries = w.entries[1:]
	}
}

// Entries returns the retained entries, oldest first
func (w *Window) Entries() []*Entry {
	return w.entries
}

// RenderStatement formats entries as blank-line separated blocks
func RenderStatement(entries []*Entry) string {
	if len(entries) == 0 {
		return NoHistoryMessage
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		var b strings.Builder
		b.WriteString("Transaction Type: ")
		b.WriteString(string(e.Type))
		b.WriteString("\nAmount: ")
		b.WriteString(FormatBalance(e.Amount))
		b.WriteString("\nNew Balance: ")
		b.WriteString(FormatBalance(e.NewBalance))
		if e.Date != "" {
			b.WriteString("\nTransaction Date: ")
			b.WriteString(e.Date)
		}
		if e.Time != "" {
			b.WriteString("\nTransaction Time: ")
			b.WriteString(e.Time)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}
