package notifier

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/leonmuri/Progol-aleatorio2/internal/export"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to w
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	return &DryRunNotifier{w: w}
}

// Notify prints the posts that would be made
func (n *DryRunNotifier) Notify(sheets []export.Sheet) error {
	for i, sheet := range sheets {
		post := formatPost(sheet)
		fmt.Fprintf(n.w, "--- Post %d/%d ---\n", i+1, len(sheets))
		fmt.Fprintln(n.w, post)
		if _, err := fmt.Fprintf(n.w, "\n(Length: %d characters)\n\n", utf8.RuneCountInString(post)); err != nil {
			return err
		}
	}
	return nil
}
