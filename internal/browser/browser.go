package browser

import (
	"context"
	"errors"
	"time"
)

// Session errors shared by all Browser implementations.
var (
	// ErrElementNotFound is returned when a selector matches nothing in
	// the current document. For the pagination control this is not a
	// failure: a single-page table simply has no next control.
	ErrElementNotFound = errors.New("element not found")

	// ErrWaitTimeout is returned when an element does not become
	// visible within the bounded wait.
	ErrWaitTimeout = errors.New("timed out waiting for element")
)

// Browser is the capability interface for a live browsing session.
// Implementations must be safe for sequential use by a single owner;
// concurrent calls are not supported, matching the campaign controller's
// exclusive-ownership contract.
type Browser interface {
	// Navigate loads the given URL and returns once the document load
	// event has fired. Rendered content may still be arriving; callers
	// follow up with WaitVisible.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the selector matches a visible element,
	// the timeout elapses (ErrWaitTimeout), or ctx is cancelled.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// OuterHTML returns the rendered outer HTML of the first element
	// matching the selector, or ErrElementNotFound.
	OuterHTML(ctx context.Context, selector string) (string, error)

	// Click dispatches a click on the first element matching the
	// selector.
	Click(ctx context.Context, selector string) error

	// Close releases the session and all associated resources. It is
	// safe to call Close multiple times.
	Close() error
}
