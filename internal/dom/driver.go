// Package dom is the resilient DOM-interaction layer every page object calls
// through: timeout-bounded lookups (Gateway) and retrying actions (Actuator).
//
// It is browser-agnostic. internal/browser adapts Playwright and Rod pages to
// the Page and Element interfaces below.
package dom

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrDisconnected marks driver errors caused by the page or the browser
// channel itself going away. Everything else is a transient UI failure.
var ErrDisconnected = errors.New("dom: browser channel lost")

// ErrNotFound is returned by drivers when a wait-for-selector times out.
var ErrNotFound = errors.New("dom: element not found")

// Page is the minimal page surface the engine needs.
type Page interface {
	// WaitForSelector waits up to timeout for selector to be attached.
	WaitForSelector(selector string, timeout time.Duration) (Element, error)
	// QuerySelectorAll returns every current match, without waiting.
	QuerySelectorAll(selector string) ([]Element, error)
	// Evaluate runs a page-level script. arg is passed as the first parameter.
	Evaluate(script string, arg any) error
	Goto(url string) error
	URL() string
	PressKey(key string) error
	Screenshot() ([]byte, error)
}

// Element is a handle to one DOM node.
type Element interface {
	// Query returns the first descendant matching selector, or nil when absent.
	Query(selector string) (Element, error)
	WaitVisible(timeout time.Duration) error
	// Click performs a real pointer click. force skips actionability checks.
	Click(force bool) error
	// DOMClick invokes el.click() in the page, bypassing interactability.
	DOMClick() error
	ScrollIntoView() error
	Fill(text string) error
	InnerText() (string, error)
	// Remove detaches the node from the document.
	Remove() error
}
