// Package domtest provides an in-memory dom.Page for engine tests.
package domtest

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"go-jobsearch-rpa/internal/dom"
)

// Page is a fake document keyed by selector. Lookups never block.
type Page struct {
	mu      sync.Mutex
	nodes   map[string][]*Node
	url     string
	closed  bool
	lookups map[string]int

	// EvalErr is returned by Evaluate when set.
	EvalErr error
	// Evals records every script passed to Evaluate.
	Evals []string
	// Keys records every key pressed.
	Keys []string
	// OnGoto runs after every navigation.
	OnGoto func(url string)
}

// NewPage returns an empty fake page.
func NewPage() *Page {
	return &Page{
		nodes:   make(map[string][]*Node),
		lookups: make(map[string]int),
	}
}

// Set replaces the document-level matches for selector.
func (p *Page) Set(selector string, nodes ...*Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range nodes {
		n.page = p
	}
	p.nodes[selector] = nodes
}

// Add appends document-level matches for selector.
func (p *Page) Add(selector string, nodes ...*Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range nodes {
		n.page = p
	}
	p.nodes[selector] = append(p.nodes[selector], nodes...)
}

// Clear removes every match for selector.
func (p *Page) Clear(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.nodes, selector)
}

// Close makes every later call fail with dom.ErrDisconnected.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Lookups reports how many times selector was waited for.
func (p *Page) Lookups(selector string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookups[selector]
}

func (p *Page) live(selector string) []*Node {
	var out []*Node
	for _, n := range p.nodes[selector] {
		if !n.isRemoved() {
			out = append(out, n)
		}
	}
	return out
}

func (p *Page) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func disconnected(op string) error {
	return errors.Wrapf(dom.ErrDisconnected, "fake %s", op)
}

func (p *Page) WaitForSelector(selector string, _ time.Duration) (dom.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, disconnected("wait")
	}
	p.lookups[selector]++
	live := p.live(selector)
	if len(live) == 0 {
		return nil, dom.ErrNotFound
	}
	return live[0], nil
}

func (p *Page) QuerySelectorAll(selector string) ([]dom.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, disconnected("query")
	}
	live := p.live(selector)
	out := make([]dom.Element, 0, len(live))
	for _, n := range live {
		out = append(out, n)
	}
	return out, nil
}

func (p *Page) Evaluate(script string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return disconnected("evaluate")
	}
	p.Evals = append(p.Evals, script)
	return p.EvalErr
}

func (p *Page) Goto(url string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return disconnected("goto")
	}
	p.url = url
	hook := p.OnGoto
	p.mu.Unlock()
	if hook != nil {
		hook(url)
	}
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) PressKey(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return disconnected("press")
	}
	p.Keys = append(p.Keys, key)
	return nil
}

func (p *Page) Screenshot() ([]byte, error) {
	if p.isClosed() {
		return nil, disconnected("screenshot")
	}
	return []byte("png"), nil
}

// Node is a fake element. Error fields make the matching action fail;
// counters record how often each action was attempted.
type Node struct {
	Text     string
	Value    string
	children map[string][]*Node

	ClickErr    error
	ForceErr    error
	DOMClickErr error
	VisibleErr  error
	ScrollErr   error
	FillErr     error
	TextErr     error
	RemoveErr   error

	// OnClick runs after any successful click (direct, forced or DOM).
	OnClick func()

	mu          sync.Mutex
	page        *Page
	removed     bool
	Clicks      int
	ForceClicks int
	DOMClicks   int
	Scrolls     int
	Removes     int
	Fills       int
}

// NewNode returns a node with the given inner text.
func NewNode(text string) *Node {
	return &Node{Text: text, children: make(map[string][]*Node)}
}

// With registers child matches for selector and returns n.
func (n *Node) With(selector string, children ...*Node) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.children == nil {
		n.children = make(map[string][]*Node)
	}
	n.children[selector] = append(n.children[selector], children...)
	return n
}

// Detach marks the node as removed from the document.
func (n *Node) Detach() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = true
}

func (n *Node) isRemoved() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.removed
}

func (n *Node) dead() bool {
	return n.page != nil && n.page.isClosed()
}

func (n *Node) Query(selector string) (dom.Element, error) {
	if n.dead() {
		return nil, disconnected("query")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.children[selector] {
		if !c.isRemoved() {
			return c, nil
		}
	}
	return nil, nil
}

func (n *Node) WaitVisible(time.Duration) error {
	if n.dead() {
		return disconnected("visible")
	}
	return n.VisibleErr
}

func (n *Node) click(counter *int, failure error) error {
	if n.dead() {
		return disconnected("click")
	}
	n.mu.Lock()
	*counter++
	hook := n.OnClick
	n.mu.Unlock()
	if failure != nil {
		return failure
	}
	if hook != nil {
		hook()
	}
	return nil
}

func (n *Node) Click(force bool) error {
	if force {
		return n.click(&n.ForceClicks, n.ForceErr)
	}
	return n.click(&n.Clicks, n.ClickErr)
}

func (n *Node) DOMClick() error {
	return n.click(&n.DOMClicks, n.DOMClickErr)
}

func (n *Node) ScrollIntoView() error {
	if n.dead() {
		return disconnected("scroll")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Scrolls++
	return n.ScrollErr
}

func (n *Node) Fill(text string) error {
	if n.dead() {
		return disconnected("fill")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Fills++
	if n.FillErr != nil {
		return n.FillErr
	}
	n.Value = text
	return nil
}

func (n *Node) InnerText() (string, error) {
	if n.dead() {
		return "", disconnected("text")
	}
	if n.TextErr != nil {
		return "", n.TextErr
	}
	return n.Text, nil
}

func (n *Node) Remove() error {
	if n.dead() {
		return disconnected("remove")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Removes++
	if n.RemoveErr != nil {
		return n.RemoveErr
	}
	n.removed = true
	return nil
}
