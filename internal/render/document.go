package render

import (
	"strings"
	"sync"
)

// Default element IDs looked up when Render is not given explicit ones.
const (
	DefaultContainerID = "messages"
	DefaultTemplateID  = "message_template"
)

// Element is a named page element holding HTML.
type Element struct {
	ID string

	mu   sync.Mutex
	html strings.Builder
}

// NewElement creates an element with initial HTML content.
func NewElement(id, html string) *Element {
	e := &Element{ID: id}
	e.html.WriteString(html)
	return e
}

// HTML returns the element's content.
func (e *Element) HTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.html.String()
}

// Append adds a fragment to the end of the content.
func (e *Element) Append(fragment string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.html.WriteString(fragment)
}

// SetHTML replaces the content.
func (e *Element) SetHTML(html string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.html.Reset()
	e.html.WriteString(html)
}

// Document is the set of elements a page exposes to the pipeline.
type Document struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

// NewDocument creates a document holding elems.
func NewDocument(elems ...*Element) *Document {
	d := &Document{elements: make(map[string]*Element, len(elems))}
	for _, e := range elems {
		d.elements[e.ID] = e
	}
	return d
}

// NewPageDocument creates a document with an empty default container and a
// default template element holding tmpl.
func NewPageDocument(tmpl string) *Document {
	return NewDocument(
		NewElement(DefaultContainerID, ""),
		NewElement(DefaultTemplateID, tmpl),
	)
}

// ElementByID returns the element with id, or nil.
func (d *Document) ElementByID(id string) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.elements[id]
}

// Add inserts or replaces an element.
func (d *Document) Add(e *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[e.ID] = e
}
