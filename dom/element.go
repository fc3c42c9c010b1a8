// Package dom is a headless document model. It carries exactly what the task
// controller needs from a page: elements addressable by id, classes, data
// attributes, input values, event listeners and modal visibility. Documents are
// rendered to HTML and painted by a thin browser shell.
package dom

import (
	"strings"
	"sync/atomic"
)

var nextNode atomic.Uint64

// Listener handles a dispatched event.
type Listener func(e *Event)

// Event is a dispatched UI event.
type Event struct {
	Type   string
	Target *Element

	defaultPrevented bool
}

// PreventDefault marks the event so the shell skips its default action
// (form navigation).
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Element is a node in a Document.
type Element struct {
	Tag   string
	ID    string
	Text  string
	Value string
	Color string
	Type  string

	// DefaultValue is restored by Reset.
	DefaultValue string
	Hidden       bool

	node      uint64
	classes   []string
	data      map[string]string
	children  []*Element
	parent    *Element
	listeners map[string][]Listener
	bound     map[string]struct{}
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return &Element{
		Tag:  tag,
		node: nextNode.Add(1),
	}
}

// Node returns the element's stable node number, used by the browser shell to
// address elements that have no id.
func (e *Element) Node() uint64 {
	return e.node
}

// Parent returns the parent element or nil.
func (e *Element) Parent() *Element {
	return e.parent
}

// WithID sets the id and returns the element.
func (e *Element) WithID(id string) *Element {
	e.ID = id
	return e
}

// WithText sets the text and returns the element.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// WithClass adds classes and returns the element.
func (e *Element) WithClass(classes ...string) *Element {
	for _, c := range classes {
		e.AddClass(c)
	}
	return e
}

// WithData sets a data attribute and returns the element.
func (e *Element) WithData(key, value string) *Element {
	e.SetData(key, value)
	return e
}

// Append appends children and returns the element.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		e.AppendChild(c)
	}
	return e
}

// ClassName returns the space separated class list.
func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

// SetClassName replaces the class list.
func (e *Element) SetClassName(className string) {
	e.classes = e.classes[:0]
	for _, c := range strings.Fields(className) {
		e.AddClass(c)
	}
}

func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.classes = append(e.classes, class)
}

func (e *Element) RemoveClass(class string) {
	for i, c := range e.classes {
		if c == class {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			return
		}
	}
}

// Data returns a data attribute.
func (e *Element) Data(key string) (string, bool) {
	v, ok := e.data[key]
	return v, ok
}

func (e *Element) SetData(key, value string) {
	if e.data == nil {
		e.data = make(map[string]string)
	}
	e.data[key] = value
}

// Children returns the direct children.
func (e *Element) Children() []*Element {
	return e.children
}

// AppendChild attaches child as the last child, detaching it first if needed.
func (e *Element) AppendChild(child *Element) {
	child.detach()
	child.parent = e
	e.children = append(e.children, child)
}

// Before inserts node immediately before e in e's parent.
func (e *Element) Before(node *Element) {
	if e.parent == nil {
		return
	}
	node.detach()
	p := e.parent
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], append([]*Element{node}, p.children[i:]...)...)
			node.parent = p
			return
		}
	}
}

// ClearChildren removes every child.
func (e *Element) ClearChildren() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	e.detach()
}

func (e *Element) detach() {
	if e.parent == nil {
		return
	}
	p := e.parent
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// Walk visits e and its descendants depth first until fn returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first descendant (or e) that matches.
func (e *Element) Find(match func(*Element) bool) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if match(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

// QueryClass returns every descendant (or e) carrying class, in document order.
func (e *Element) QueryClass(class string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el.HasClass(class) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Reset restores every input below a form to its default value.
func (e *Element) Reset() {
	e.Walk(func(el *Element) bool {
		if isField(el.Tag) {
			el.Value = el.DefaultValue
		}
		return true
	})
}

// Show opens a modal.
func (e *Element) Show() {
	e.Hidden = false
	e.AddClass("show")
}

// Hide closes a modal.
func (e *Element) Hide() {
	e.Hidden = true
	e.RemoveClass("show")
}

// AddEventListener registers fn for events of type typ.
func (e *Element) AddEventListener(typ string, fn Listener) {
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[typ] = append(e.listeners[typ], fn)
}

// ListenerCount returns how many listeners are registered for typ.
func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[typ])
}

// BindOnce registers fn for typ unless the element already carries a binding
// tagged typ. It reports whether the listener was added. The tag lives on the
// element, so a second controller attached to the same document binds nothing.
func (e *Element) BindOnce(typ string, fn Listener) bool {
	if _, ok := e.bound[typ]; ok {
		return false
	}
	if e.bound == nil {
		e.bound = make(map[string]struct{})
	}
	e.bound[typ] = struct{}{}
	e.AddEventListener(typ, fn)
	return true
}

// Dispatch runs the listeners for typ in registration order.
func (e *Element) Dispatch(typ string) *Event {
	ev := &Event{Type: typ, Target: e}
	listeners := append([]Listener(nil), e.listeners[typ]...)
	for _, l := range listeners {
		l(ev)
	}
	return ev
}

func isField(tag string) bool {
	switch tag {
	case "input", "textarea", "select":
		return true
	}
	return false
}
