package dom

import (
	"html"
	"sort"
	"strconv"
	"strings"
)

var voidTags = map[string]bool{
	"input": true,
	"br":    true,
	"hr":    true,
}

// HTML renders the element and its subtree. Every element carries its node
// number in data-node so the shell can report events against it.
func (e *Element) HTML() string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

// HTML renders the document body's children.
func (d *Document) HTML() string {
	var b strings.Builder
	for _, c := range d.Body.children {
		c.render(&b)
	}
	return b.String()
}

func (e *Element) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.Tag)
	attr(b, "data-node", strconv.FormatUint(e.node, 10))
	if e.ID != "" {
		attr(b, "id", e.ID)
	}
	if len(e.classes) > 0 {
		attr(b, "class", e.ClassName())
	}
	if e.Type != "" {
		attr(b, "type", e.Type)
	}
	if e.Color != "" {
		attr(b, "style", "color: "+e.Color)
	}
	if e.Hidden {
		b.WriteString(" hidden")
	}

	keys := make([]string, 0, len(e.data))
	for k := range e.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attr(b, "data-"+k, e.data[k])
	}

	switch {
	case e.Tag == "input" && e.Type == "password":
		// Secrets never leave the server. data-filled tells the shell to keep
		// what the user typed.
		if e.Value != "" {
			attr(b, "data-filled", "true")
		}
	case e.Tag == "input" || e.Tag == "option":
		attr(b, "value", e.Value)
	case e.Tag == "select":
		attr(b, "data-value", e.Value)
	}
	b.WriteByte('>')
	if voidTags[e.Tag] {
		return
	}

	if e.Tag == "textarea" {
		b.WriteString(html.EscapeString(e.Value))
	} else {
		b.WriteString(html.EscapeString(e.Text))
	}
	for _, c := range e.children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

func attr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}
