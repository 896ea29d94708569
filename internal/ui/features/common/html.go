// Package common provides the page shell and HTML helpers shared by UI
// features.
package common

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// HTML writes markup to w. The first write error sticks and later writes
// are skipped, so components check Err once at the end.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML creates an HTML writer over w.
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes s unescaped.
func (h *HTML) Raw(s string) *HTML {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
	return h
}

// Text writes s as escaped text content.
func (h *HTML) Text(s string) *HTML {
	return h.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (h *HTML) Attr(name, value string) *HTML {
	return h.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// AttrIf writes the attribute only when cond holds.
func (h *HTML) AttrIf(cond bool, name, value string) *HTML {
	if cond {
		h.Attr(name, value)
	}
	return h
}

// Open writes a start tag with class, leaving it open for attributes when
// class is empty. Close it with End.
func (h *HTML) Open(tag, class string) *HTML {
	h.Raw("<" + tag)
	if class != "" {
		h.Attr("class", class)
	}
	return h
}

// End finishes a start tag opened with Open.
func (h *HTML) End() *HTML {
	return h.Raw(">")
}

// Close writes an end tag.
func (h *HTML) Close(tag string) *HTML {
	return h.Raw("</" + tag + ">")
}

// Component renders c in place.
func (h *HTML) Component(ctx context.Context, c templ.Component) *HTML {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
	return h
}

// Err returns the first write error.
func (h *HTML) Err() error {
	return h.err
}

// Itoa formats n for markup.
func Itoa(n int) string {
	return strconv.Itoa(n)
}
