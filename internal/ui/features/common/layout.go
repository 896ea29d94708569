package common

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leaptable/internal/ui/resources"
)

// Page wraps body in the document shell. When updatesURL is set the page
// opens a long-lived SSE stream to it on load.
func Page(title, updatesURL string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw("<!doctype html>\n<html lang=\"en\"><head>")
		h.Raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Raw("<title>").Text(title + " - leaptable").Raw("</title>")
		h.Open("link", "").Attr("rel", "stylesheet").Attr("href", resources.StaticPath("app.css")).End()
		h.Open("script", "").Attr("type", "module").Attr("src", resources.DatastarScript).End().Close("script")
		h.Raw("</head>")

		h.Open("body", "")
		h.AttrIf(updatesURL != "", "data-init", "@get('"+updatesURL+"')")
		h.End()
		h.Component(ctx, body)
		h.Raw("</body></html>")
		return h.Err()
	})
}
