// Package views renders the editor status page.
package views

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// PageData is everything the status page shows.
type PageData struct {
	PlanName    string
	NodeCount   int
	WallCount   int
	RoomCount   int
	ClientCount int
	Levels      []string
}

// StatusPage renders the editor landing page. Clients connect to
// /stream for the live patch feed; this page is the human-readable
// view of the same session.
func StatusPage(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html><html><head><title>Floor Plan Editor</title></head><body>"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<h1>Plan: %s</h1>", html.EscapeString(data.PlanName)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			"<ul><li>%d nodes</li><li>%d walls</li><li>%d rooms</li><li>%d connected clients</li></ul>",
			data.NodeCount, data.WallCount, data.RoomCount, data.ClientCount); err != nil {
			return err
		}
		if len(data.Levels) > 0 {
			if _, err := io.WriteString(w, "<h2>Levels</h2><ul>"); err != nil {
				return err
			}
			for _, lvl := range data.Levels {
				if _, err := fmt.Fprintf(w, "<li>%s</li>", html.EscapeString(lvl)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<p>Connect an editor client to <code>/stream</code>.</p></body></html>`); err != nil {
			return err
		}
		return nil
	})
}
