package render

import (
	"context"
	"fmt"
	"io"
)

// Surface is the host display surface the bridge drives: a browser-hosted
// environment able to load the WebMO rendering applets and execute script
// against them. Injection and evaluation are side effects on the host, not
// on this process.
type Surface interface {
	// InjectHTML pushes markup (script tags, hidden panels) into the host
	// document. The bridge calls this once per client lifetime.
	InjectHTML(ctx context.Context, html string) error

	// EvalScript executes a script fragment in the host document.
	EvalScript(ctx context.Context, script string) error
}

// WriterSurface emits injected markup and scripts to an io.Writer, for
// notebook-style frontends that relay raw display output to the browser.
type WriterSurface struct {
	W io.Writer
}

func (s WriterSurface) InjectHTML(ctx context.Context, html string) error {
	if _, err := io.WriteString(s.W, html); err != nil {
		return fmt.Errorf("render: writing injected markup: %w", err)
	}
	return nil
}

func (s WriterSurface) EvalScript(ctx context.Context, script string) error {
	if _, err := fmt.Fprintf(s.W, "<script>%s</script>", script); err != nil {
		return fmt.Errorf("render: writing script: %w", err)
	}
	return nil
}
