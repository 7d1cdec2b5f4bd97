// Package render coordinates property rendering with a browser-hosted
// display surface. The bridge injects the WebMO rendering applets into the
// host document, dispatches control code per render request, and
// rendezvouses with the asynchronous image payload the surface posts back
// to a local callback listener.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chemtools/webmo-go/webmo/result"
)

// minSupportedMajor is the first WebMO major version whose display surface
// carries the jupyter_moledit callback API.
const minSupportedMajor = 24

// Rendezvous cadence: the message queue is polled once per tick, up to
// maxTicks ticks.
const (
	defaultTick     = time.Second
	defaultMaxTicks = 60
)

// ErrBridgeClosed is returned for render calls after Close.
var ErrBridgeClosed = errors.New("render: bridge is closed")

// ServerInfo is the slice of the WebMO status document the bridge needs.
type ServerInfo struct {
	Version  string
	HTMLBase string // base URL of the static javascript assets
	CGIBase  string // base URL of the CGI endpoints
}

// Service is the authenticated-session surface the bridge renders through.
// *webmo.Client implements it.
type Service interface {
	ServerInfo(ctx context.Context) (ServerInfo, error)
	JobGeometryDocument(ctx context.Context, jobNumber int) ([]byte, error)
	JobResults(ctx context.Context, jobNumber int) (*result.Document, error)
}

// Bridge drives one display surface on behalf of one client. Render calls
// are serialized: the rendezvous pairs one dispatched request with exactly
// one callback message, so requests must not interleave.
type Bridge struct {
	svc     Service
	surface Surface
	logger  *slog.Logger

	tick     time.Duration
	maxTicks int

	mu          sync.Mutex
	queue       *messageQueue
	ln          *listener
	injected    bool
	unavailable bool
	closed      bool
}

// NewBridge creates a bridge over the given session and display surface.
// Injection and the callback listener are set up lazily on the first
// render call.
func NewBridge(svc Service, surface Surface, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		svc:      svc,
		surface:  surface,
		logger:   logger,
		tick:     defaultTick,
		maxTicks: defaultMaxTicks,
	}
}

// Render displays the named property of a job on the surface, captures the
// resulting image through the callback listener and returns it decoded.
//
// A remote version below the feature floor permanently disables the bridge
// (ErrFeatureUnavailable). A rendezvous that sees no message within the
// ceiling returns ErrTimeout; the call is safely retryable.
func (b *Bridge) Render(ctx context.Context, jobNumber int, propertyName string, opts *Options) (*EmbeddedImage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBridgeClosed
	}
	if b.unavailable {
		return nil, ErrFeatureUnavailable
	}

	spec, ok := properties[propertyName]
	if !ok {
		return nil, &InvalidPropertyError{Name: propertyName}
	}

	o := opts.normalized()
	if o.PropertyIndex <= 0 {
		return nil, fmt.Errorf("render: invalid property index %d", o.PropertyIndex)
	}

	if err := b.ensureInjected(ctx); err != nil {
		return nil, err
	}
	if err := b.ensureListener(); err != nil {
		return nil, err
	}

	script, err := b.buildScript(ctx, jobNumber, spec, o)
	if err != nil {
		return nil, err
	}

	if err := b.surface.EvalScript(ctx, wrapWhenReady(script)); err != nil {
		return nil, fmt.Errorf("render: dispatching control code: %w", err)
	}

	return b.await(ctx)
}

// Close shuts the callback listener down. It never returns an error:
// teardown may race with re-construction in the host environment.
//
// Close does not interrupt an in-flight Render; it waits behind it, up to
// the full rendezvous ceiling. To abort a render early, cancel the context
// passed to Render.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.ln != nil {
		b.ln.close()
		b.ln = nil
	}
}

// ensureInjected performs the once-per-lifetime version check and script
// injection. A version below the floor disables the bridge permanently;
// injection is never re-attempted afterwards.
func (b *Bridge) ensureInjected(ctx context.Context) error {
	if b.injected {
		return nil
	}

	info, err := b.svc.ServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("render: querying server version: %w", err)
	}
	major, err := strconv.Atoi(strings.SplitN(info.Version, ".", 2)[0])
	if err != nil {
		return fmt.Errorf("render: unparsable server version %q: %w", info.Version, err)
	}
	if major < minSupportedMajor {
		b.logger.Warn("remote rendering unavailable",
			slog.String("server_version", info.Version),
			slog.Int("required_major", minSupportedMajor),
		)
		b.unavailable = true
		return ErrFeatureUnavailable
	}

	if err := b.surface.InjectHTML(ctx, bootstrapHTML(info.HTMLBase, info.CGIBase)); err != nil {
		return fmt.Errorf("render: injecting display bootstrap: %w", err)
	}
	b.injected = true
	return nil
}

// ensureListener lazily binds the callback listener shared by all render
// calls of this bridge.
func (b *Bridge) ensureListener() error {
	if b.ln != nil {
		return nil
	}
	b.queue = &messageQueue{}
	ln, err := newListener(b.queue, b.logger)
	if err != nil {
		return err
	}
	b.ln = ln
	return nil
}

// buildScript assembles the control-code string for one request from the
// job's geometry, its results document and the property table row.
func (b *Bridge) buildScript(ctx context.Context, jobNumber int, spec propertySpec, o Options) (string, error) {
	geometry, err := b.svc.JobGeometryDocument(ctx, jobNumber)
	if err != nil {
		return "", err
	}
	// the geometry document travels inside a script string literal
	geometryJSON := strings.ReplaceAll(string(geometry), `\`, `\\`)

	doc, err := b.svc.JobResults(ctx, jobNumber)
	if err != nil {
		return "", err
	}

	sb := &scriptBuilder{}
	sb.setMoleditSize(o.Width, o.Height)
	sb.setMoleditBackground(o.Background[0], o.Background[1], o.Background[2])
	sb.setMoleditGeometry(geometryJSON)

	index := o.PropertyIndex
	if spec.surface {
		// the renderer requires index 0 for surface kinds
		index = 0
	}

	req := &renderRequest{
		b:     sb,
		doc:   doc,
		opts:  o,
		job:   jobNumber,
		index: index,
		port:  b.ln.port,
	}
	if err := spec.compose(req); err != nil {
		return "", err
	}

	// Wavefunction kinds trigger the screenshot from the renderer's own
	// completion callback; everything else does it here.
	if !spec.wavefunction {
		if spec.spectrum {
			if o.XRange != nil {
				sb.setXRange(o.XRange[0], o.XRange[1])
			}
			if o.YRange != nil {
				sb.setYRange(o.YRange[0], o.YRange[1])
			}
			sb.displayDatagrapherScreenshot(b.ln.port)
		} else {
			sb.rotateMoleditView(o.Rotate[0], o.Rotate[1], o.Rotate[2])
			sb.displayMoleditScreenshot(b.ln.port, o.Transparent)
		}
	}

	return sb.String(), nil
}

// await polls the callback queue once per tick until a message arrives or
// the ceiling is reached. Messages are consumed strictly FIFO.
func (b *Bridge) await(ctx context.Context) (*EmbeddedImage, error) {
	for i := 0; i < b.maxTicks; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.tick):
		}
		if msg, ok := b.queue.pop(); ok {
			return decodePayload(msg)
		}
	}

	b.logger.Warn("timed out waiting for display surface response",
		slog.Int("ticks", b.maxTicks),
		slog.Duration("tick", b.tick),
	)
	return nil, ErrTimeout
}
