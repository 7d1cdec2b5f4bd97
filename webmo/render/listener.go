package render

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// Callback ports are drawn from the unreserved 50000-60000 range so that
// concurrently running clients on one host do not collide.
const (
	callbackPortBase = 50000
	callbackPortSpan = 10000

	maxBindAttempts = 8
)

// messageQueue is the FIFO shared between the listener goroutine and the
// foreground rendezvous waiter. Appends and pops run on different
// execution contexts, so every access is mutex-guarded.
type messageQueue struct {
	mu   sync.Mutex
	msgs []string
}

func (q *messageQueue) push(msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
}

// pop removes and returns the oldest message.
func (q *messageQueue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.msgs) == 0 {
		return "", false
	}
	msg := q.msgs[0]
	q.msgs = q.msgs[1:]
	return msg, true
}

// listener is the local callback endpoint the injected script reports back
// to. It holds only the message queue, never the bridge that created it,
// so a lingering listener goroutine can never keep the client alive.
type listener struct {
	port int
	srv  *http.Server
}

// newListener binds a localhost HTTP server on a random port in the
// callback range and appends every POSTed message body to the queue.
func newListener(queue *messageQueue, logger *slog.Logger) (*listener, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.POST("/", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Warn("discarding unreadable callback message", slog.Any("error", err))
			c.Status(http.StatusBadRequest)
			return
		}
		queue.push(string(body))
		c.Status(http.StatusNoContent)
	})

	var ln net.Listener
	var port int
	var err error
	for attempt := 0; attempt < maxBindAttempts; attempt++ {
		port = callbackPortBase + rand.Intn(callbackPortSpan)
		ln, err = net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("render: binding callback listener: %w", err)
	}

	l := &listener{
		port: port,
		srv:  &http.Server{Handler: router},
	}
	go func() {
		if serveErr := l.srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Warn("callback listener stopped", slog.Any("error", serveErr))
		}
	}()

	logger.Debug("callback listener started", slog.Int("port", port))
	return l, nil
}

// close tears the listener down. Errors are swallowed: shutdown must never
// fail past client destruction.
func (l *listener) close() {
	_ = l.srv.Close()
}

// corsMiddleware allows the browser-hosted display surface, served from
// the WebMO origin, to POST callback messages to this localhost endpoint.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
