package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler manages graceful shutdown
type Handler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	cleanups map[int]func()
	nextID   int
	mu       sync.Mutex
	once     sync.Once
}

// New creates a new shutdown handler
func New() *Handler {
	return NewWithContext(context.Background())
}

// NewWithContext creates a handler whose context derives from parent.
func NewWithContext(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	return &Handler{
		ctx:      ctx,
		cancel:   cancel,
		cleanups: make(map[int]func()),
	}
}

// Context returns the shutdown context
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers a cleanup function to be called on shutdown.
// The returned release func unregisters it once the owner has cleaned up itself.
func (h *Handler) AddCleanup(fn func()) (release func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.cleanups[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.cleanups, id)
	}
}

// Listen starts listening for shutdown signals
func (h *Handler) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			h.Shutdown()
		case <-h.ctx.Done():
		}
		signal.Stop(sigChan)
	}()
}

// Shutdown cancels the context and runs pending cleanups. Only the first call has an effect.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		fns := make([]func(), 0, len(h.cleanups))
		for id := 0; id < h.nextID; id++ {
			if fn, ok := h.cleanups[id]; ok {
				fns = append(fns, fn)
			}
		}
		h.cleanups = make(map[int]func())
		h.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	})
}

// Wait waits for all work to complete
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Add increments the work counter
func (h *Handler) Add(delta int) {
	h.wg.Add(delta)
}

// Done decrements the work counter
func (h *Handler) Done() {
	h.wg.Done()
}
