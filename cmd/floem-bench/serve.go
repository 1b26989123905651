package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/woodworthkyle/floem/pkg/reactive"
	"github.com/woodworthkyle/floem/pkg/reconcile"
	"github.com/woodworthkyle/floem/pkg/view"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		items    int
		churn    float64
		seed     int64
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and a structural-change feed for a live workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(addr, items, churn, seed, interval)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&items, "items", 50, "collection size")
	cmd.Flags().Float64Var(&churn, "churn", 0.1, "fraction of rows replaced per generation")
	cmd.Flags().Int64Var(&seed, "seed", 1, "workload RNG seed")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "time between generations")

	return cmd
}

// structureEvent is one entry in the WebSocket feed: the generation
// number and the child key order after the apply pass.
type structureEvent struct {
	Stack      string  `json:"stack"`
	Generation int     `json:"generation"`
	Children   int     `json:"children"`
	Keys       []int64 `json:"keys"`
}

// hub fans structure events out to connected WebSocket clients.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	conn.Close()
}

// broadcast sends an event to every client, dropping clients whose
// connection errors.
func (h *hub) broadcast(event structureEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func serve(addr string, items int, churn float64, seed int64, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	reg := prometheus.NewRegistry()
	metrics := reconcile.NewMetrics(reconcile.WithRegistry(reg))

	feed := newHub()
	defer feed.closeAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The workload loop owns all reactive state; reconciliation runs on
	// this goroutine only.
	go func() {
		root := reactive.NewScope(nil)
		defer root.Dispose()

		w := newWorkload(seed, items)
		rows := reactive.NewSignal(w.rows)
		queue := view.NewUpdateQueue()

		var stack *reconcile.Stack[row, int64]
		reactive.WithScope(root, func() {
			stack = reconcile.NewStack(
				func() []row { return rows.Get() },
				func(r row) int64 { return r.ID },
				newRowView,
				reconcile.WithQueue(queue),
				reconcile.WithMetrics(metrics),
				reconcile.WithLogger(logger),
				reconcile.WithTracer(reconcile.Tracer()),
				reconcile.WithDebugName("serve"),
			)
		})
		stack.Drain()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		generation := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				generation++
				rows.Set(w.next(churn))
				if stack.Tick() {
					var keys []int64
					stack.ForEachChild(func(v view.View) bool {
						keys = append(keys, v.(*rowView).row.ID)
						return false
					})
					feed.broadcast(structureEvent{
						Stack:      view.Name(stack),
						Generation: generation,
						Children:   stack.Len(),
						Keys:       keys,
					})
				}
			}
		}
	}()

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err)
			return
		}
		feed.add(conn)
		logger.Info("feed client connected", "remote", conn.RemoteAddr())

		// Reads are discarded; the feed is one-way. The read loop exists
		// to notice the client going away.
		go func() {
			defer feed.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
