package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"nova-assistant/internal/domain"
)

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 1024
	queueSize     = 10
)

// HTTPSource receives recorded utterances (POST /audio) and already
// transcribed commands (POST /text) and queues them for the assistant.
type HTTPSource struct {
	server    *http.Server
	queue     *commandQueue
	limiter   *RateLimiter
	authToken string
	listening atomic.Bool
	logger    *slog.Logger
}

// NewHTTPSource limits command endpoints to ratePerMinute requests per client.
// A non-empty authToken is required on /text.
func NewHTTPSource(addr, authToken string, ratePerMinute int, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		queue:     newCommandQueue(queueSize),
		limiter:   NewRateLimiter(ratePerMinute, time.Minute),
		authToken: authToken,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /audio", h.limiter.Middleware(h.postAudio))
	mux.HandleFunc("POST /text", h.limiter.Middleware(h.withToken(h.postText)))
	mux.HandleFunc("GET /health", h.health)

	h.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Handler() http.Handler {
	return h.server.Handler
}

func (h *HTTPSource) Start(_ context.Context) error {
	if !h.listening.CompareAndSwap(false, true) {
		return nil
	}

	go func() {
		h.logger.Info("HTTP command server starting", "addr", h.server.Addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down and closes the queue. Pending NextCommand
// calls return an error afterwards.
func (h *HTTPSource) Stop() error {
	defer h.queue.close()

	if !h.listening.CompareAndSwap(true, false) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := h.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}
	return nil
}

func (h *HTTPSource) NextCommand(ctx context.Context) ([]byte, error) {
	return h.queue.pop(ctx)
}

// InjectAudio queues data as if it had been posted. Data is dropped when the
// queue is full or the source is stopped.
func (h *HTTPSource) InjectAudio(data []byte) {
	if !h.queue.push(data) {
		h.logger.Warn("dropping injected command", "bytes", len(data))
	}
}

func (h *HTTPSource) withToken(next http.HandlerFunc) http.HandlerFunc {
	if h.authToken == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != h.authToken {
			h.logger.Warn("unauthorized text command", "remote_addr", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (h *HTTPSource) postAudio(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r, maxAudioBytes)
	if !ok {
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	if !h.accept(w, data) {
		return
	}
	h.logger.Info("received audio via HTTP", "bytes", len(data))
	writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "received", Bytes: len(data)})
}

func (h *HTTPSource) postText(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r, maxTextBytes)
	if !ok {
		return
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	if !h.accept(w, []byte(domain.TextCommandPrefix+text)) {
		return
	}
	h.logger.Info("received text command via HTTP", "text", text)
	writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "received", Text: text})
}

func (h *HTTPSource) accept(w http.ResponseWriter, data []byte) bool {
	if h.queue.push(data) {
		return true
	}
	http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	return false
}

type acceptedResponse struct {
	Status string `json:"status"`
	Bytes  int    `json:"bytes,omitempty"`
	Text   string `json:"text,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Listening bool   `json:"listening"`
	Queued    int    `json:"queued"`
}

func (h *HTTPSource) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Listening: h.listening.Load(), Queued: h.queue.len()}

	code := http.StatusOK
	if !resp.Listening {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	defer r.Body.Close()

	data, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
