// Package webhook terminates Meta's webhook traffic: the subscription
// handshake and the message notifications for both chat platforms. The
// endpoint acks every well-received notification with 200 so the platform
// does not redeliver; event failures surface through the engine's own
// alerting, not through the HTTP status.
package webhook

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/assistant"
)

const ackBody = "EVENT_RECEIVED"

// EventHandler processes one normalized inbound event to completion,
// including sending the reply.
type EventHandler interface {
	HandleEvent(ctx context.Context, event assistant.Event) error
}

// Server holds the webhook endpoints and their shared verification token.
type Server struct {
	verifyToken string
	engine      EventHandler
	logger      *zap.Logger
}

func NewServer(logger *zap.Logger, verifyToken string, engine EventHandler) *Server {
	return &Server{
		verifyToken: verifyToken,
		engine:      engine,
		logger:      logger,
	}
}

// Routes builds the HTTP handler: the webhook pair plus a heartbeat.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Get("/webhook", s.verify)
	r.Post("/webhook", s.receive)

	return r
}

// verify answers Meta's subscription handshake: echo the challenge when the
// presented token matches, 403 otherwise. The presented token is never
// logged.
func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")

	if mode == "subscribe" && token != "" && token == s.verifyToken {
		s.logger.Info("webhook subscription verified")
		io.WriteString(w, q.Get("hub.challenge"))
		return
	}

	s.logger.Warn("webhook verification rejected", zap.String("mode", mode))
	http.Error(w, "verification failed", http.StatusForbidden)
}

// receive handles a notification POST. Every event in the payload is run to
// completion before the ack; a failed event is logged and the rest still
// run, the engine has already alerted operations about it.
func (s *Server) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Warn("reading webhook body", zap.Error(err))
		io.WriteString(w, ackBody)
		return
	}

	for _, event := range parseEvents(body, s.logger) {
		if err := s.engine.HandleEvent(r.Context(), event); err != nil {
			s.logger.Error("handling webhook event",
				zap.String("channel", string(event.Channel)),
				zap.Error(err),
			)
		}
	}

	io.WriteString(w, ackBody)
}

// requestLogger logs served requests through the service logger. Only the
// path is logged: the verification query string carries the token.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
