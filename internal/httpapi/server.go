package httpapi

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mzhao/synogpt/internal/config"
	"github.com/mzhao/synogpt/internal/conversation"
	"github.com/mzhao/synogpt/internal/events"
	"github.com/mzhao/synogpt/internal/observability"
)

// ackText is sent to the user before the completion call so the chat does
// not look stalled while the model is generating.
const ackText = "正在获取结果，请稍候..."

// MessageHandler resolves one inbound chat message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID, username, text string) conversation.Outcome
}

// Deliverer sends a text message to a chat user.
type Deliverer interface {
	Send(ctx context.Context, userID, text string) error
}

type Server struct {
	cfg      config.Config
	engine   MessageHandler
	sender   Deliverer
	hub      *events.Hub
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, engine MessageHandler, sender Deliverer, hub *events.Hub, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		engine:  engine,
		sender:  sender,
		hub:     hub,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browsers may tail relay events unless
				// explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/webhook", s.handleWebhook)
	r.Get("/v1/debug/events", s.handleDebugEvents)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondText(w, http.StatusOK, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondText(w, http.StatusOK, "ready")
}

// handleWebhook receives a Synology Chat outgoing-webhook event. The three
// outbound sends (ack, reply, usage) are independent single attempts; a
// failed ack never blocks the reply.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		s.countInbound("empty_body")
		respondText(w, http.StatusBadRequest, "empty request body")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.countInbound("bad_form")
		respondText(w, http.StatusBadRequest, "malformed form body")
		return
	}

	if r.PostFormValue("token") != s.cfg.SynologyWebhookToken {
		log.Printf("webhook rejected: invalid token")
		s.countInbound("invalid_token")
		respondText(w, http.StatusOK, "Invalid token")
		return
	}

	userID := strings.TrimSpace(r.PostFormValue("user_id"))
	username := strings.TrimSpace(r.PostFormValue("username"))
	text := r.PostFormValue("text")
	s.countInbound("accepted")

	ctx := r.Context()
	s.deliver(ctx, userID, ackText)

	out := s.engine.HandleMessage(ctx, userID, username, text)
	s.deliver(ctx, userID, out.Text)
	s.deliver(ctx, userID, out.Usage)

	respondText(w, http.StatusOK, "Message processed")
}

func (s *Server) deliver(ctx context.Context, userID, text string) {
	if text == "" {
		return
	}
	if err := s.sender.Send(ctx, userID, text); err != nil {
		log.Printf("delivery to user %s failed: %v", userID, err)
		s.countDelivery("failed")
		if s.hub != nil {
			s.hub.Publish(events.TypeDeliveryFailed, userID, err.Error())
		}
		return
	}
	s.countDelivery("ok")
}

// handleDebugEvents upgrades to a websocket and streams relay events until
// the client goes away.
func (s *Server) handleDebugEvents(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondText(w, http.StatusNotImplemented, "event hub not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	feed, cancelFeed := s.hub.Subscribe()
	defer cancelFeed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read loop only notices the peer closing.
	go func() {
		defer cancel()
		conn.SetReadLimit(1 << 10)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-feed:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}
}

func (s *Server) countInbound(result string) {
	if s.metrics != nil {
		s.metrics.InboundRequests.WithLabelValues(result).Inc()
	}
}

func (s *Server) countDelivery(result string) {
	if s.metrics != nil {
		s.metrics.Deliveries.WithLabelValues(result).Inc()
	}
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
