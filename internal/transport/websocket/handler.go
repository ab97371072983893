package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/metrics"
	"github.com/iamasit07/reversi-online/backend/internal/msgcat"
	"github.com/iamasit07/reversi-online/backend/internal/service/game"
	"github.com/iamasit07/reversi-online/backend/internal/service/session"
	"github.com/iamasit07/reversi-online/backend/pkg/useragent"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// ResetRecorder is the synchronous part of the persistence hook.
type ResetRecorder interface {
	Reset(ctx context.Context, userID int64, at time.Time) (int64, error)
}

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	AuthService    *session.AuthService
	Recorder       ResetRecorder
	Messages       *msgcat.Catalog
	Upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewHandler creates a new WebSocket handler with dependencies. An empty
// allowedOrigins list accepts any origin.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, as *session.AuthService, rec ResetRecorder, messages *msgcat.Catalog, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		AuthService:    as,
		Recorder:       rec,
		Messages:       messages,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	peer := NewPeer(conn)
	h.logger.Debug("connection opened",
		zap.String("conn", peer.ID),
		zap.String("ip", useragent.ClientIP(r)),
		zap.String("device", useragent.Device(r.UserAgent())))
	h.handleConnection(r.Context(), peer)
}

// connState is what one connection knows about its caller.
type connState struct {
	peer     *Peer
	identity *session.Identity
	logger   *zap.Logger
}

func (s *connState) user() *domain.User {
	if s.identity == nil {
		return nil
	}
	return &domain.User{ID: s.identity.UserID, Name: s.identity.Username}
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(ctx context.Context, peer *Peer) {
	state := &connState{peer: peer, logger: h.logger.With(zap.String("conn", peer.ID))}
	conn := peer.conn

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Keep-alive pinger
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := peer.Ping(); err != nil {
					return
				}
			}
		}
	}()

	defer func() {
		close(done)
		h.release(state)
		peer.Close()
		state.logger.Debug("connection closed")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				state.logger.Info("client disconnected unexpectedly", zap.Error(err))
			}
			return
		}

		var env domain.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.sendError(state, domain.ErrMalformedPayload, "")
			return
		}

		metrics.MessagesHandled.WithLabelValues(string(env.Type)).Inc()
		if !h.processMessage(ctx, state, env) {
			return
		}
	}
}

// release drops the user's connection and session, unless a newer
// connection for the same user has taken over.
func (h *Handler) release(state *connState) {
	if state.identity == nil {
		return
	}
	userID := state.identity.UserID
	if !h.ConnManager.RemoveConnectionIfMatching(userID, state.peer) {
		state.logger.Debug("stale connection closed, session kept", zap.Int64("user_id", userID))
		return
	}
	h.SessionManager.Remove(userID)
	h.broadcastMembers()
	state.logger.Info("user left", zap.Int64("user_id", userID))
}

// processMessage routes one envelope. It returns false when the connection
// must be closed.
func (h *Handler) processMessage(ctx context.Context, state *connState, env domain.Envelope) bool {
	switch env.Type {
	case domain.MsgProfile:
		return h.handleProfile(ctx, state, env)
	case domain.MsgMembers, domain.MsgInit, domain.MsgPlay, domain.MsgUndo,
		domain.MsgRedo, domain.MsgQuit, domain.MsgReset:
	default:
		h.sendError(state, domain.ErrUnknownMessage, string(env.Type))
		return false
	}

	if state.identity == nil {
		h.sendError(state, game.ErrNotAuthenticated, "")
		return true
	}
	userID := state.identity.UserID

	switch env.Type {
	case domain.MsgMembers:
		h.reply(state, domain.MsgMembers, domain.Members{Members: h.ConnManager.Members()})

	case domain.MsgInit:
		var cfg domain.GameConfig
		if err := env.Decode(&cfg); err != nil {
			h.sendError(state, err, string(env.Type))
			return false
		}
		_, snap, err := h.SessionManager.Init(userID, state.identity.Username, cfg)
		if err != nil {
			h.sendError(state, err, "")
			return true
		}
		h.reply(state, domain.MsgGameInfo, snap.GameInfo())

	case domain.MsgPlay:
		var move domain.MoveRequest
		if err := env.Decode(&move); err != nil {
			h.sendError(state, err, string(env.Type))
			return false
		}
		gs, err := h.SessionManager.Get(userID)
		if err != nil {
			h.sendError(state, err, "")
			return true
		}
		snap, err := gs.Play(move)
		if err != nil {
			h.sendError(state, err, "")
			return true
		}
		h.reply(state, domain.MsgGameInfo, snap.GameInfo())

	case domain.MsgUndo, domain.MsgRedo:
		gs, err := h.SessionManager.Get(userID)
		if err != nil {
			h.sendError(state, err, "")
			return true
		}
		var snap domain.Snapshot
		if env.Type == domain.MsgUndo {
			snap = gs.Undo()
		} else {
			snap = gs.Redo()
		}
		h.reply(state, domain.MsgGameInfo, snap.GameInfo())

	case domain.MsgReset:
		count, err := h.Recorder.Reset(ctx, userID, time.Now())
		if err != nil {
			state.logger.Error("reset failed", zap.Int64("user_id", userID), zap.Error(err))
			h.sendError(state, err, "")
			return true
		}
		h.reply(state, domain.MsgReset, domain.ResetAck{Count: count})

	case domain.MsgQuit:
		h.SessionManager.Remove(userID)
		h.AuthService.Logout(ctx, state.identity.SessionID)
		return false
	}
	return true
}

func (h *Handler) handleProfile(ctx context.Context, state *connState, env domain.Envelope) bool {
	var req domain.ProfileRequest
	if err := env.Decode(&req); err != nil {
		h.sendError(state, err, string(env.Type))
		return false
	}

	identity, err := h.AuthService.Login(ctx, req.Name, req.Token)
	if err != nil {
		state.logger.Info("profile rejected", zap.Error(err))
		h.sendError(state, err, "")
		return true
	}

	// the same socket logging in as someone else gives up its old identity
	if state.identity != nil && state.identity.UserID != identity.UserID {
		h.release(state)
	}
	state.identity = identity
	state.logger = state.logger.With(zap.Int64("user_id", identity.UserID))

	if evicted := h.ConnManager.AddConnection(*state.user(), state.peer); evicted != nil {
		state.logger.Info("replaced previous connection", zap.String("old_conn", evicted.ID))
	}

	h.reply(state, domain.MsgProfile, domain.Profile{
		ID:    identity.UserID,
		Name:  identity.Username,
		Token: identity.Token,
	})
	h.broadcastMembers()
	return true
}

func (h *Handler) reply(state *connState, t domain.MessageType, content any) {
	env, err := domain.NewEnvelope(t, state.user(), content)
	if err != nil {
		state.logger.Error("failed to encode reply", zap.String("type", string(t)), zap.Error(err))
		return
	}
	if err := state.peer.Send(env); err != nil {
		state.logger.Debug("write failed", zap.String("type", string(t)), zap.Error(err))
	}
}

func (h *Handler) sendError(state *connState, err error, detail string) {
	payload := h.errorPayload(err, detail)
	metrics.MessageErrors.WithLabelValues(string(payload.Code)).Inc()
	h.reply(state, domain.MsgError, payload)
}

func (h *Handler) errorPayload(err error, detail string) domain.ErrorPayload {
	var code domain.ErrorCode
	var key string
	var data any

	switch {
	case errors.Is(err, domain.ErrUnknownMessage), errors.Is(err, domain.ErrMalformedPayload):
		code, key = domain.CodeProtocol, "error.protocol"
		if detail == "" {
			detail = err.Error()
		}
		data = map[string]string{"Detail": detail}
	case errors.Is(err, domain.ErrIllegalMove):
		code, key = domain.CodeIllegalMove, "error.illegal_move"
	case errors.Is(err, domain.ErrInvalidBoardSize):
		code, key = domain.CodeInvalidConfig, "error.invalid_config"
		data = map[string]int{"Min": domain.MinBoardSize, "Max": domain.MaxBoardSize}
	case errors.Is(err, game.ErrSessionNotFound):
		code, key = domain.CodeSessionNotFound, "error.session_not_found"
	case errors.Is(err, game.ErrNotAuthenticated):
		code, key = domain.CodeUnauthenticated, "error.unauthenticated"
	case errors.Is(err, session.ErrInvalidName):
		code, key = domain.CodeUnauthenticated, "error.invalid_name"
	case errors.Is(err, session.ErrInvalidToken), errors.Is(err, session.ErrSessionRevoked):
		code, key = domain.CodeUnauthenticated, "error.invalid_token"
	default:
		code, key = domain.CodeInternal, "error.internal"
	}

	return domain.ErrorPayload{Code: code, Message: h.Messages.Text(key, data)}
}

func (h *Handler) broadcastMembers() {
	members := domain.Members{Members: h.ConnManager.Members()}
	h.ConnManager.BroadcastMessage(func(recipient domain.User) (domain.Envelope, error) {
		return domain.NewEnvelope(domain.MsgMembers, &recipient, members)
	})
}
