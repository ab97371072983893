package websocket

import (
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/metrics"
	"github.com/iamasit07/reversi-online/backend/pkg/uid"
)

const writeWait = 10 * time.Second

// Peer is one websocket connection. conn.WriteJSON is not safe for
// concurrent use, so every data frame goes through writeMu.
type Peer struct {
	ID      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func NewPeer(conn *websocket.Conn) *Peer {
	return &Peer{ID: uid.NewConnectionID(), conn: conn}
}

func (p *Peer) Send(env domain.Envelope) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(env)
}

// Ping is safe to call concurrently with Send.
func (p *Peer) Ping() error {
	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (p *Peer) Close() error {
	return p.conn.Close()
}

type member struct {
	peer *Peer
	user domain.User
}

// ConnectionManager tracks the live connection of every logged-in user.
type ConnectionManager struct {
	members map[int64]*member
	mu      sync.RWMutex // Protects the map itself
	logger  *zap.Logger
}

func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionManager{
		members: make(map[int64]*member),
		logger:  logger,
	}
}

// AddConnection registers peer for user. A previous connection of the same
// user is closed and returned; its game session is left alone.
func (cm *ConnectionManager) AddConnection(user domain.User, peer *Peer) *Peer {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var evicted *Peer
	if old, exists := cm.members[user.ID]; exists && old.peer != peer {
		evicted = old.peer
		evicted.Close()
		cm.logger.Info("evicted stale connection",
			zap.Int64("user_id", user.ID),
			zap.String("old_conn", evicted.ID),
			zap.String("new_conn", peer.ID))
	}

	cm.members[user.ID] = &member{peer: peer, user: user}
	metrics.ConnectedUsers.Set(float64(len(cm.members)))
	return evicted
}

// RemoveConnectionIfMatching removes the user only while peer is still the
// current connection. A torn-down stale connection must not remove the
// connection that replaced it. Reports whether anything was removed.
func (cm *ConnectionManager) RemoveConnectionIfMatching(userID int64, peer *Peer) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	current, exists := cm.members[userID]
	if !exists || current.peer != peer {
		return false
	}
	delete(cm.members, userID)
	metrics.ConnectedUsers.Set(float64(len(cm.members)))
	return true
}

// BroadcastMessage sends a message to all connected users
func (cm *ConnectionManager) BroadcastMessage(build func(recipient domain.User) (domain.Envelope, error)) {
	cm.mu.RLock()
	targets := make([]*member, 0, len(cm.members))
	for _, m := range cm.members {
		targets = append(targets, m)
	}
	cm.mu.RUnlock()

	for _, m := range targets {
		env, err := build(m.user)
		if err != nil {
			cm.logger.Error("failed to build broadcast", zap.Error(err))
			return
		}
		// one slow user must not block the others
		go func(m *member, env domain.Envelope) {
			if err := m.peer.Send(env); err != nil {
				cm.logger.Debug("broadcast write failed", zap.Int64("user_id", m.user.ID), zap.Error(err))
			}
		}(m, env)
	}
}

// Members lists connected users ordered by id.
func (cm *ConnectionManager) Members() []domain.User {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	users := make([]domain.User, 0, len(cm.members))
	for _, m := range cm.members {
		users = append(users, m.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.members)
}

// CloseAll closes every connection, used on shutdown.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for userID, m := range cm.members {
		m.peer.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		m.peer.Close()
		delete(cm.members, userID)
	}
	metrics.ConnectedUsers.Set(0)
}
