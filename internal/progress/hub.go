package progress

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Frame 推送给浏览器的消息帧
type Frame struct {
	Topic string `json:"topic"`
	Data  any    `json:"data,omitempty"`
}

// Hub 维护本实例上的 WebSocket 连接，按会话 ID 投递事件
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	lock    sync.RWMutex
	clients map[string]map[*client]struct{}
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session string
}

// NewHub 创建连接管理器
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域由 CORS 中间件与 JWT 把关
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger.Named("progress"),
		clients: make(map[string]map[*client]struct{}),
	}
}

// Emit 实现 Transport
func (h *Hub) Emit(topic, recipient string, payload any) {
	msg, err := json.Marshal(Frame{Topic: topic, Data: payload})
	if err != nil {
		h.logger.Warn("进度事件序列化失败", zap.String("topic", topic), zap.Error(err))
		return
	}
	h.deliver(recipient, msg)
}

// deliver 非阻塞投递；缓冲区满的慢连接直接丢弃该帧
func (h *Hub) deliver(recipient string, msg []byte) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	for c := range h.clients[recipient] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("进度连接缓冲区已满，丢弃消息", zap.String("session", recipient))
		}
	}
}

// Connections 当前连接数
func (h *Hub) Connections() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// ServeWS 将 HTTP 请求升级为 WebSocket；未携带 session 时分配新的会话 ID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		session = uuid.New().String()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), session: session}
	h.register(c)

	welcome, _ := json.Marshal(Frame{Topic: "welcome", Data: map[string]string{"session": session}})
	c.send <- welcome

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	set, ok := h.clients[c.session]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.session] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("进度连接已注册", zap.String("session", c.session))
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	set, ok := h.clients[c.session]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.clients, c.session)
	}
	h.logger.Debug("进度连接已注销", zap.String("session", c.session))
}

// readPump 仅处理心跳与关闭，客户端消息被忽略
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
