package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memPubSub 进程内发布/订阅，模拟 Redis
type memPubSub struct {
	mu       sync.Mutex
	handlers []func([]byte)
	ready    chan struct{}
}

func newMemPubSub() *memPubSub { return &memPubSub{ready: make(chan struct{})} }

func (m *memPubSub) Publish(_ context.Context, _ string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.handlers {
		h(payload)
	}
	return nil
}

func (m *memPubSub) Subscribe(ctx context.Context, _ string, handler func([]byte)) error {
	m.mu.Lock()
	m.handlers = append(m.handlers, handler)
	m.mu.Unlock()
	close(m.ready)
	<-ctx.Done()
	return nil
}

func TestRedisTransport_ForwardsToHub(t *testing.T) {
	ps := newMemPubSub()
	tr := NewRedisTransport(ps, "", zap.NewNop())
	hub := NewHub(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Forward(ctx, hub) }()
	<-ps.ready

	// 直接挂一个本地客户端以观察投递结果
	c := &client{hub: hub, send: make(chan []byte, 4), session: "s1"}
	hub.register(c)

	NewChannel(tr, "campaign", "s1").Step("Subject A")

	require.Len(t, c.send, 1)
	assert.JSONEq(t, `{"topic":"campaign:step","data":{"label":"Subject A"}}`, string(<-c.send))

	cancel()
	require.NoError(t, <-done)
}

func TestRedisTransport_DefaultChannel(t *testing.T) {
	tr := NewRedisTransport(newMemPubSub(), "", zap.NewNop())
	assert.Equal(t, DefaultRedisChannel, tr.channel)
}
