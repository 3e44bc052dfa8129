// Package progress 向单个订阅方推送长耗时操作（如批次发布）的进度事件。
package progress

import (
	"fmt"
	"sync"
)

// Transport 将事件投递给指定接收方；实现需并发安全
type Transport interface {
	Emit(topic, recipient string, payload any)
}

// Noop 丢弃所有事件
type Noop struct{}

func (Noop) Emit(string, string, any) {}

// 事件子主题
const (
	EventStart = "start"
	EventStep  = "step"
	EventEnd   = "end"
	EventError = "error"
)

// StartPayload 开始事件载荷
type StartPayload struct {
	Total int    `json:"total"`
	Type  string `json:"type"`
}

// StepPayload 单步完成事件载荷
type StepPayload struct {
	Label string `json:"label"`
}

// ErrorPayload 失败事件载荷
type ErrorPayload struct {
	Message string `json:"message"`
}

// Channel 一次操作的进度通道，事件主题为 "<Base>:<event>"
// Transport 为空或 Recipient 为空时所有方法均为空操作
type Channel struct {
	Base      string
	Recipient string
	transport Transport

	mu       sync.Mutex
	finished bool
}

// NewChannel 创建进度通道
func NewChannel(t Transport, base, recipient string) *Channel {
	return &Channel{Base: base, Recipient: recipient, transport: t}
}

func (c *Channel) enabled() bool {
	return c != nil && c.transport != nil && c.Recipient != ""
}

func (c *Channel) emit(event string, payload any) {
	c.transport.Emit(fmt.Sprintf("%s:%s", c.Base, event), c.Recipient, payload)
}

// Start 宣告总工作量
func (c *Channel) Start(total int) {
	if !c.enabled() {
		return
	}
	c.emit(EventStart, StartPayload{Total: total, Type: "initialized"})
}

// Step 报告完成一个工作单元
func (c *Channel) Step(label string) {
	if !c.enabled() {
		return
	}
	c.emit(EventStep, StepPayload{Label: label})
}

// End 报告成功结束；与 Error 互斥且只发送一次
func (c *Channel) End() {
	if !c.enabled() || !c.finish() {
		return
	}
	c.emit(EventEnd, struct{}{})
}

// Error 报告失败结束；与 End 互斥且只发送一次
func (c *Channel) Error(err error) {
	if !c.enabled() || !c.finish() {
		return
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.emit(EventError, ErrorPayload{Message: msg})
}

func (c *Channel) finish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return false
	}
	c.finished = true
	return true
}
