package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id   int64
	mu   sync.Mutex
	got  []string
	done chan struct{}
	once sync.Once
}

func newFakeConn(id int64) *fakeConn {
	return &fakeConn{id: id, done: make(chan struct{})}
}

func (c *fakeConn) ID() int64 { return c.id }
func (c *fakeConn) SetProperty(string, any) {}
func (c *fakeConn) GetProperty(string) any { return nil }
func (c *fakeConn) RemoveProperty(string) {}
func (c *fakeConn) Addr() string { return "fake" }
func (c *fakeConn) Done() <-chan struct{} { return c.done }
func (c *fakeConn) Close() { c.once.Do(func() { close(c.done) }) }
func (c *fakeConn) Push(name string, _ any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, name)
	return true
}

func (c *fakeConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func TestHub_只推送给订阅者(t *testing.T) {
	h := NewHub()
	a, b := newFakeConn(1), newFakeConn(2)
	h.Register(a)
	h.Register(b)
	require.True(t, h.Subscribe(a, "frame"))

	assert.Equal(t, 1, h.Broadcast("frame", "world.frame", nil))
	assert.Equal(t, []string{"world.frame"}, a.received())
	assert.Empty(t, b.received())

	h.Unsubscribe(a, "frame")
	assert.Equal(t, 0, h.Broadcast("frame", "world.frame", nil))
}

func TestHub_未登记连接不能订阅(t *testing.T) {
	h := NewHub()
	assert.False(t, h.Subscribe(newFakeConn(9), "frame"))
}

func TestHub_连接关闭后自动注销(t *testing.T) {
	h := NewHub()
	a := newFakeConn(1)
	h.Register(a)
	h.Subscribe(a, "frame")
	require.Equal(t, 1, h.Count())

	a.Close()
	require.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.Subscribers("frame"))
}
