package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestFunc_OnlyLastCallRuns(t *testing.T) {
	var r recorder
	d := New(20*time.Millisecond, r.record)

	d.Call("1")
	d.Call("12")
	d.Call("123")
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return len(r.get()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, []string{"123"}, r.get())
	assert.False(t, d.Pending())
}

func TestFunc_CallResetsTimer(t *testing.T) {
	var r recorder
	d := New(50*time.Millisecond, r.record)

	d.Call("a")
	time.Sleep(30 * time.Millisecond)
	d.Call("b")
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first call, but only 30ms after the last
	assert.Empty(t, r.get())

	assert.Eventually(t, func() bool { return len(r.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b"}, r.get())
}

func TestFunc_Cancel(t *testing.T) {
	var r recorder
	d := New(10*time.Millisecond, r.record)

	d.Cancel() // nothing pending
	d.Call("x")
	d.Cancel()
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, r.get())

	d.Call("y")
	assert.Eventually(t, func() bool { return len(r.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"y"}, r.get())
}

func TestFunc_Flush(t *testing.T) {
	var r recorder
	d := New(time.Hour, r.record)

	assert.False(t, d.Flush())

	d.Call("1")
	d.Call("2")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"2"}, r.get())
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
}

func TestFunc_StaleTimerIsDiscarded(t *testing.T) {
	var r recorder
	d := New(time.Hour, r.record)

	d.Call("old")
	gen := d.gen
	d.Cancel()

	// simulate a timer that fired before Cancel could stop it
	d.fire(gen)
	assert.Empty(t, r.get())
}
