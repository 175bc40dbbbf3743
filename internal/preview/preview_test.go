package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

func TestDebouncer_TrailingEdge(t *testing.T) {
	clk := &manualClock{}
	d := NewDebouncer(300*time.Millisecond, clk)

	var got []string
	for _, v := range []string{"B", "Bi", "Bis", "Bist", "Bistro"} {
		v := v
		d.Trigger("headline", func() { got = append(got, v) })
		clk.Advance(100 * time.Millisecond)
	}
	if len(got) != 0 {
		t.Fatalf("fired during burst: %v", got)
	}
	clk.Advance(199 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired before the quiet period elapsed: %v", got)
	}
	clk.Advance(time.Millisecond)
	if len(got) != 1 || got[0] != "Bistro" {
		t.Fatalf("got %v, want [Bistro]", got)
	}
	if d.Pending() != 0 {
		t.Fatalf("pending = %d after fire", d.Pending())
	}
}

func TestDebouncer_KeysIndependent(t *testing.T) {
	clk := &manualClock{}
	d := NewDebouncer(0, clk)
	if d.Delay() != DefaultDelay {
		t.Fatalf("delay = %v, want default", d.Delay())
	}

	fired := map[string]int{}
	d.Trigger("a", func() { fired["a"]++ })
	clk.Advance(200 * time.Millisecond)
	d.Trigger("b", func() { fired["b"]++ })
	clk.Advance(100 * time.Millisecond)
	if fired["a"] != 1 || fired["b"] != 0 {
		t.Fatalf("after 300ms: %v", fired)
	}
	clk.Advance(200 * time.Millisecond)
	if fired["b"] != 1 {
		t.Fatalf("b never fired: %v", fired)
	}
}

func TestDebouncer_CancelAndStop(t *testing.T) {
	clk := &manualClock{}
	d := NewDebouncer(300*time.Millisecond, clk)

	n := 0
	d.Trigger("a", func() { n++ })
	d.Trigger("b", func() { n++ })
	d.Cancel("a")
	if d.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", d.Pending())
	}
	d.CancelAll()
	clk.Advance(time.Second)
	if n != 0 {
		t.Fatalf("cancelled calls fired %d times", n)
	}

	d.Stop()
	d.Trigger("c", func() { n++ })
	clk.Advance(time.Second)
	if n != 0 || d.Pending() != 0 {
		t.Fatalf("trigger after Stop was scheduled")
	}
}

func TestDebouncer_RealClock(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, nil)
	done := make(chan string, 1)
	d.Trigger("k", func() { done <- "first" })
	d.Trigger("k", func() { done <- "second" })
	select {
	case v := <-done:
		if v != "second" {
			t.Fatalf("got %q, want second", v)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	d.Stop()
}

func TestBridge_PerFieldLastValue(t *testing.T) {
	clk := &manualClock{}
	var got []Update
	b := NewBridge(300*time.Millisecond, clk, func(u Update) { got = append(got, u) })

	b.Push(Update{SectionID: "7", Key: "headline", Value: "Bi"})
	b.Push(Update{SectionID: "7", Key: "price", Value: "12"})
	b.Push(Update{SectionID: "7", Key: "headline", Value: "Bistro"})
	if b.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", b.Pending())
	}
	clk.Advance(300 * time.Millisecond)

	vals := map[string]string{}
	for _, u := range got {
		vals[u.Key] = u.Value
	}
	if len(got) != 2 || vals["headline"] != "Bistro" || vals["price"] != "12" {
		t.Fatalf("got %+v", got)
	}
}

func TestBridge_CancelOnRebind(t *testing.T) {
	clk := &manualClock{}
	n := 0
	b := NewBridge(300*time.Millisecond, clk, func(Update) { n++ })
	b.Push(Update{SectionID: "7", Key: "headline", Value: "stale"})
	b.Cancel()
	clk.Advance(time.Second)
	if n != 0 {
		t.Fatalf("stale update delivered after Cancel")
	}

	var nilBridge *Bridge
	nilBridge.Push(Update{})
	nilBridge.Cancel()
	nilBridge.Close()
}

func TestHub_PublishFanOut(t *testing.T) {
	h := NewHub(1, zap.NewNop())
	a, unsubA := h.Subscribe("trattoria")
	_, unsubB := h.Subscribe("trattoria")
	other, unsubO := h.Subscribe("other")
	defer unsubO()

	if n := h.Publish(Update{Site: "trattoria", Key: "headline", Value: "x"}); n != 2 {
		t.Fatalf("delivered to %d, want 2", n)
	}
	// Buffer of one: the second publish is dropped, not blocked.
	if n := h.Publish(Update{Site: "trattoria", Key: "headline", Value: "y"}); n != 0 {
		t.Fatalf("full subscribers accepted %d", n)
	}
	if u := <-a; u.Value != "x" {
		t.Fatalf("a got %q", u.Value)
	}
	select {
	case u := <-other:
		t.Fatalf("other site received %+v", u)
	default:
	}

	unsubA()
	unsubA()
	unsubB()
	if h.Subscribers("trattoria") != 0 {
		t.Fatalf("subscribers left after unsubscribe")
	}
}

func TestHub_ServeWS(t *testing.T) {
	h := NewHub(4, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, "trattoria")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	var msg Message
	if err := wsjson.Read(ctx, ws, &msg); err != nil || msg.Type != "ready" {
		t.Fatalf("ready: %+v, %v", msg, err)
	}

	h.Publish(Update{Site: "trattoria", SectionID: "7", Key: "headline", Value: "Bistro", HTML: "<h1>Bistro</h1>"})
	if err := wsjson.Read(ctx, ws, &msg); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if msg.Type != "update" || msg.Update == nil || msg.Update.Value != "Bistro" || msg.Update.SectionID != "7" {
		t.Fatalf("unexpected message %+v", msg)
	}

	ws.Close(websocket.StatusNormalClosure, "done")
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers("trattoria") != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if h.Subscribers("trattoria") != 0 {
		t.Fatalf("subscriber not released after close")
	}
}
