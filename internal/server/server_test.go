package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corekv/corekv/internal/core"
	"github.com/corekv/corekv/internal/protocol"
	"github.com/corekv/corekv/internal/stats"
)

func startServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr = ln.Addr().String()
	ln.Close()

	actor := core.Start()
	srv := New(addr, actor.Sender(), stats.New(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.ListenAndServe(ctx)
	}()
	waitForReady(t, addr, 3*time.Second)

	return addr, func() {
		cancel()
		<-done
		actor.Stop()
	}
}

func waitForReady(t *testing.T, addr string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server not ready on %s", addr)
}

type testConn struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

func dialServer(t *testing.T, addr string) *testConn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testConn{
		t:      t,
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

func (c *testConn) roundTrip(line string) core.Value {
	c.t.Helper()
	_, err := c.writer.WriteString(line + "\n")
	require.NoError(c.t, err)
	require.NoError(c.t, c.writer.Flush())
	val, err := protocol.ReadValue(c.reader)
	require.NoError(c.t, err)
	return val
}

func TestServerSetGet(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()
	c := dialServer(t, addr)

	assert.Equal(t, core.Ok(), c.roundTrip("SET a hello"))
	assert.Equal(t, core.String("hello"), c.roundTrip("GET a"))
	assert.Equal(t, core.Error("(nil)"), c.roundTrip("GET missing"))
}

func TestServerCounters(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()
	c := dialServer(t, addr)

	assert.Equal(t, core.Integer(1), c.roundTrip("INCR counter"))
	assert.Equal(t, core.Integer(2), c.roundTrip("INCR counter"))
	assert.Equal(t, core.Integer(12), c.roundTrip("INCR counter 10"))

	assert.Equal(t, core.Integer(-1), c.roundTrip("DECR counter2"))
	assert.Equal(t, core.Integer(-2), c.roundTrip("DECR counter2"))
	assert.Equal(t, core.Integer(-12), c.roundTrip("DECR counter2 10"))
}

func TestServerIncrOnStringValue(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()
	c := dialServer(t, addr)

	assert.Equal(t, core.Ok(), c.roundTrip("SET x v"))
	assert.Equal(t, core.Error("NaN"), c.roundTrip("INCR x"))
	assert.Equal(t, core.String("v"), c.roundTrip("GET x"))
}

func TestServerFlushAll(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()
	c := dialServer(t, addr)

	assert.Equal(t, core.Ok(), c.roundTrip("SET a 1"))
	assert.Equal(t, core.Ok(), c.roundTrip("SET b 2"))
	assert.Equal(t, core.Ok(), c.roundTrip("FLUSHALL"))
	assert.Equal(t, core.Error("(nil)"), c.roundTrip("GET a"))
	assert.Equal(t, core.Error("(nil)"), c.roundTrip("GET b"))
}

func TestServerUnknownCommand(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()
	c := dialServer(t, addr)

	assert.Equal(t, core.Error("Unknown core cmd"), c.roundTrip("PERSIST a"))
}

func TestServerConcurrentClients(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	const goroutines = 50
	const loops = 50

	var wg sync.WaitGroup
	errCh := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				errCh <- err
				return
			}
			defer conn.Close()
			reader := bufio.NewReader(conn)
			writer := bufio.NewWriter(conn)
			key := fmt.Sprintf("k:%d", id)
			for j := 0; j < loops; j++ {
				want := fmt.Sprintf("v:%d:%d", id, j)
				if err := send(writer, fmt.Sprintf("SET %s %s", key, want)); err != nil {
					errCh <- err
					return
				}
				if _, err := protocol.ReadValue(reader); err != nil {
					errCh <- err
					return
				}
				if err := send(writer, "GET "+key); err != nil {
					errCh <- err
					return
				}
				got, err := protocol.ReadValue(reader)
				if err != nil {
					errCh <- err
					return
				}
				if got != core.String(want) {
					errCh <- fmt.Errorf("key %s: got %v, want %q", key, got, want)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestServerClosesConnWhenDispatcherDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	actor := core.Start()
	srv := New(addr, actor.Sender(), stats.New(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.ListenAndServe(ctx) }()
	waitForReady(t, addr, 3*time.Second)

	c := dialServer(t, addr)
	assert.Equal(t, core.Ok(), c.roundTrip("SET a hello"))

	actor.Stop()

	// The next command cannot produce a value, so the server hangs up.
	_, err = c.writer.WriteString("GET a\n")
	require.NoError(t, err)
	require.NoError(t, c.writer.Flush())
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, err = protocol.ReadValue(c.reader)
	assert.Error(t, err)
}

func send(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line + "\n"); err != nil {
		return err
	}
	return w.Flush()
}

func TestAdminEndpoints(t *testing.T) {
	actor := core.Start()
	defer actor.Stop()
	srv := New("unused", actor.Sender(), stats.New(), zap.NewNop())

	ts := httptest.NewServer(srv.AdminHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Drive a few commands over websocket, then check they show up in /stats.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	wsRoundTrip := func(line, want string) {
		t.Helper()
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(line)))
		_, payload, err := ws.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, string(payload))
	}
	wsRoundTrip("SET a hello", "+OK\r\n")
	wsRoundTrip("GET a", "$5\r\nhello\r\n")
	wsRoundTrip("INCR counter 5", ":1\r\n")
	wsRoundTrip("GET missing", "-(nil)\r\n")

	resp, err = http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, int64(1), snap["sets"])
	assert.Equal(t, int64(2), snap["gets"])
	assert.Equal(t, int64(1), snap["incrs"])
	assert.Equal(t, int64(1), snap["hits"])
	assert.Equal(t, int64(1), snap["misses"])
}
