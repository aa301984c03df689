package session_test

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/vektorlab/chwire/block"
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/protocol"
	"github.com/vektorlab/chwire/session"
	"github.com/vektorlab/chwire/wire"
)

// listenFake starts a one-shot TCP listener that drives handler
// against the accepted connection, returning the chosen host/port.
func listenFake(t *testing.T, handler func(conn net.Conn)) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		ln.Close()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func serveHandshake(r *wire.Reader, w *wire.Writer) error {
	if _, err := r.Uvarint(); err != nil {
		return err
	}
	r.String()
	r.Uvarint()
	r.Uvarint()
	r.Uvarint()
	r.String()
	r.String()
	r.String()

	w.PutUvarint(protocol.ServerHello)
	w.PutString("chwire-test-server")
	w.PutUvarint(24)
	w.PutUvarint(3)
	w.PutUvarint(uint64(protocol.ClientRevision))
	w.PutString("UTC")
	w.PutString("test")
	w.PutUvarint(1)
	return w.Flush()
}

func TestDialHandshake(t *testing.T) {
	t.Parallel()

	host, port := listenFake(t, func(conn net.Conn) {
		r := wire.NewReader(bufio.NewReader(conn))
		w := wire.NewWriter(bufio.NewWriter(conn))
		serveHandshake(r, w)
		time.Sleep(50 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := session.Dial(ctx, session.Settings{Host: host, Port: port, ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	if s.State() != session.StateIdle {
		t.Errorf("State() = %v, want Idle", s.State())
	}
	if s.Info().Name != "chwire-test-server" {
		t.Errorf("Info().Name = %q, want chwire-test-server", s.Info().Name)
	}
}

func TestQueryFlow(t *testing.T) {
	t.Parallel()

	host, port := listenFake(t, func(conn net.Conn) {
		r := wire.NewReader(bufio.NewReader(conn))
		w := wire.NewWriter(bufio.NewWriter(conn))
		if err := serveHandshake(r, w); err != nil {
			return
		}

		r.Uvarint() // ClientQuery
		r.String()  // id
		r.String()  // initial address
		r.Byte()    // query kind
		r.String()  // os user
		r.String()  // hostname
		r.String()  // program
		r.Uvarint() // client revision
		r.String()  // settings terminator
		r.Uvarint() // stage
		r.Bool()    // compression
		r.String()  // sql
		r.Uvarint() // ClientData id
		block.Decode(r)

		typ, _ := chtype.Parse("UInt8")
		b := block.New()
		b.AddColumn("one", typ)
		b.AppendRow([]any{uint8(1)})
		w.PutUvarint(protocol.ServerData)
		b.Encode(w)
		w.PutUvarint(protocol.ServerEndOfStream)
		w.Flush()
		time.Sleep(50 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := session.Dial(ctx, session.Settings{Host: host, Port: port, ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	result, err := s.StartQuery(session.NewQuery("SELECT 1"))
	if err != nil {
		t.Fatalf("StartQuery: %v", err)
	}

	b, err := result.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if b == nil || b.NumRows() != 1 {
		t.Fatalf("Next() block = %v", b)
	}

	b2, err := result.Next()
	if err != nil {
		t.Fatalf("Next (EndOfStream): %v", err)
	}
	if b2 != nil {
		t.Fatalf("Next() after EndOfStream = %v, want nil", b2)
	}
	if s.State() != session.StateIdle {
		t.Errorf("State() after EndOfStream = %v, want Idle", s.State())
	}
}

func TestSessionBusyRejectsConcurrentQuery(t *testing.T) {
	t.Parallel()

	host, port := listenFake(t, func(conn net.Conn) {
		r := wire.NewReader(bufio.NewReader(conn))
		w := wire.NewWriter(bufio.NewWriter(conn))
		serveHandshake(r, w)
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := session.Dial(ctx, session.Settings{Host: host, Port: port, ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	if _, err := s.StartQuery(session.NewQuery("SELECT 1")); err != nil {
		t.Fatalf("first StartQuery: %v", err)
	}
	if _, err := s.StartQuery(session.NewQuery("SELECT 2")); err != session.ErrSessionBusy {
		t.Fatalf("second StartQuery error = %v, want ErrSessionBusy", err)
	}
}

func TestReadIdleTimeout(t *testing.T) {
	t.Parallel()

	host, port := listenFake(t, func(conn net.Conn) {
		r := wire.NewReader(bufio.NewReader(conn))
		w := wire.NewWriter(bufio.NewWriter(conn))
		if err := serveHandshake(r, w); err != nil {
			return
		}
		// never answers the query; the client's read deadline must fire.
		time.Sleep(2 * time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := session.Dial(ctx, session.Settings{
		Host:             host,
		Port:             port,
		ConnectTimeout:   time.Second,
		ReadWriteTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	result, err := s.StartQuery(session.NewQuery("SELECT 1"))
	if err != nil {
		t.Fatalf("StartQuery: %v", err)
	}
	if _, err := result.Next(); err != session.ErrTimeout {
		t.Fatalf("Next() error = %v, want ErrTimeout", err)
	}
	if s.State() != session.StateDisconnected {
		t.Errorf("State() after timeout = %v, want Disconnected", s.State())
	}
}

func TestStateStrings(t *testing.T) {
	t.Parallel()
	cases := map[session.State]string{
		session.StateDisconnected: "Disconnected",
		session.StateIdle:         "Idle",
		session.StateAwaitingData: "AwaitingData",
		session.StateInsertReady:  "InsertReady",
		session.StateCancelled:    "Cancelled",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
