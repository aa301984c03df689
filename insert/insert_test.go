package insert_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/vektorlab/chwire/block"
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/insert"
	"github.com/vektorlab/chwire/protocol"
	"github.com/vektorlab/chwire/session"
	"github.com/vektorlab/chwire/wire"
)

func sampleBlock(t *testing.T) *block.Block {
	t.Helper()
	b := block.New()
	idType, _ := chtype.Parse("UInt32")
	nameType, _ := chtype.Parse("String")
	ageType, _ := chtype.Parse("UInt8")
	b.AddColumn("id", idType)
	b.AddColumn("name", nameType)
	b.AddColumn("age", ageType)
	return b
}

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

func readQueryEnvelope(r *wire.Reader) (string, error) {
	if _, err := r.Uvarint(); err != nil { // ClientQuery
		return "", err
	}
	r.String() // id
	r.String() // initial address
	r.Byte()   // query kind
	r.String() // os user
	r.String() // hostname
	r.String() // program
	r.Uvarint()
	r.String() // settings terminator
	r.Uvarint()
	r.Bool()
	sql, err := r.String()
	if err != nil {
		return "", err
	}
	r.Uvarint() // ClientData id
	if _, err := block.Decode(r); err != nil {
		return "", err
	}
	return sql, nil
}

func TestInsertBatchEndToEnd(t *testing.T) {
	t.Parallel()

	host, port := listenFake(t, func(conn net.Conn) {
		r := wire.NewReader(bufio.NewReader(conn))
		w := wire.NewWriter(bufio.NewWriter(conn))
		if err := serveHandshake(r, w); err != nil {
			return
		}
		sql, err := readQueryEnvelope(r)
		if err != nil || !strings.HasPrefix(sql, "INSERT INTO events") {
			return
		}

		// sample block
		w.PutUvarint(protocol.ServerData)
		sampleBlock(t).Encode(w)
		w.Flush()

		// one data block of rows, then the empty terminator
		r.Uvarint() // ClientData id
		if _, err := block.Decode(r); err != nil {
			return
		}
		r.Uvarint() // ClientData id (terminator)
		if _, err := block.Decode(r); err != nil {
			return
		}

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

	fields := []insert.Field{{Name: "id"}, {Name: "name"}, {Name: "age"}}
	rows := [][]any{
		{uint32(1), "Alice", uint8(30)},
		{uint32(2), "Bob", uint8(25)},
		{uint32(3), "Charlie", uint8(35)},
	}
	if err := insert.InsertBatch(s, "events", fields, rows); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if s.State() != session.StateIdle {
		t.Errorf("State() after insert = %v, want Idle", s.State())
	}
}

func TestInsertSchemaMismatch(t *testing.T) {
	t.Parallel()

	host, port := listenFake(t, func(conn net.Conn) {
		r := wire.NewReader(bufio.NewReader(conn))
		w := wire.NewWriter(bufio.NewWriter(conn))
		if err := serveHandshake(r, w); err != nil {
			return
		}
		if _, err := readQueryEnvelope(r); err != nil {
			return
		}
		w.PutUvarint(protocol.ServerData)
		sampleBlock(t).Encode(w)
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

	fields := []insert.Field{{Name: "id"}, {Name: "does_not_exist"}}
	_, err = insert.New(s, "events", fields)
	if err == nil {
		t.Fatal("New() error = nil, want schema mismatch")
	}
	if _, ok := err.(*insert.ErrSchemaMismatch); !ok {
		t.Fatalf("New() error = %T, want *insert.ErrSchemaMismatch", err)
	}
}
