// Package session implements the client-side state machine for one
// TCP connection to a columnar analytical database server: handshake,
// query lifecycle, cancellation, and keepalive, per spec.md §4.6.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vektorlab/chwire/block"
	"github.com/vektorlab/chwire/protocol"
	"github.com/vektorlab/chwire/wire"
)

// State is the session's current position in the lifecycle described
// in spec.md §4.6.
type State int

const (
	StateDisconnected State = iota
	StateIdle
	StateAwaitingData
	StateInsertReady
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateIdle:
		return "Idle"
	case StateAwaitingData:
		return "AwaitingData"
	case StateInsertReady:
		return "InsertReady"
	case StateCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// ServerInfo is captured once at handshake, per spec.md §3.
type ServerInfo struct {
	Name         string
	VersionMajor uint64
	VersionMinor uint64
	VersionPatch uint64
	Revision     protocol.Revision
	Timezone     string
	DisplayName  string
}

// Settings configures a Session at Dial time.
type Settings struct {
	Host             string
	Port             int
	Database         string
	User             string
	Password         string
	Compression      bool
	ConnectTimeout   time.Duration
	ReadWriteTimeout time.Duration
}

// Session is a TCP connection to the server plus the state described
// in spec.md §3/§4.6. A Session is single-tenant: at most one query or
// insert is in flight, enforced by the send lock.
type Session struct {
	conn     net.Conn
	r        *wire.Reader
	w        *wire.Writer
	settings Settings
	info     ServerInfo
	revision protocol.Revision

	mu    sync.Mutex // guards state and serializes send paths
	state State
}

// Dial opens a TCP connection and performs the Hello/HelloReply
// handshake, negotiating the protocol revision.
func Dial(ctx context.Context, settings Settings) (*Session, error) {
	dialer := net.Dialer{Timeout: settings.ConnectTimeout}
	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, ErrCancelled
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, ErrTimeout
		}
		if errors.Is(classifyConnErr(err), ErrTimeout) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("session: dial: %w", err)
	}

	s := &Session{
		conn:     conn,
		r:        wire.NewReader(bufio.NewReader(conn)),
		w:        wire.NewWriter(bufio.NewWriter(conn)),
		settings: settings,
		state:    StateDisconnected,
	}

	if err := s.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	s.state = StateIdle
	return s, nil
}

func (s *Session) handshake() error {
	hello := protocol.Hello{
		ClientName:   "chwire",
		VersionMajor: 1,
		VersionMinor: 0,
		Revision:     protocol.ClientRevision,
		Database:     s.settings.Database,
		User:         s.settings.User,
		Password:     s.settings.Password,
	}
	if err := s.setWriteDeadline(); err != nil {
		return s.fail(err)
	}
	if err := protocol.EncodeHello(s.w, hello); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return s.fail(err)
	}

	if err := s.setReadDeadline(); err != nil {
		return s.fail(err)
	}
	id, err := protocol.DispatchServer(s.r)
	if err != nil {
		return s.fail(err)
	}
	if id != protocol.ServerHello {
		return s.fail(fmt.Errorf("%w: expected ServerHello, got %d", protocol.ErrProtocolViolation, id))
	}
	reply, err := protocol.DecodeServerHelloReply(s.r)
	if err != nil {
		return s.fail(err)
	}
	s.revision = protocol.Negotiate(protocol.ClientRevision, reply.Revision)
	s.info = ServerInfo{
		Name:         reply.Name,
		VersionMajor: reply.VersionMajor,
		VersionMinor: reply.VersionMinor,
		VersionPatch: reply.VersionPatch,
		Revision:     s.revision,
		Timezone:     reply.Timezone,
		DisplayName:  reply.DisplayName,
	}
	return nil
}

// Info returns the server info captured at handshake.
func (s *Session) Info() ServerInfo { return s.info }

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// fail transitions the session to Disconnected and closes the socket,
// per spec.md §7's rule that Transport/Protocol errors are
// non-recoverable for a session.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.state = StateDisconnected
	s.mu.Unlock()
	s.conn.Close()
	return classifyConnErr(err)
}

// classifyConnErr maps a raw transport error onto the sentinels
// spec.md §5/§7 name: a deadline expiry is Timeout, a closed socket or
// EOF is ConnectionClosed. Any other error (protocol violations, wire
// decode errors) passes through unchanged.
func classifyConnErr(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return ErrConnectionClosed
	}
	return err
}

// setReadDeadline arms the per-read idle timeout ahead of a blocking
// read, per spec.md §5. A non-positive ReadWriteTimeout disables it.
func (s *Session) setReadDeadline() error {
	if s.settings.ReadWriteTimeout <= 0 {
		return nil
	}
	return s.conn.SetReadDeadline(time.Now().Add(s.settings.ReadWriteTimeout))
}

// setWriteDeadline arms the per-write idle timeout ahead of a blocking
// write, per spec.md §5. A non-positive ReadWriteTimeout disables it.
func (s *Session) setWriteDeadline() error {
	if s.settings.ReadWriteTimeout <= 0 {
		return nil
	}
	return s.conn.SetWriteDeadline(time.Now().Add(s.settings.ReadWriteTimeout))
}

// acquire transitions Idle→AwaitingData, rejecting concurrent use.
func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrSessionBusy
	}
	s.state = StateAwaitingData
	return nil
}

func (s *Session) toIdle() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// Query is the input to StartQuery: a client-generated id and the SQL
// text.
type Query struct {
	ID  string
	SQL string
}

// NewQuery builds a Query with a fresh id, per spec.md §3.
func NewQuery(sql string) Query {
	return Query{ID: uuid.NewString(), SQL: sql}
}

// Result streams the rows and control messages produced by a running
// query, per spec.md §4.6's AwaitingData transitions.
type Result struct {
	s        *Session
	done     bool
	progress protocol.Progress
}

// StartQuery sends a Query message followed by the empty "no external
// data" Data block, and returns a Result for draining the response.
func (s *Session) StartQuery(q Query) (*Result, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}

	info := protocol.ClientInfo{
		OSUser:         "chwire",
		Hostname:       "localhost",
		ProgramName:    "chwire",
		ClientRevision: s.revision,
	}
	msg := protocol.Query{
		ID:          q.ID,
		Info:        info,
		Stage:       protocol.StageComplete,
		Compression: s.settings.Compression,
		SQL:         q.SQL,
	}
	if err := s.setWriteDeadline(); err != nil {
		return nil, s.fail(err)
	}
	if err := protocol.EncodeQuery(s.w, msg); err != nil {
		return nil, s.fail(err)
	}
	if err := s.w.PutUvarint(protocol.ClientData); err != nil {
		return nil, s.fail(err)
	}
	empty := block.New()
	if err := empty.Encode(s.w); err != nil {
		return nil, s.fail(err)
	}
	if err := s.w.Flush(); err != nil {
		return nil, s.fail(err)
	}
	return &Result{s: s}, nil
}

// Next reads the next server message, returning the decoded Block on
// a Data message, nil on EndOfStream, or an error (possibly a
// *ServerError) on Exception.
func (r *Result) Next() (*block.Block, error) {
	if r.done {
		return nil, ErrInvalidState
	}
	for {
		if err := r.s.setReadDeadline(); err != nil {
			return nil, r.s.fail(err)
		}
		id, err := protocol.DispatchServer(r.s.r)
		if err != nil {
			return nil, r.s.fail(err)
		}
		switch id {
		case protocol.ServerData:
			b, err := block.Decode(r.s.r)
			if err != nil {
				return nil, r.s.fail(err)
			}
			return b, nil
		case protocol.ServerProgress:
			p, err := protocol.DecodeProgress(r.s.r)
			if err != nil {
				return nil, r.s.fail(err)
			}
			r.progress = p
			continue
		case protocol.ServerProfileInfo:
			if _, err := protocol.DecodeProfileInfo(r.s.r); err != nil {
				return nil, r.s.fail(err)
			}
			continue
		case protocol.ServerLog:
			if _, err := block.Decode(r.s.r); err != nil {
				return nil, r.s.fail(err)
			}
			continue
		case protocol.ServerException:
			chain, err := protocol.DecodeExceptionChain(r.s.r)
			if err != nil {
				return nil, r.s.fail(err)
			}
			r.done = true
			r.s.toIdle()
			return nil, serverErrorFromChain(chain)
		case protocol.ServerEndOfStream:
			r.done = true
			r.s.toIdle()
			return nil, nil
		default:
			return nil, r.s.fail(fmt.Errorf("%w: unexpected message %d mid-query", protocol.ErrProtocolViolation, id))
		}
	}
}

// Progress returns the most recently observed progress counters.
func (r *Result) Progress() protocol.Progress { return r.progress }

// EnterInsertReady transitions AwaitingData→InsertReady after the
// caller has consumed the server's sample block for an INSERT query,
// per spec.md §4.6.
func (s *Session) EnterInsertReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingData {
		return ErrInvalidState
	}
	s.state = StateInsertReady
	return nil
}

// SendDataBlock writes one non-empty Data block during an insert.
// The caller must be in InsertReady state.
func (s *Session) SendDataBlock(b *block.Block) error {
	s.mu.Lock()
	if s.state != StateInsertReady {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.mu.Unlock()

	if err := s.setWriteDeadline(); err != nil {
		return s.fail(err)
	}
	if err := s.w.PutUvarint(protocol.ClientData); err != nil {
		return s.fail(err)
	}
	if err := b.Encode(s.w); err != nil {
		return s.fail(err)
	}
	if err := s.w.Flush(); err != nil {
		return s.fail(err)
	}
	return nil
}

// FinishInsert sends the empty terminator Data block and awaits
// EndOfStream, returning the session to Idle.
func (s *Session) FinishInsert() error {
	s.mu.Lock()
	if s.state != StateInsertReady {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.mu.Unlock()

	if err := s.SendDataBlock(block.New()); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = StateAwaitingData
	s.mu.Unlock()

	for {
		if err := s.setReadDeadline(); err != nil {
			return s.fail(err)
		}
		id, err := protocol.DispatchServer(s.r)
		if err != nil {
			return s.fail(err)
		}
		switch id {
		case protocol.ServerProgress:
			if _, err := protocol.DecodeProgress(s.r); err != nil {
				return s.fail(err)
			}
		case protocol.ServerProfileInfo:
			if _, err := protocol.DecodeProfileInfo(s.r); err != nil {
				return s.fail(err)
			}
		case protocol.ServerException:
			chain, err := protocol.DecodeExceptionChain(s.r)
			if err != nil {
				return s.fail(err)
			}
			s.toIdle()
			return serverErrorFromChain(chain)
		case protocol.ServerEndOfStream:
			s.toIdle()
			return nil
		default:
			return s.fail(fmt.Errorf("%w: unexpected message %d finishing insert", protocol.ErrProtocolViolation, id))
		}
	}
}

func serverErrorFromChain(chain []protocol.ExceptionFrame) *ServerError {
	names := make([]string, len(chain))
	for i, f := range chain {
		names[i] = f.Message
	}
	head := chain[0]
	return &ServerError{Code: head.Code, Name: head.Name, Message: head.Message, Chain: names}
}

// Cancel sends a Cancel message and drains incoming messages until
// EndOfStream or Exception, per spec.md §4.6. The socket is not
// closed; the session returns to Idle on success.
func (s *Session) Cancel(r *Result) error {
	s.mu.Lock()
	if s.state != StateAwaitingData {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.state = StateCancelled
	s.mu.Unlock()

	if err := s.setWriteDeadline(); err != nil {
		return s.fail(err)
	}
	if err := protocol.EncodeCancel(s.w); err != nil {
		return s.fail(err)
	}
	if err := s.w.Flush(); err != nil {
		return s.fail(err)
	}
	for {
		_, err := r.Next()
		if err != nil {
			if _, ok := err.(*ServerError); ok {
				s.toIdle()
				return nil
			}
			return err // already failed the session
		}
		if r.done {
			s.toIdle()
			return nil
		}
	}
}

// Ping sends a keepalive Ping and waits for Pong.
func (s *Session) Ping() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	s.mu.Unlock()

	if err := s.setWriteDeadline(); err != nil {
		return s.fail(err)
	}
	if err := protocol.EncodePing(s.w); err != nil {
		return s.fail(err)
	}
	if err := s.w.Flush(); err != nil {
		return s.fail(err)
	}
	if err := s.setReadDeadline(); err != nil {
		return s.fail(err)
	}
	id, err := protocol.DispatchServer(s.r)
	if err != nil {
		return s.fail(err)
	}
	if id != protocol.ServerPong {
		return s.fail(fmt.Errorf("%w: expected Pong, got %d", protocol.ErrProtocolViolation, id))
	}
	return nil
}

// Healthy reports whether Ping currently succeeds; used by the
// external load balancer's health checker (spec.md §6).
func (s *Session) Healthy() bool { return s.Ping() == nil }

// Close closes the underlying connection.
func (s *Session) Close() error {
	s.mu.Lock()
	s.state = StateDisconnected
	s.mu.Unlock()
	return s.conn.Close()
}
