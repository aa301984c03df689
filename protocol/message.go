// Package protocol implements the client↔server message codec: ids,
// payload shapes, and encode/decode for every message named in
// spec.md §4.6.
package protocol

import (
	"errors"
	"fmt"

	"github.com/vektorlab/chwire/wire"
)

// Client-to-server message identifiers.
const (
	ClientHello  = 0
	ClientQuery  = 1
	ClientData   = 2
	ClientCancel = 3
	ClientPing   = 4
)

// Server-to-client message identifiers.
const (
	ServerHello                = 0
	ServerData                 = 1
	ServerException            = 2
	ServerProgress             = 3
	ServerPong                 = 4
	ServerEndOfStream          = 5
	ServerProfileInfo          = 6
	ServerTotals               = 7
	ServerExtremes             = 8
	ServerTablesStatusResponse = 9
	ServerLog                  = 10
	ServerTableColumns         = 11
)

var ErrProtocolViolation = errors.New("protocol: protocol violation")

// Hello is the client→server handshake payload.
type Hello struct {
	ClientName   string
	VersionMajor uint64
	VersionMinor uint64
	Revision     Revision
	Database     string
	User         string
	Password     string
}

// EncodeHello writes a Hello message including its leading message id.
func EncodeHello(w *wire.Writer, h Hello) error {
	if err := w.PutUvarint(ClientHello); err != nil {
		return err
	}
	if err := w.PutString(h.ClientName); err != nil {
		return err
	}
	if err := w.PutUvarint(h.VersionMajor); err != nil {
		return err
	}
	if err := w.PutUvarint(h.VersionMinor); err != nil {
		return err
	}
	if err := w.PutUvarint(uint64(h.Revision)); err != nil {
		return err
	}
	if err := w.PutString(h.Database); err != nil {
		return err
	}
	if err := w.PutString(h.User); err != nil {
		return err
	}
	return w.PutString(h.Password)
}

// ServerHelloReply is the server's handshake response.
type ServerHelloReply struct {
	Name         string
	VersionMajor uint64
	VersionMinor uint64
	Revision     Revision
	Timezone     string // gated: RevisionServerTimezone
	DisplayName  string // gated: RevisionDisplayName
	VersionPatch uint64 // gated: RevisionVersionPatch
}

// DecodeServerHelloReply reads a Hello reply body (the leading message
// id has already been consumed by the caller's dispatch loop).
func DecodeServerHelloReply(r *wire.Reader) (ServerHelloReply, error) {
	var h ServerHelloReply
	var err error
	if h.Name, err = r.String(); err != nil {
		return h, err
	}
	if h.VersionMajor, err = r.Uvarint(); err != nil {
		return h, err
	}
	if h.VersionMinor, err = r.Uvarint(); err != nil {
		return h, err
	}
	rev, err := r.Uvarint()
	if err != nil {
		return h, err
	}
	h.Revision = Revision(rev)
	if h.Revision.atLeast(RevisionServerTimezone) {
		if h.Timezone, err = r.String(); err != nil {
			return h, err
		}
	}
	if h.Revision.atLeast(RevisionDisplayName) {
		if h.DisplayName, err = r.String(); err != nil {
			return h, err
		}
	}
	if h.Revision.atLeast(RevisionVersionPatch) {
		if h.VersionPatch, err = r.Uvarint(); err != nil {
			return h, err
		}
	}
	return h, nil
}

// ClientInfo accompanies a Query message.
type ClientInfo struct {
	OSUser         string
	Hostname       string
	ProgramName    string
	ClientRevision Revision
	InitialAddress string
	QueryKind      byte
}

// Query is the client→server query-start payload.
type Query struct {
	ID          string
	Info        ClientInfo
	Settings    []Setting
	Stage       uint64
	Compression bool
	SQL         string
}

// Setting is one query-level key/value override.
type Setting struct {
	Key   string
	Value string
}

// Default query processing stage: "Complete".
const StageComplete = 2

// EncodeQuery writes a Query message including its leading message id.
func EncodeQuery(w *wire.Writer, q Query) error {
	if err := w.PutUvarint(ClientQuery); err != nil {
		return err
	}
	if err := w.PutString(q.ID); err != nil {
		return err
	}
	if err := w.PutString(q.Info.InitialAddress); err != nil {
		return err
	}
	if err := w.PutByte(q.Info.QueryKind); err != nil {
		return err
	}
	if err := w.PutString(q.Info.OSUser); err != nil {
		return err
	}
	if err := w.PutString(q.Info.Hostname); err != nil {
		return err
	}
	if err := w.PutString(q.Info.ProgramName); err != nil {
		return err
	}
	if err := w.PutUvarint(uint64(q.Info.ClientRevision)); err != nil {
		return err
	}
	for _, s := range q.Settings {
		if err := w.PutString(s.Key); err != nil {
			return err
		}
		if err := w.PutString(s.Value); err != nil {
			return err
		}
	}
	if err := w.PutString(""); err != nil { // settings terminator: empty key
		return err
	}
	if err := w.PutUvarint(q.Stage); err != nil {
		return err
	}
	if err := w.PutBool(q.Compression); err != nil {
		return err
	}
	return w.PutString(q.SQL)
}

// Progress is a server→client progress update.
type Progress struct {
	ReadRows        uint64
	ReadBytes       uint64
	TotalRowsToRead uint64
	WrittenRows     uint64
	WrittenBytes    uint64
}

func DecodeProgress(r *wire.Reader) (Progress, error) {
	var p Progress
	var err error
	if p.ReadRows, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.ReadBytes, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.TotalRowsToRead, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.WrittenRows, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.WrittenBytes, err = r.Uvarint(); err != nil {
		return p, err
	}
	return p, nil
}

// ProfileInfo is a server→client query execution summary.
type ProfileInfo struct {
	Rows                      uint64
	Blocks                    uint64
	Bytes                     uint64
	AppliedLimit              bool
	RowsBeforeLimit           uint64
	CalculatedRowsBeforeLimit bool
}

func DecodeProfileInfo(r *wire.Reader) (ProfileInfo, error) {
	var p ProfileInfo
	var err error
	if p.Rows, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Blocks, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Bytes, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.AppliedLimit, err = r.Bool(); err != nil {
		return p, err
	}
	if p.RowsBeforeLimit, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.CalculatedRowsBeforeLimit, err = r.Bool(); err != nil {
		return p, err
	}
	return p, nil
}

// ExceptionFrame is one frame of a possibly-nested server exception
// chain, per spec.md §4.6.
type ExceptionFrame struct {
	Code       int32
	Name       string
	Message    string
	StackTrace string
	HasNested  bool
}

// DecodeExceptionChain reads frames until HasNested is false. The
// first frame's Code is the caller-visible error class.
func DecodeExceptionChain(r *wire.Reader) ([]ExceptionFrame, error) {
	var chain []ExceptionFrame
	for {
		var f ExceptionFrame
		code, err := r.Int32()
		if err != nil {
			return nil, err
		}
		f.Code = code
		if f.Name, err = r.String(); err != nil {
			return nil, err
		}
		if f.Message, err = r.String(); err != nil {
			return nil, err
		}
		if f.StackTrace, err = r.String(); err != nil {
			return nil, err
		}
		hasNested, err := r.Byte()
		if err != nil {
			return nil, err
		}
		f.HasNested = hasNested != 0
		chain = append(chain, f)
		if !f.HasNested {
			return chain, nil
		}
	}
}

// LogEntry is a server→client log line.
type LogEntry struct {
	EventTime   int32
	HostName    string
	QueryID     string
	ThreadID    uint64
	Priority    int8
	Source      string
	Text        string
}

// Pong acknowledges a client Ping; it has no payload.

// EncodePing writes a Ping message including its leading message id.
func EncodePing(w *wire.Writer) error { return w.PutUvarint(ClientPing) }

// EncodeCancel writes a Cancel message including its leading message id.
func EncodeCancel(w *wire.Writer) error { return w.PutUvarint(ClientCancel) }

// DispatchServer reads the next server message id and reports whether
// it is known. Unknown ids are a protocol violation, per spec.md §4.6
// — the caller must not silently skip them.
func DispatchServer(r *wire.Reader) (uint64, error) {
	id, err := r.Uvarint()
	if err != nil {
		return 0, err
	}
	switch id {
	case ServerHello, ServerData, ServerException, ServerProgress, ServerPong,
		ServerEndOfStream, ServerProfileInfo, ServerTotals, ServerExtremes,
		ServerTablesStatusResponse, ServerLog, ServerTableColumns:
		return id, nil
	}
	return id, fmt.Errorf("%w: unknown server message id %d", ErrProtocolViolation, id)
}
