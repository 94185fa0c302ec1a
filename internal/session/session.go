// Package session implements the length-prefixed JSON framing over
// net.Conn that the server and CLI speak, plus the per-connection
// Session that serializes a stream of Requests onto one
// *interpreter.Interpreter.
//
// What: Message/Request/Response envelope types, a Conn that reads/
// writes one frame at a time, and Session.Handle's read-dispatch-write
// loop.
// How: each frame is a 4-byte big-endian length prefix followed by that
// many bytes of UTF-8 JSON — the simplest self-delimiting framing that
// needs no external codec, grounded on SPEC_FULL.md §6's envelope
// (itself distilled from original_source/server/src/main.rs's
// Connection/Message use and lykiadb-connect/src/session.rs's
// send_receive, neither of whose exact wire-framing source survived
// into the retrieval pack, so the 4-byte-length-prefix choice here is a
// direct, idiomatic Go rendering of "frame this stream of JSON values"
// rather than a literal port).
// Why: one goroutine per accepted connection, one Session per goroutine,
// requests handled strictly sequentially — matches spec.md §5's
// concurrency model exactly, with no inner goroutine ever touching the
// interpreter concurrently.
package session

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"

	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/errs"
	"github.com/lykiadb/lykiadb/internal/interpreter"
)

// Request is the client-to-server half of a Message: exactly one of Ast
// or Run should be set.
type Request struct {
	Ast *string `json:"ast,omitempty"`
	Run *string `json:"run,omitempty"`
}

// Response is the server-to-client half of a Message.
type Response struct {
	Program json.RawMessage `json:"program,omitempty"`
	Value   *ValueJSON      `json:"value,omitempty"`
	Error   *ErrorJSON      `json:"error,omitempty"`
}

// Message wraps exactly one Request or Response per frame.
type Message struct {
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
}

// ErrorJSON is the client-visible rendering of a pipeline error: the
// human-readable report plus the raw error kind, never a Go stack
// trace.
type ErrorJSON struct {
	Kind   string `json:"kind"`
	Report string `json:"report"`
}

// Conn wraps a net.Conn with the length-prefixed JSON framing.
type Conn struct {
	rw net.Conn
}

// NewConn wraps rw for framed Message exchange.
func NewConn(rw net.Conn) *Conn {
	return &Conn{rw: rw}
}

// Read blocks for the next frame, returning io.EOF once the peer closes
// cleanly between frames.
func (c *Conn) Read() (*Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(c.rw, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(c.rw, body); err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("session: decode frame: %w", err)
	}
	return &msg, nil
}

// Write encodes msg and writes it as one frame.
func (c *Conn) Write(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("session: encode frame: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := c.rw.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = c.rw.Write(body)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.rw.Close() }

// Session binds one framed Conn to one interpreter and logger, handling its Request stream until the peer disconnects or a
// frame-level I/O error occurs.
type Session struct {
	ID     string
	conn   *Conn
	interp *interpreter.Interpreter
	log    *log.Logger
}

// New builds a Session with id over conn, evaluating requests against
// interp and logging frame-level activity to logger.
func New(id string, conn *Conn, interp *interpreter.Interpreter, logger *log.Logger) *Session {
	return &Session{ID: id, conn: conn, interp: interp, log: logger}
}

// Handle reads frames until the connection closes or errors, dispatching
// each Request sequentially. Returns nil on a clean peer disconnect.
func (s *Session) Handle() error {
	for {
		msg, err := s.conn.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if msg.Request == nil {
			s.log.Printf("session %s: received a non-request message, ignoring", s.ID)
			continue
		}
		resp, ok := s.dispatch(*msg.Request)
		if !ok {
			continue
		}
		if err := s.conn.Write(Message{Response: &resp}); err != nil {
			return err
		}
	}
}

// dispatch evaluates req and reports whether a Response should be
// written back at all — a request with neither Ast nor Run set is
// logged and ignored, per SPEC_FULL.md §6, the same as an incoming
// non-request Message.
func (s *Session) dispatch(req Request) (Response, bool) {
	switch {
	case req.Ast != nil:
		return s.handleAst(*req.Ast), true
	case req.Run != nil:
		return s.handleRun(*req.Run), true
	default:
		s.log.Printf("session %s: request had neither ast nor run set, ignoring", s.ID)
		return Response{}, false
	}
}

func (s *Session) handleAst(source string) Response {
	arena, root, err := interpreter.Parse(source)
	if err != nil {
		s.log.Printf("session %s: ast error: %+v", s.ID, err)
		return Response{Error: toErrorJSON(source, err)}
	}
	program, err := ast.ToJSON(arena, root)
	if err != nil {
		s.log.Printf("session %s: ast render error: %v", s.ID, err)
		return Response{Error: &ErrorJSON{Kind: "Other", Report: err.Error()}}
	}
	return Response{Program: program}
}

func (s *Session) handleRun(source string) Response {
	val, err := s.interp.Run(source)
	if err != nil {
		s.log.Printf("session %s: run error: %+v", s.ID, err)
		return Response{Error: toErrorJSON(source, err)}
	}
	return Response{Value: toValueJSON(val)}
}

func toErrorJSON(source string, err error) *ErrorJSON {
	return &ErrorJSON{Kind: errs.KindOf(err), Report: errs.Report(source, err)}
}
