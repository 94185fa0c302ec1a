package session_test

import (
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lykiadb/lykiadb/internal/interpreter"
	"github.com/lykiadb/lykiadb/internal/session"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newPipe(t *testing.T) (server, client net.Conn) {
	t.Helper()
	server, client = net.Pipe()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, server.SetDeadline(deadline))
	require.NoError(t, client.SetDeadline(deadline))
	return server, client
}

func TestConnRoundTripsAFrame(t *testing.T) {
	server, client := newPipe(t)
	defer server.Close()
	defer client.Close()

	serverConn := session.NewConn(server)
	clientConn := session.NewConn(client)

	run := "1 + 1;"
	go func() {
		err := clientConn.Write(session.Message{Request: &session.Request{Run: &run}})
		require.NoError(t, err)
	}()

	msg, err := serverConn.Read()
	require.NoError(t, err)
	require.NotNil(t, msg.Request)
	require.NotNil(t, msg.Request.Run)
	assert.Equal(t, run, *msg.Request.Run)
}

func TestSessionHandleEvaluatesRunRequest(t *testing.T) {
	server, client := newPipe(t)
	defer server.Close()
	defer client.Close()

	interp := interpreter.New(nil, nil)
	sess := session.New("test-session", session.NewConn(server), interp, discardLogger())

	done := make(chan error, 1)
	go func() { done <- sess.Handle() }()

	clientConn := session.NewConn(client)
	run := "return 1 + 2;"
	require.NoError(t, clientConn.Write(session.Message{Request: &session.Request{Run: &run}}))

	resp, err := clientConn.Read()
	require.NoError(t, err)
	require.NotNil(t, resp.Response)
	require.Nil(t, resp.Response.Error)
	require.NotNil(t, resp.Response.Value)
	assert.Equal(t, "Num", resp.Response.Value.Type)
	require.NotNil(t, resp.Response.Value.Num)
	assert.Equal(t, float64(3), *resp.Response.Value.Num)

	client.Close()
	server.Close()
	<-done
}

func TestSessionHandleReportsInterpretError(t *testing.T) {
	server, client := newPipe(t)
	defer server.Close()
	defer client.Close()

	interp := interpreter.New(nil, nil)
	sess := session.New("test-session", session.NewConn(server), interp, discardLogger())

	done := make(chan error, 1)
	go func() { done <- sess.Handle() }()

	clientConn := session.NewConn(client)
	run := "$undefinedName;"
	require.NoError(t, clientConn.Write(session.Message{Request: &session.Request{Run: &run}}))

	resp, err := clientConn.Read()
	require.NoError(t, err)
	require.NotNil(t, resp.Response)
	require.NotNil(t, resp.Response.Error)
	assert.NotEmpty(t, resp.Response.Error.Report)

	client.Close()
	server.Close()
	<-done
}

func TestSessionHandleIgnoresRequestWithNeitherAstNorRun(t *testing.T) {
	server, client := newPipe(t)
	defer server.Close()
	defer client.Close()

	interp := interpreter.New(nil, nil)
	sess := session.New("test-session", session.NewConn(server), interp, discardLogger())

	done := make(chan error, 1)
	go func() { done <- sess.Handle() }()

	clientConn := session.NewConn(client)
	require.NoError(t, clientConn.Write(session.Message{Request: &session.Request{}}))

	run := "return 1;"
	require.NoError(t, clientConn.Write(session.Message{Request: &session.Request{Run: &run}}))

	resp, err := clientConn.Read()
	require.NoError(t, err)
	require.NotNil(t, resp.Response)
	require.Nil(t, resp.Response.Error)
	require.NotNil(t, resp.Response.Value)
	assert.Equal(t, "Num", resp.Response.Value.Type)
	require.NotNil(t, resp.Response.Value.Num)
	assert.Equal(t, float64(1), *resp.Response.Value.Num)

	client.Close()
	server.Close()
	<-done
}

func TestSessionHandleReturnsAstProgramJSON(t *testing.T) {
	server, client := newPipe(t)
	defer server.Close()
	defer client.Close()

	interp := interpreter.New(nil, nil)
	sess := session.New("test-session", session.NewConn(server), interp, discardLogger())

	done := make(chan error, 1)
	go func() { done <- sess.Handle() }()

	clientConn := session.NewConn(client)
	src := "1 + 1;"
	require.NoError(t, clientConn.Write(session.Message{Request: &session.Request{Ast: &src}}))

	resp, err := clientConn.Read()
	require.NoError(t, err)
	require.NotNil(t, resp.Response)
	require.Nil(t, resp.Response.Error)
	assert.NotEmpty(t, resp.Response.Program)

	client.Close()
	server.Close()
	<-done
}
