// Command lykiadb-cli is an interactive REPL that either embeds its
// own Interpreter or talks to a remote lykiadb-server over the
// session package's framed protocol, depending on the -r/--remote flag.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/lykiadb/lykiadb/internal/ast"
	"github.com/lykiadb/lykiadb/internal/errs"
	"github.com/lykiadb/lykiadb/internal/interpreter"
	"github.com/lykiadb/lykiadb/internal/runtime"
	"github.com/lykiadb/lykiadb/internal/session"
)

type options struct {
	Remote string `short:"r" long:"remote" description:"Connect to a lykiadb-server at this address instead of running embedded" value-name:"addr"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	client, err := newClient(opts.Remote)
	if err != nil {
		log.Fatalf("lykiadb-cli: %v", err)
	}
	defer client.Close()

	repl(client)
}

// client abstracts over an embedded interpreter and a remote session
// connection so the REPL loop doesn't care which one it's driving.
type client interface {
	Ast(source string) (json []byte, errReport *string)
	Run(source string) (value string, errReport *string)
	Close()
}

func newClient(remote string) (client, error) {
	if remote == "" {
		return &localClient{interp: interpreter.New(func(line string) { fmt.Println(line) }, nil)}, nil
	}
	conn, err := net.Dial("tcp", remote)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", remote, err)
	}
	return &remoteClient{conn: session.NewConn(conn)}, nil
}

type localClient struct {
	interp *interpreter.Interpreter
}

func (c *localClient) Ast(source string) ([]byte, *string) {
	arena, root, err := interpreter.Parse(source)
	if err != nil {
		r := errs.Report(source, err)
		return nil, &r
	}
	data, err := ast.ToJSON(arena, root)
	if err != nil {
		r := err.Error()
		return nil, &r
	}
	return data, nil
}

func (c *localClient) Run(source string) (string, *string) {
	val, err := c.interp.Run(source)
	if err != nil {
		r := errs.Report(source, err)
		return "", &r
	}
	return runtime.CanonicalString(val), nil
}

func (c *localClient) Close() {}

type remoteClient struct {
	conn *session.Conn
}

func (c *remoteClient) Ast(source string) ([]byte, *string) {
	resp, err := c.roundTrip(session.Request{Ast: &source})
	if err != nil {
		r := err.Error()
		return nil, &r
	}
	if resp.Error != nil {
		return nil, &resp.Error.Report
	}
	return resp.Program, nil
}

func (c *remoteClient) Run(source string) (string, *string) {
	resp, err := c.roundTrip(session.Request{Run: &source})
	if err != nil {
		r := err.Error()
		return "", &r
	}
	if resp.Error != nil {
		return "", &resp.Error.Report
	}
	return fmt.Sprintf("%+v", resp.Value), nil
}

func (c *remoteClient) roundTrip(req session.Request) (*session.Response, error) {
	if err := c.conn.Write(session.Message{Request: &req}); err != nil {
		return nil, err
	}
	msg, err := c.conn.Read()
	if err != nil {
		return nil, err
	}
	if msg.Response == nil {
		return nil, fmt.Errorf("server sent a non-response message")
	}
	return msg.Response, nil
}

func (c *remoteClient) Close() { c.conn.Close() }

// repl reads dot-commands and script lines from stdin until EOF or
// ".quit". Dot-commands are tokenized with shlex so a future
// ".load \"path with spaces.lk\"" works the same way a shell would
// split it.
func repl(c client) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("lykiadb> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("lykiadb> ")
			continue
		}
		if strings.HasPrefix(line, ".") {
			if !runDotCommand(c, line) {
				return
			}
			fmt.Print("lykiadb> ")
			continue
		}

		value, errReport := c.Run(line)
		if errReport != nil {
			fmt.Println(*errReport)
		} else {
			fmt.Println(value)
		}
		fmt.Print("lykiadb> ")
	}
}

func runDotCommand(c client, line string) bool {
	parts, err := shlex.Split(line)
	if err != nil || len(parts) == 0 {
		fmt.Println("could not parse command")
		return true
	}
	switch parts[0] {
	case ".quit", ".exit":
		return false
	case ".ast":
		source := strings.TrimPrefix(line, parts[0])
		data, errReport := c.Ast(strings.TrimSpace(source))
		if errReport != nil {
			fmt.Println(*errReport)
			return true
		}
		var program any
		if err := json.Unmarshal(data, &program); err != nil {
			fmt.Println(err)
			return true
		}
		pp.Println(program)
	case ".load":
		if len(parts) != 2 {
			fmt.Println(".load requires exactly one file path")
			return true
		}
		data, err := os.ReadFile(parts[1])
		if err != nil {
			fmt.Println(err)
			return true
		}
		value, errReport := c.Run(string(data))
		if errReport != nil {
			fmt.Println(*errReport)
		} else {
			fmt.Println(value)
		}
	default:
		fmt.Printf("unknown command %q\n", parts[0])
	}
	return true
}
