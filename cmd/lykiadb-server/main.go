// Command lykiadb-server listens for TCP connections speaking the
// session package's framed JSON protocol, handing each accepted
// connection its own goroutine, Session, and Interpreter.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"

	"github.com/lykiadb/lykiadb/internal/config"
	"github.com/lykiadb/lykiadb/internal/interpreter"
	"github.com/lykiadb/lykiadb/internal/runtime"
	"github.com/lykiadb/lykiadb/internal/session"
)

const asciiArt = `
$$\                 $$\       $$\           $$$$$$$\  $$$$$$$\
$$ |                $$ |      \__|          $$  __$$\ $$  __$$\
$$ |      $$\   $$\ $$ |  $$\ $$\  $$$$$$\  $$ |  $$ |$$ |  $$ |
$$ |      $$ |  $$ |$$ | $$  |$$ | \____$$\ $$ |  $$ |$$$$$$$\ |
$$ |      $$ |  $$ |$$$$$$  / $$ | $$$$$$$ |$$ |  $$ |$$  __$$\
$$ |      $$ |  $$ |$$  _$$<  $$ |$$  __$$ |$$ |  $$ |$$ |  $$ |
$$$$$$$$\ \$$$$$$$ |$$ | \$$\ $$ |\$$$$$$$ |$$$$$$$  |$$$$$$$  |
\________| \____$$ |\__|  \__|\__| \_______|\_______/ \_______/
          $$\   $$ |
          \$$$$$$  |
           \______/
`

type options struct {
	Config string `short:"c" long:"config" description:"Path to a YAML config file" value-name:"path"`
	Listen string `short:"l" long:"listen" description:"Listen address, overrides the config file" value-name:"addr"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatalf("lykiadb-server: %v", err)
	}
	if opts.Listen != "" {
		cfg.ListenAddr = opts.Listen
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("lykiadb-server: listen on %s: %v", cfg.ListenAddr, err)
	}
	fmt.Print(asciiArt)
	logger.Printf("listening on %s", listener.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	go waitForShutdown(cancel, logger)

	var wg sync.WaitGroup
	go acceptLoop(ctx, listener, cfg, logger, &wg)

	<-ctx.Done()
	logger.Printf("shutting down: closing listener")
	listener.Close()
	wg.Wait()
	logger.Printf("all sessions closed, exiting")
}

func waitForShutdown(cancel context.CancelFunc, logger *log.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("received signal %s", sig)
	cancel()
}

func acceptLoop(ctx context.Context, listener net.Listener, cfg config.Config, logger *log.Logger, wg *sync.WaitGroup) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Printf("accept error: %v", err)
				return
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(conn, cfg, logger)
		}()
	}
}

func serve(conn net.Conn, cfg config.Config, logger *log.Logger) {
	id := uuid.New().String()
	defer conn.Close()

	if cfg.SessionIdleTimeoutS > 0 {
		conn.SetDeadline(time.Now().Add(time.Duration(cfg.SessionIdleTimeoutS) * time.Second))
	}

	var sink *runtime.Sink
	if cfg.EnableTestSink {
		sink = &runtime.Sink{}
	}
	interp := interpreter.New(func(line string) { logger.Printf("session %s: io.print: %s", id, line) }, sink)

	sess := session.New(id, session.NewConn(conn), interp, logger)
	logger.Printf("session %s: connected from %s", id, conn.RemoteAddr())
	if err := sess.Handle(); err != nil {
		logger.Printf("session %s: closed with error: %v", id, err)
		return
	}
	logger.Printf("session %s: closed", id)
}
