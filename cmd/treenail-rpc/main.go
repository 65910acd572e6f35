// Command treenail-rpc serves the operation catalog and the script
// evaluator over JSON-RPC 2.0 on stdin/stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/treenail/pkg/engine"
	"github.com/chazu/treenail/pkg/kernel/sdfx"
	"github.com/chazu/treenail/pkg/rpc"
)

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *stdioReadWriteCloser) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

func (s *stdioReadWriteCloser) Close() error {
	rerr := s.reader.Close()
	werr := s.writer.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := rpc.NewServer(nil, engine.NewEngine(sdfx.New()))
	rwc := &stdioReadWriteCloser{reader: os.Stdin, writer: os.Stdout}

	if err := srv.Serve(ctx, rwc); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "treenail-rpc: %v\n", err)
		os.Exit(1)
	}
}
