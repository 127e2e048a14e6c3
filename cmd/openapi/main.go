package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/openapi-it/openapi-client-go/pkg/openapi"
)

func main() {
	if err := run(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdout)
	defer c.close()

	return c.root.ExecuteContext(ctx)
}

// reportError prints err and, for API failures, the status and response body.
func reportError(w io.Writer, err error) {
	apiErr, ok := openapi.AsError(err)
	if !ok {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	if apiErr.Kind == openapi.KindNetwork {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "error: %s %s returned status %d\n", apiErr.Method, apiErr.URL, apiErr.StatusCode)
	if apiErr.Body != "" {
		fmt.Fprintln(w, apiErr.Body)
	}
}
