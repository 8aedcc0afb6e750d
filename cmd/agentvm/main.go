// Command agentvm runs a JSON agent AST against the VM from the command
// line, or serves it over HTTP. Grounded on the teacher's cmd/probec
// flag-based CLI shape (flag.String/.Bool, usage on stderr, os.Exit(1) on
// error) and examples/http-api's graceful-shutdown main().
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	agent "github.com/tonioloewald/agent-99"
	"github.com/tonioloewald/agent-99/capability/httpcap"
	"github.com/tonioloewald/agent-99/capability/sqlitestore"
	"github.com/tonioloewald/agent-99/capability/stubllm"
	"github.com/tonioloewald/agent-99/extensions"
	"github.com/tonioloewald/agent-99/internal/trace"
	"github.com/tonioloewald/agent-99/transport/httpserver"
)

func main() {
	var (
		astPath  = flag.String("ast", "", "path to a JSON file holding the agent AST (required)")
		argsPath = flag.String("args", "", "path to a JSON file holding the args map (optional)")
		fuel     = flag.Int("fuel", 1000, "fuel budget for the run")
		traceOn  = flag.Bool("trace", false, "print the atom dispatch tree after the run")
		serve    = flag.Bool("serve", false, "serve the VM over HTTP instead of running once")
		addr     = flag.String("addr", ":8080", "listen address when -serve is set")
		list     = flag.Bool("list", false, "list registered atoms by category and exit")
	)
	flag.Parse()

	if *list {
		vm, _, err := buildVM()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		for _, doc := range vm.Catalog() {
			fmt.Printf("%-8s %-20s %s\n", doc.Category, doc.Op, doc.Docs)
		}
		return
	}

	if *astPath == "" {
		fmt.Fprintln(os.Stderr, "usage: agentvm -ast <file.json> [-args <file.json>] [-fuel N] [-trace] [-serve]")
		os.Exit(1)
	}

	vm, recorder, err := buildVM()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	caps := defaultCapabilities()

	if *serve {
		runServer(vm, caps, *addr, *fuel)
		return
	}

	ast, err := readStep(*astPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args, err := readArgs(*argsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	result, runErr := vm.Run(context.Background(), ast, args, agent.RunOptions{Fuel: *fuel, Capabilities: caps})

	encoded, _ := json.MarshalIndent(map[string]any{
		"output":   result.Output,
		"fuelUsed": result.FuelUsed,
	}, "", "  ")
	fmt.Println(string(encoded))

	if *traceOn {
		if tree, ok := recorder.Tree(result.RunID); ok {
			fmt.Fprintln(os.Stderr, "\ndispatch tree:")
			fmt.Fprintln(os.Stderr, tree)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run error: %v\n", runErr)
		os.Exit(1)
	}
}

func buildVM() (*agent.VM, *trace.Recorder, error) {
	vm := agent.NewVM(nil)
	vm.Use(extensions.NewLoggingExtension(slog.Default()))
	recorder := trace.NewRecorder()
	vm.Use(recorder)
	return vm, recorder, nil
}

func defaultCapabilities() agent.Capabilities {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		log.Fatalf("opening in-memory store: %v", err)
	}
	store, err := sqlitestore.Open(db)
	if err != nil {
		log.Fatalf("initializing store: %v", err)
	}

	return agent.Capabilities{
		Fetch: httpcap.New(http.DefaultClient),
		Store: store,
		LLM:   stubllm.New(nil),
	}
}

func readStep(path string) (agent.Step, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ast file: %w", err)
	}
	var step agent.Step
	if err := json.Unmarshal(raw, &step); err != nil {
		return nil, fmt.Errorf("parsing ast file: %w", err)
	}
	return step, nil
}

func readArgs(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading args file: %w", err)
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parsing args file: %w", err)
	}
	return args, nil
}

func runServer(vm *agent.VM, caps agent.Capabilities, addr string, fuel int) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpserver.New(vm, caps, fuel).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("agentvm serving on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-sigCh
	fmt.Println("\nshutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
