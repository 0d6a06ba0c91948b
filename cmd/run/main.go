package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/sharedmod/codec"
	"github.com/wippyai/sharedmod/driver"
	"github.com/wippyai/sharedmod/engine"
	"github.com/wippyai/sharedmod/lamport"
	"github.com/wippyai/sharedmod/runtime"
)

func main() {
	var (
		parachain   = flag.String("parachain", "", "Path to parachain validation wasm file")
		modules     = flag.String("module", "", "Shared module wasm files (comma-separated, handle = position)")
		demo        = flag.Bool("demo", false, "Run the built-in two-module simulation")
		interactive = flag.Bool("i", false, "Interactive simulator with TUI")
		count       = flag.Int("n", 2, "Number of built-in modules for -demo and -i")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
		defer logger.Sync()
	}
	engine.SetLogger(logger)

	switch {
	case *interactive:
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*count, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *demo:
		if err := runDemo(*count, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *parachain != "" && *modules != "":
		if err := runWasm(*parachain, strings.Split(*modules, ","), logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "Usage: run -parachain <file.wasm> -module <a.wasm[,b.wasm...]>")
		fmt.Fprintln(os.Stderr, "       run -demo [-n modules]")
		fmt.Fprintln(os.Stderr, "       run -i [-n modules]  (interactive mode)")
		os.Exit(1)
	}
}

// runWasm validates one parachain block against wazero-loaded shared
// modules, then prints and relays the resulting message state.
func runWasm(parachainFile string, moduleFiles []string, logger *zap.Logger) error {
	ctx := context.Background()

	eng, err := engine.NewWazeroEngine(ctx)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close(ctx)

	d := driver.New(driver.WithLogger(logger))
	defer d.Close(ctx)

	for _, file := range moduleFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read module: %w", err)
		}
		mod, err := eng.Load(ctx, data)
		if err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
		name := strings.TrimSuffix(filepath.Base(file), ".wasm")
		handle := d.Register(runtime.New(mod, runtime.WithName(name), runtime.WithLogger(logger)))
		fmt.Printf("Registered module %d: %s\n", handle, name)
	}

	data, err := os.ReadFile(parachainFile)
	if err != nil {
		return fmt.Errorf("read parachain: %w", err)
	}
	para, err := eng.Load(ctx, data)
	if err != nil {
		return fmt.Errorf("load %s: %w", parachainFile, err)
	}

	fmt.Printf("\nValidating block via %s...\n", parachainFile)
	if err := d.ValidateBlock(ctx, para); err != nil {
		return fmt.Errorf("validate block: %w", err)
	}

	printState(d)
	fmt.Printf("\nRelayed %d outbound blobs.\n", d.Relay())
	printState(d)
	return nil
}

// runDemo exchanges one message pair between two built-in modules through
// the full dispatch, fan-out and relay path.
func runDemo(count int, logger *zap.Logger) error {
	ctx := context.Background()
	if count < 2 {
		count = 2
	}
	d := newNativeDriver(count, logger)
	defer d.Close(ctx)

	para := engine.NewNativeEngine().Module(&lamport.Validator{Steps: []lamport.Step{
		{Handle: 0, Request: codec.Enqueue{Recipient: 1, Payload: []byte("ping")}},
		{Handle: 0, Request: codec.FanOut{}},
	}})

	fmt.Println("Validating block: module 0 sends \"ping\" to module 1...")
	if err := d.ValidateBlock(ctx, para); err != nil {
		return err
	}
	printState(d)

	fmt.Printf("\nRelayed %d outbound blobs.\n", d.Relay())

	fmt.Println("Module 1 polls and answers with \"pong\"...")
	for _, req := range []codec.Request{
		codec.Poll{},
		codec.Enqueue{Recipient: 0, Payload: []byte("pong")},
		codec.FanOut{},
	} {
		if err := d.Dispatch(ctx, 1, 0, codec.EncodeRequest(req)); err != nil {
			return err
		}
	}
	fmt.Printf("Relayed %d outbound blobs.\n", d.Relay())
	printState(d)
	return nil
}

func newNativeDriver(count int, logger *zap.Logger) *driver.Driver {
	eng := engine.NewNativeEngine()
	d := driver.New(driver.WithLogger(logger))
	for i := 0; i < count; i++ {
		d.Register(runtime.New(eng.Module(lamport.Guest{}),
			runtime.WithName(fmt.Sprintf("module-%d", i)),
			runtime.WithLogger(logger)))
	}
	return d
}

func printState(d *driver.Driver) {
	for h := uint32(0); int(h) < d.Len(); h++ {
		m := d.Runtime(h)
		fmt.Printf("\n[%d] %s\n", h, m.Name())

		snap, err := lamport.State(m.Storage())
		if err != nil {
			fmt.Printf("  storage: not protocol state (%v)\n", err)
		} else {
			fmt.Printf("  timestamp: %d\n", snap.Timestamp)
			fmt.Printf("  queue: %d pending\n", len(snap.Queue))
			for _, entry := range snap.Queue {
				fmt.Printf("    -> %d at %d: %q\n", entry.Recipient, entry.Message.At, entry.Message.Payload)
			}
		}

		for recipient, blob := range m.Outbound() {
			fmt.Printf("  outbound -> %d: %s\n", recipient, formatGroup(blob))
		}
		for _, g := range m.Inbound() {
			fmt.Printf("  inbound <- %d: %s\n", g.Sender, formatGroup(g.Blob))
		}
	}
}

func formatGroup(blob []byte) string {
	msgs, err := codec.DecodeMessages(blob)
	if err != nil {
		return fmt.Sprintf("%d opaque bytes", len(blob))
	}
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = fmt.Sprintf("{at:%d %q}", m.At, m.Payload)
	}
	return strings.Join(parts, " ")
}
