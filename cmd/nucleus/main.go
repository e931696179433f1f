package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"nucleus/config"
	"nucleus/hal"
	"nucleus/kernel"
	"nucleus/mm"
	"nucleus/monitor"
	"nucleus/sys"
	"nucleus/userland"
)

func main() {
	var (
		configPath  string
		logLevel    string
		interactive bool
	)
	flag.StringVar(&configPath, "config", "", "Boot configuration file (YAML).")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error.")
	flag.BoolVar(&interactive, "interactive", false, "Start the kernel monitor on stdin.")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "nucleus",
		Level: hclog.LevelFromString(logLevel),
	})

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, interactive, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, interactive bool, logger hclog.Logger) error {
	alloc := mm.NewFrameAllocator(cfg.MemoryFrames)
	reg := mm.NewRegistry()
	mgr := kernel.NewManager()
	clock := hal.NewMonotonic()
	proc := kernel.NewProcessor(mgr, clock, logger)
	handler := sys.NewHandler(proc, reg, clock, logger)

	heapBase := mm.DefaultHeapBase
	if cfg.HeapBase != 0 {
		heapBase = uintptr(cfg.HeapBase)
	}

	schedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The demo run ends once every configured program has exited,
	// unless the monitor keeps the kernel up for inspection.
	var remaining atomic.Int64
	drained := func() {
		if !interactive {
			cancel()
		}
	}

	for _, p := range cfg.Programs {
		prog, ok := userland.Lookup(p.Name)
		if !ok {
			return fmt.Errorf("unknown program %q (have: %s)",
				p.Name, strings.Join(userland.Names(), ", "))
		}
		copies := p.Copies
		if copies <= 0 {
			copies = 1
		}
		for i := 0; i < copies; i++ {
			spawn(mgr, handler, reg, alloc, heapBase, p.Name, prog, logger, &remaining, drained)
		}
	}

	g, gctx := errgroup.WithContext(schedCtx)
	g.Go(func() error {
		proc.RunTasks(gctx)
		return nil
	})
	if interactive {
		mon := monitor.New(mgr, alloc, clock, os.Stdin, os.Stdout, logger)
		g.Go(func() error {
			defer cancel()
			if err := mon.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("monitor: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, t := range mgr.Snapshot() {
		logger.Info("task finished",
			"pid", t.Pid(),
			"name", t.Name(),
			"status", t.Status(),
			"exit_code", t.ExitCode(),
		)
	}
	return nil
}

func spawn(
	mgr *kernel.Manager,
	handler *sys.Handler,
	reg *mm.Registry,
	alloc *mm.FrameAllocator,
	heapBase uintptr,
	name string,
	prog userland.Program,
	logger hclog.Logger,
	remaining *atomic.Int64,
	drained func(),
) {
	space := mm.NewMemorySet(reg, alloc, heapBase)
	env := &userland.Env{
		Dispatch: handler.Dispatch,
		Token:    space.Token(),
		Mem:      reg,
		Log:      logger.Named(name),
	}
	remaining.Add(1)
	entry := func() {
		// Runs via Goexit on the normal exit path too.
		defer func() {
			if remaining.Add(-1) == 0 {
				drained()
			}
		}()
		prog(env)
		env.Exit(0)
	}
	mgr.NewTask(name, space, entry)
}
