package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/gridswap/internal/x11"
)

func runDesktop(args []string) int {
	fs := flag.NewFlagSet("desktop", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	bf := addBoardFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridswap desktop [--path PATH] [--sections 6,4] [--board NAME] [--store DIR]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Lay a board out over the monitor under the pointer and drive it with the")
		fmt.Fprintln(os.Stderr, "desktop.drag_button binding (default Mod4-1). desktop.cancel_key cancels")
		fmt.Fprintln(os.Stderr, "the drag. With --board the arrangement is saved after every drag.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, store, b, locked, err := bf.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := newLogger(cfg, os.Stderr)

	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	monitor, err := conn.GetActiveMonitor()
	if err != nil {
		log.Fatalf("Failed to find monitor: %v", err)
	}

	host, err := x11.NewHost(b, monitor.Rect(), x11.HostOptions{
		Config: cfg,
		Store:  store,
		Name:   *bf.name,
		Locked: locked,
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := host.Bind(conn, cfg.Desktop); err != nil {
		log.Fatalf("Failed to bind: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		conn.Quit()
	}()

	logger.Info("desktop host started", "monitor", monitor.Name, "button", cfg.Desktop.DragButton, "items", len(host.Session().Frames()))
	conn.EventLoop()
	return 0
}
