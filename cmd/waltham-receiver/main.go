// Command waltham-receiver terminates the waltham remote-display
// protocol: it listens for transmitter connections, drives the
// object-protocol dispatch, and spawns a rendering worker per
// ivi_surface (§1, §6.4).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/op/go-logging"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/config"
	wlog "github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/server"
)

func main() {
	os.Exit(config.Parse(os.Args, run))
}

func run(cfg config.Config) error {
	wlog.Setup(logging.NOTICE, true)

	banner := color.New(color.FgCyan, color.Bold)
	banner.Fprintf(os.Stdout, "waltham-receiver")
	fmt.Fprintf(os.Stdout, " listening on :%d\n", cfg.Port)

	srv, err := server.New(cfg.Port, cfg.AppIDOverride, cfg.WorkerBinary)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "setup failed: %v\n", err)
		return config.SetupError{Err: err}
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGINT)
	go func() {
		// First SIGINT requests a clean stop; a second aborts the
		// process outright (§5 Cancellation, §7 Signal policy).
		<-sigCh
		wlog.Log.Notice("received SIGINT, shutting down")
		srv.Stop()
		<-sigCh
		wlog.Log.Warning("received second SIGINT, aborting")
		os.Exit(1)
	}()

	return srv.Run()
}
