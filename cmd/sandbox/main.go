// Command sandbox runs the store bridge and its sandbox store without a
// window and opens the shell page in the system browser.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/toqueteos/webbrowser"

	"github.com/arko-chat/storebridge/internal/app"
	"github.com/arko-chat/storebridge/internal/config"
	"github.com/arko-chat/storebridge/internal/logger"
	"github.com/arko-chat/storebridge/internal/sandbox"
)

func main() {
	noBrowser := flag.Bool("no-browser", false, "do not open the shell page")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	var opener sandbox.Opener = sandbox.BrowserOpener{}
	if *noBrowser {
		opener = sandbox.OpenerFunc(func(url string) error {
			slogger.Info("open in a browser to continue", "url", url)
			return nil
		})
	}

	a, err := app.NewSandbox(cfg, slogger, opener)
	if err != nil {
		slogger.Error("failed to start sandbox", "err", err)
		os.Exit(1)
	}

	addr, err := a.Start(cfg.ListenAddr)
	if err != nil {
		slogger.Error("failed to start server", "err", err)
		os.Exit(1)
	}

	if !*noBrowser {
		if err := webbrowser.Open(addr); err != nil {
			slogger.Warn("could not open browser", "addr", addr, "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slogger.Info("shutting down")
	if err := a.Close(); err != nil {
		slogger.Error("shutdown failed", "err", err)
		os.Exit(1)
	}
}
