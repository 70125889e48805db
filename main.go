package main

import (
	"os"

	webview "github.com/webview/webview_go"

	"github.com/arko-chat/storebridge/internal/app"
	"github.com/arko-chat/storebridge/internal/config"
	"github.com/arko-chat/storebridge/internal/logger"
	"github.com/arko-chat/storebridge/internal/sandbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	os.Setenv("WEBKIT_DISABLE_COMPOSITING_MODE", "0")
	os.Setenv("WEBVIEW2_ADDITIONAL_BROWSER_ARGUMENTS", "--enable-gpu")

	a, err := app.NewSandbox(cfg, slogger, sandbox.BrowserOpener{})
	if err != nil {
		slogger.Error("failed to start sandbox", "err", err)
		os.Exit(1)
	}

	addr, err := a.Start(cfg.ListenAddr)
	if err != nil {
		slogger.Error("failed to start server", "err", err)
		os.Exit(1)
	}

	w := webview.New(true)
	defer w.Destroy()
	w.SetTitle("StoreBridge")
	w.SetSize(1040, 768, webview.HintMin)
	w.Navigate(addr)
	w.Init(`
    document.addEventListener("click", function(e) {
        const a = e.target.closest("a");
        if (!a || !a.href) return;
        const url = a.href;
        if (url.startsWith("http://127.0.0.1") || url.startsWith("/")) return;
        e.preventDefault();
        openExternal(url);
    });
`)
	w.Bind("openExternal", func(url string) error {
		return sandbox.BrowserOpener{}.Open(url)
	})
	w.Run()

	slogger.Info("window closed, shutting down")
	if err := a.Close(); err != nil {
		slogger.Error("shutdown failed", "err", err)
	}
}
