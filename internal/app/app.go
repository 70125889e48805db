// Package app wires the bridge, the sandbox and the local HTTP surface
// together for the desktop, headless and mobile entrypoints.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/arko-chat/storebridge/internal/config"
	"github.com/arko-chat/storebridge/internal/handlers"
	"github.com/arko-chat/storebridge/internal/provider"
	"github.com/arko-chat/storebridge/internal/router"
	"github.com/arko-chat/storebridge/internal/sandbox"
	"github.com/arko-chat/storebridge/internal/service"
	"github.com/arko-chat/storebridge/internal/ws"
)

type App struct {
	logger  *slog.Logger
	store   *sandbox.Store
	sandbox *sandbox.Sandbox
	bridge  *service.StoreBridge
	handler *handlers.Handler
	srv     *http.Server
	addr    string
}

// NewSandbox builds an App backed by the local sandbox store.
func NewSandbox(cfg *config.Config, logger *slog.Logger, opener sandbox.Opener) (*App, error) {
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	store, err := sandbox.OpenStore(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}

	sb, err := sandbox.New(store, opener, sandbox.Config{
		ConsoleApplicationID: cfg.Sandbox.ConsoleApplicationID,
		PaymentTimeout:       time.Duration(cfg.Sandbox.PaymentTimeout),
		ReviewCooldown:       time.Duration(cfg.Sandbox.ReviewCooldown),
		LinkSecret:           []byte(cfg.LinkSecret),
	}, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	products := sandbox.DefaultCatalog()
	if cfg.Sandbox.CatalogPath != "" {
		products, err = sandbox.LoadCatalogFile(cfg.Sandbox.CatalogPath)
		if err != nil {
			store.Close()
			return nil, err
		}
	}
	if err := sb.Catalog().Seed(products); err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("sandbox catalog seeded", "products", len(products), "path", cfg.Sandbox.CatalogPath)

	a := newApp(sb.Reviews(), sb, cfg.Bridge, sb, logger)
	a.store = store
	return a, nil
}

// NewNative builds an App on top of vendor providers supplied by the host.
func NewNative(review provider.ReviewProvider, factory provider.BillingFactory, opts service.Options, logger *slog.Logger) *App {
	return newApp(review, factory, opts, nil, logger)
}

func newApp(
	review provider.ReviewProvider,
	factory provider.BillingFactory,
	opts service.Options,
	sb *sandbox.Sandbox,
	logger *slog.Logger,
) *App {
	bridge := service.NewStoreBridge(review, factory, opts, logger)
	hub := ws.NewHub(logger)
	h := handlers.New(bridge, sb, hub, logger)
	return &App{
		logger:  logger,
		sandbox: sb,
		bridge:  bridge,
		handler: h,
		srv:     &http.Server{Handler: router.New(h)},
	}
}

func (a *App) Bridge() *service.StoreBridge {
	return a.bridge
}

func (a *App) Sandbox() *sandbox.Sandbox {
	return a.sandbox
}

func (a *App) Handler() *handlers.Handler {
	return a.handler
}

// Start serves on listenAddr in the background and returns the base URL.
func (a *App) Start(listenAddr string) (string, error) {
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	a.addr = baseURL(listener.Addr().(*net.TCPAddr))
	if a.sandbox != nil {
		a.sandbox.SetBaseURL(a.addr)
	}
	a.logger.Info("server starting", "addr", a.addr)

	go func() {
		if err := a.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", "err", err)
		}
	}()
	return a.addr, nil
}

// baseURL addresses the listener. Wildcard and loopback listeners are
// reached through 127.0.0.1; a concrete LAN address is kept so payment QR
// codes open on other devices.
func baseURL(addr *net.TCPAddr) string {
	host := "127.0.0.1"
	if addr.IP != nil && !addr.IP.IsLoopback() && !addr.IP.IsUnspecified() {
		host = addr.IP.String()
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(addr.Port))
}

func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.srv.Shutdown(ctx)
	if a.store != nil {
		err = errors.Join(err, a.store.Close())
	}
	return err
}
