package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"blackjack-observer/internal/config"
	"blackjack-observer/internal/mux"
	"blackjack-observer/pkg/ledger"
	"blackjack-observer/pkg/poller"
	"blackjack-observer/pkg/turn"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// Version is the observer version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5080", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()
	if cfg.Identity == "" {
		logrus.Fatal("missing identity in configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway := ledger.NewGateway(cfg.GatewayURL)

	bound, err := gateway.ResolveBoundAddress(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("could not resolve wallet address")
	}

	logrus.WithFields(logrus.Fields{
		"identity": cfg.Identity,
		"bound":    bound,
	}).Info("wallet handshake complete")

	p := poller.New(gateway, cfg.Identity, cfg.PollInterval(), clockwork.NewRealClock())
	if err := p.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("could not start poller")
	}

	go autoHold(ctx, p, gateway, cfg.Identity)

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	m := mux.NewMux(Version, mux.Options{
		Identity: cfg.Identity,
		Source:   p,
		Querier:  gateway,
		Actor:    gateway,
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(m)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("could not shut down cleanly")
	}

	p.Stop()
}

// autoHold watches snapshots and issues a hold whenever the local hand has
// nothing left to decide, so a 21 or a bust never sits waiting for input
func autoHold(ctx context.Context, p *poller.Poller, actor ledger.Actor, identity string) {
	id, snapshots := p.Subscribe()
	defer p.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}

			state := turn.Derive(snapshot.Table, identity, false)
			if !state.AutoHold {
				continue
			}

			logrus.WithField("seat", state.MySeat).Info("holding automatically")
			if err := actor.Hold(ctx, state.MySeat); err != nil {
				logrus.WithError(err).Error("could not auto-hold")
			}
		}
	}
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
