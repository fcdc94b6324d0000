// Command rtpsd runs the discovery daemon: one PDP instance over a real
// UDP transport, with an admin/metrics server alongside it. Wiring and
// shutdown follow controller/cmd/destination/main.go's pattern: an admin
// server goroutine, a signal channel, and a synchronous stop sequence.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/runconduit/rtps-discovery/internal/admin"
	"github.com/runconduit/rtps-discovery/internal/config"
	"github.com/runconduit/rtps-discovery/internal/transport/udp"
	"github.com/runconduit/rtps-discovery/pkg/pdp"
	"github.com/runconduit/rtps-discovery/pkg/runtime"
)

func main() {
	fs := pflag.NewFlagSet("rtpsd", pflag.ExitOnError)
	opts := config.BindFlags(fs)
	logLevel := fs.String("log-level", log.InfoLevel.String(), "log level: panic, fatal, error, warn, info, debug")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %s", err)
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid log-level %q: %s", *logLevel, err)
	}
	log.SetLevel(level)

	attrs, err := opts.Resolve()
	if err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}

	registry := prometheus.NewRegistry()
	rt := runtime.New(attrs.DomainID, attrs.ParticipantID, log.StandardLogger(), registry)

	t := udp.New(nil)
	p := pdp.New(rt, t)
	if err := p.Init(attrs); err != nil {
		log.Fatalf("failed to initialize discovery: %s", err)
	}

	adminServer := admin.NewServer(opts.AdminAddr, registry, p)
	go func() {
		log.Infof("starting admin server on %s", opts.AdminAddr)
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("admin server error: %s", err)
		}
	}()

	p.Announce(true)
	log.Infof("rtpsd running: domain=%d participant=%d name=%q", attrs.DomainID, attrs.ParticipantID, attrs.ParticipantName)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	p.Stop()
	if err := t.Close(); err != nil {
		log.Warnf("error closing transport: %s", err)
	}
	if err := adminServer.Shutdown(context.Background()); err != nil {
		log.Warnf("error shutting down admin server: %s", err)
	}
}
