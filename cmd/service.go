package cmd

import (
	"context"
	"net"
	"net/http"

	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/metrics"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const metricsNamespace = "webhook_relay"

func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "service",
		Aliases:     []string{"s", "serve", "standalone", "server"},
		Short:       "Serve the relay over plain HTTP",
		Annotations: map[string]string{modeAnnotation: config.ModeService},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd)
		},
	}
	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)
	bindEnvMap(cmd, svcEnvMapInt64)

	return cmd
}

func runService(cmd *cobra.Command) error {
	logger.Info("spawning...")
	m := metrics.New(metricsNamespace)
	rtm, err := setup(cmd, m)
	if err != nil {
		return errors.Wrap(err, "failed to setup service")
	}

	logger.Debug("creating HTTP server...")
	s := &http.Server{
		Handler:      newServiceMux(rtm, m),
		Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
		WriteTimeout: config.Service.Timeout,
		ReadTimeout:  config.Service.Timeout,
		IdleTimeout:  config.Service.Timeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
		serverErrors <- s.ListenAndServe()
	}()

	select {
	case err = <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
		logger.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), config.Service.Timeout)
		defer cancel()
		if err = s.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "graceful shutdown failed")
		}
		return nil
	}
}

// newServiceMux routes the relay path through the metrics middleware and adds the metrics and health endpoints.
func newServiceMux(relayHandler http.Handler, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(config.Service.Path, m.HTTPMiddleware(relayHandler))
	if p := config.Service.MetricsPath; p != "" && p != config.Service.Path {
		mux.Handle(p, m.Handler())
	}
	if p := config.Service.HealthPath; p != "" && p != config.Service.Path && p != config.Service.MetricsPath {
		mux.HandleFunc(p, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
	}
	return mux
}
