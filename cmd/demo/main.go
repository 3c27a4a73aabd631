// Command demo wires a netsim Orchestrator end-to-end against the
// vectorsim example Simulation: an Authority instance serving websocket
// connections, logging through the structured router to a console sink.
// Grounded on the teacher's cmd/server/main.go + internal/app/app.go
// (router construction, sink wiring, HTTP server bring-up).
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"netsim"
	"netsim/examples/vectorsim"
	"netsim/internal/observability"
	"netsim/internal/telemetry"
	"netsim/logging"
	"netsim/logging/sinks"
	"netsim/transport/ws"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	stdLogger := log.Default()
	telemetryLogger := telemetry.WrapLogger(stdLogger)

	logCfg := logging.DefaultConfig()
	router, err := logging.NewRouter(nil, logCfg, []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout, logCfg.Console)},
	})
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	obsCfg := observability.Config{EnableDebugCapture: true}
	if raw := os.Getenv("ENABLE_DEBUG_CAPTURE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			obsCfg.EnableDebugCapture = value
		} else {
			telemetryLogger.Printf("invalid ENABLE_DEBUG_CAPTURE=%q: %v", raw, err)
		}
	}

	driver := &vectorsim.Driver{Name: "demo-authority"}
	sim := vectorsim.Simulation{}
	metrics := &logging.Metrics{}

	orchestrator := netsim.NewOrchestrator[vectorsim.Input, vectorsim.Sync, vectorsim.Aux](
		driver,
		sim,
		netsim.WithDeps[vectorsim.Input, vectorsim.Sync, vectorsim.Aux](netsim.Deps{
			Logger:    stdLogger,
			Metrics:   metrics,
			Publisher: router,
		}),
		netsim.WithDebugCapture[vectorsim.Input, vectorsim.Sync, vectorsim.Aux](obsCfg.EnableDebugCapture),
	)
	orchestrator.InitializeForRole(netsim.Authority, netsim.InitParams{}.Defaults())

	telemetryMetrics := telemetry.WrapMetrics(metrics)
	telemetryMetrics.Add("demo.orchestrators_started", 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handler := ws.NewHandler[vectorsim.Input, vectorsim.Sync, vectorsim.Aux](orchestrator, netsim.TargetAutonomousProxy, ws.Config{Logger: stdLogger})
		if err := handler.Serve(w, r); err != nil {
			telemetryLogger.Printf("websocket session ended: %v", err)
		}
	})

	addr := ":8080"
	telemetryLogger.Printf("demo authority listening on %s", addr)
	srv := &http.Server{Addr: addr, Handler: mux}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
