package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreman2200/wordclock/internal/matrix"
	"github.com/coreman2200/wordclock/internal/preview"
	"github.com/coreman2200/wordclock/internal/render"
	"github.com/coreman2200/wordclock/internal/settings"
	"github.com/coreman2200/wordclock/internal/sweep"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		ff   frameFlags
		addr string
	)
	cmd := &cobra.Command{
		Use:   "serve [row0 ... row15]",
		Short: "Keep the panel lit and mirror it to websocket clients",
		Args:  cobra.MaximumNArgs(matrix.Rows),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openSettings()
			if err != nil {
				return err
			}
			defer closeStore()
			// flags change the look of this run only, the record keeps its own values
			m, lk, err := ff.build(args)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Preview.Addr
			}

			hub := preview.NewHub(a.cfg.NumLEDs, a.layout.Name(), a.log)
			if !strings.EqualFold(a.cfg.Driver, "preview") {
				next, err := a.openStrip()
				if err != nil {
					return err
				}
				hub.Next = next
			}
			defer hub.Close()
			hub.Apply = saveOnApply(store)

			e, err := a.newEngine(hub)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         addr,
				Handler:      hub.Handler(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  60 * time.Second,
			}
			go func() {
				a.log.Info().Str("addr", addr).Str("driver", hub.Signature()).Msg("HTTP server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.log.Error().Err(err).Msg("http server stopped")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = runLoop(ctx, a, e, hub, store, m, lk)

			a.log.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
			return err
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, defaults to preview.addr")
	return cmd
}

// saveOnApply applies a /control change to the record and saves it right away.
func saveOnApply(store *settings.Store) func(key, value string) error {
	return func(k, v string) error {
		if err := store.Apply(k, v); err != nil {
			return err
		}
		return store.Save()
	}
}

// runLoop redraws whenever the stored record changes and runs queued sweeps.
// Color and brightness come from lk when set there, otherwise from the record.
func runLoop(ctx context.Context, a *app, e *render.Engine, hub *preview.Hub, store *settings.Store, m matrix.Matrix, lk look) error {
	fps := max(1, a.cfg.FPS)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var (
		shown  bool
		last   settings.Record
		runner *sweep.Runner
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if k := hub.TakeSweep(); k != sweep.None {
			runner = sweep.NewRunner(sweep.Plan{Kind: k}, a.layout)
		}
		if runner != nil {
			ok, err := runner.Step(hub)
			if err != nil {
				return err
			}
			if ok {
				continue
			}
			runner, shown = nil, false
		}

		rec := store.Record()
		if shown && rec == last {
			continue
		}
		steps := 1
		if shown && rec.Transition == settings.TransitionFade {
			steps = fps / 2
		}
		shown, last = true, rec
		color, brightness := lk.resolve(rec)
		if err := e.Transition(m, color, brightness, steps); err != nil {
			a.log.Error().Err(err).Msg("render failed")
			continue
		}
		a.log.Debug().Int("steps", steps).Float64("total_ms", e.Last.TotalMS).Msg("frame shown")
	}
}
