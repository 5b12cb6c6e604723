// Package receiver implements the capture loop: the outer
// readiness-poll loop that pulls frames from a capture.Source, hands
// them to a controller.Controller, and drives the capture through its
// lifecycle states.
package receiver

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/oresat/dxwifi-receiver/capture"
	"github.com/oresat/dxwifi-receiver/config"
	"github.com/oresat/dxwifi-receiver/controller"
	dxstats "github.com/oresat/dxwifi-receiver/stats"
)

// Receiver runs one capture to completion.
type Receiver struct {
	cfg    config.Config
	source capture.Source
	ctrl   *controller.Controller
	log    *log.Logger
}

// New returns a Receiver driving source through ctrl.
func New(cfg config.Config, source capture.Source, ctrl *controller.Controller, logger *log.Logger) *Receiver {
	return &Receiver{cfg: cfg, source: source, ctrl: ctrl, log: logger}
}

// BreakLoop stops the capture from another goroutine (e.g. a signal
// handler). Safe to call at any point, including before Run starts or
// after it returns.
func (r *Receiver) BreakLoop() {
	r.source.BreakLoop()
}

// Run executes the capture loop until one of its terminal conditions
// is reached: capture_timeout_seconds of consecutive empty
// polls (TIMED_OUT), an external BreakLoop, source exhaustion, or a
// PREAMBLE arriving after data (DEACTIVATED), or ctx being canceled
// (also DEACTIVATED). A
// transient read error is logged and the loop continues — it is not
// itself terminal. Run always flushes any staged data before
// returning, and always returns a final stats.Capture snapshot.
func (r *Receiver) Run(ctx context.Context) (dxstats.Capture, error) {
	emptyPolls := 0
	maxEmptyPolls := r.emptyPollBudget()
	dispatched := 0

	for {
		// External stop and context cancellation are only checked once
		// per dispatch_count batch, mirroring pcap_dispatch's own
		// batching rather than testing a stop flag on every single
		// frame.
		if dispatched%r.cfg.DispatchCount == 0 {
			select {
			case <-ctx.Done():
				return r.finish(dxstats.DEACTIVATED, nil)
			default:
			}
		}

		frame, info, err := r.source.ReadFrame()
		switch {
		case err == nil:
			emptyPolls = 0
			r.ctrl.ProcessFrame(frame, info)
			dispatched++

			if r.ctrl.EndCapture() {
				return r.finish(dxstats.DEACTIVATED, nil)
			}

		case errors.Is(err, capture.ErrTimeout):
			emptyPolls++
			if emptyPolls >= maxEmptyPolls {
				return r.finish(dxstats.TIMEDOUT, nil)
			}

		case errors.Is(err, capture.ErrEOF):
			return r.finish(dxstats.DEACTIVATED, nil)

		default:
			r.log.Error("capture read failed, continuing", "err", err)
		}
	}
}

// emptyPollBudget converts capture_timeout_seconds into a count of
// consecutive ErrTimeout polls, since each poll already waits up to
// the source's own packet-buffer timeout — see capture.Source's doc
// comment for why a readiness-with-timeout wait collapses to repeated
// bounded reads here.
func (r *Receiver) emptyPollBudget() int {
	pbTimeoutMS := r.cfg.PBTimeoutMS
	if pbTimeoutMS <= 0 {
		pbTimeoutMS = 100
	}
	budget := (r.cfg.CaptureTimeoutSeconds * 1000) / pbTimeoutMS
	if budget < 1 {
		budget = 1
	}
	return budget
}

// finish flushes any staged payload, gathers source-level statistics
// into the final stats.Capture, and sets the terminal state.
func (r *Receiver) finish(state dxstats.State, cause error) (dxstats.Capture, error) {
	if err := r.ctrl.Flush(); err != nil {
		r.log.Error("final flush failed", "err", err)
	}
	r.ctrl.SetState(state)

	if pcapStats, err := r.source.Stats(); err == nil {
		r.ctrl.SetPcapStats(pcapStats)
	} else {
		r.log.Debug("source stats unavailable", "err", err)
	}

	r.log.Info("capture finished", "state", state.String())
	return r.ctrl.Stats(), cause
}
