package controlchannel

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AJITHPRASAD95/door1/pkg/metrics"
)

// Sweeper periodically evicts registry entries that have gone silent
// beyond the stale threshold. It is the only mechanism that reclaims
// sessions for devices that vanished without a clean disconnect (power
// loss, network partition), and it runs independent of request traffic.
type Sweeper struct {
	ctrl      *Controller
	interval  time.Duration
	threshold time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewSweeper(ctrl *Controller, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{
		ctrl:      ctrl,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop in the background until Stop is called.
func (sw *Sweeper) Start() {
	go sw.run()
}

// Stop terminates the sweep loop and waits for it to exit.
func (sw *Sweeper) Stop() {
	close(sw.stopCh)
	<-sw.doneCh
}

func (sw *Sweeper) run() {
	defer close(sw.doneCh)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"interval":  sw.interval.String(),
		"threshold": sw.threshold.String(),
	}).Info("liveness sweeper started")

	for {
		select {
		case now := <-ticker.C:
			sw.sweep(now.UTC())
		case <-sw.stopCh:
			log.Info("liveness sweeper stopped")
			return
		}
	}
}

func (sw *Sweeper) sweep(now time.Time) {
	removed := sw.ctrl.registry.RemoveStale(now, sw.threshold)
	if len(removed) == 0 {
		return
	}

	for _, sess := range removed {
		log.WithFields(log.Fields{
			"device_id":    sess.DeviceID,
			"last_seen_at": sess.LastSeenAt,
		}).Warn("liveness sweeper evicted a stale session")

		metrics.StaleEvictionsTotal.Inc()

		// Drop the connection too; the transport-level keep-alive missed
		// this one.
		sess.Transport().Terminate()
	}

	// Evictions produce the same roster notification as explicit
	// disconnects.
	sw.ctrl.publishRoster()
}
