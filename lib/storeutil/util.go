package storeutil

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/tabstore/tabstore/lib/logging"
	"github.com/tabstore/tabstore/lib/manager"
	"github.com/tabstore/tabstore/lib/rawstore"
)

// probeKey is written and immediately removed by Available.
const probeKey = "__storage_probe__"

// --------------------------------------------------------------------------
// Availability Probe
// --------------------------------------------------------------------------

// Available reports whether the raw store accepts writes. It performs a
// sentinel write/read/remove cycle; a nil store, a rejected write or a
// readback mismatch all report false.
func Available(raw rawstore.Store) bool {
	if raw == nil {
		return false
	}
	if err := raw.Set(probeKey, "1"); err != nil {
		return false
	}
	v, ok := raw.Get(probeKey)
	raw.Remove(probeKey)
	return ok && v == "1"
}

// --------------------------------------------------------------------------
// Export / Import
// --------------------------------------------------------------------------

// Export serializes the entire raw store contents (all keys, not just
// managed ones) to indented JSON.
func Export(raw rawstore.Store) ([]byte, error) {
	if raw == nil {
		return nil, rawstore.ErrUnavailable
	}
	dump := make(map[string]string, raw.Len())
	for _, key := range raw.Keys() {
		if v, ok := raw.Get(key); ok {
			dump[key] = v
		}
	}
	return json.MarshalIndent(dump, "", "  ")
}

// Import loads a JSON object of key/value pairs into the raw store and
// returns the number of entries written. Entries whose value is not a JSON
// string are skipped rather than failing the whole import.
func Import(raw rawstore.Store, data []byte) (int, error) {
	if raw == nil {
		return 0, rawstore.ErrUnavailable
	}
	var dump map[string]json.RawMessage
	if err := json.Unmarshal(data, &dump); err != nil {
		return 0, err
	}
	count := 0
	for key, rawVal := range dump {
		var v string
		if err := json.Unmarshal(rawVal, &v); err != nil {
			continue
		}
		if err := raw.Set(key, v); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// --------------------------------------------------------------------------
// Expiration Sweeper
// --------------------------------------------------------------------------

// Sweeper periodically purges expired records through a manager. Start and
// Stop are safe to call concurrently; once stopped, a sweeper can't be
// started again.
type Sweeper struct {
	mgr       *manager.Manager
	interval  time.Duration
	isRunning atomic.Bool
	stop      chan struct{}
	log       logging.ILogger
}

// NewSweeper creates a sweeper over mgr ticking at the given interval.
func NewSweeper(mgr *manager.Manager, interval time.Duration) *Sweeper {
	return &Sweeper{
		mgr:      mgr,
		interval: interval,
		stop:     make(chan struct{}),
		log:      logging.CreateLogger("sweeper"),
	}
}

// Start launches the background sweep loop. If the sweeper is already
// running, this does nothing.
func (s *Sweeper) Start() {
	if s.isRunning.CompareAndSwap(false, true) {
		go s.run()
	}
}

// Stop terminates the sweep loop. If the sweeper is not running, this does
// nothing.
func (s *Sweeper) Stop() {
	if s.isRunning.CompareAndSwap(true, false) {
		close(s.stop)
	}
}

func (s *Sweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.mgr.CleanupExpired(); n > 0 {
				s.log.Debugf("purged %d expired record(s)", n)
			}
		}
	}
}
