// Package internal hosts the operator-facing inspect endpoint: a read-only
// view over the Badger store plus live process statistics. Not part of the
// client protocol.
package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/shirou/gopsutil/mem"
)

// StatsProvider supplies live engine counters for the inspect page.
type StatsProvider func() map[string]any

type keyRow struct {
	Key  string `json:"key"`
	Size int    `json:"size_bytes"`
}

type inspectPage struct {
	Prefix string         `json:"prefix"`
	Keys   []keyRow       `json:"keys"`
	Stats  map[string]any `json:"stats"`
}

type InspectServer struct {
	db    *badger.DB
	stats StatsProvider
	log   *slog.Logger
}

func NewInspectServer(db *badger.DB, stats StatsProvider, log *slog.Logger) *InspectServer {
	return &InspectServer{db: db, stats: stats, log: log}
}

func (s *InspectServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/inspect", s.handleInspect)
	return mux
}

// Start serves the inspect endpoint in the background. Failures are
// logged; the inspect page is never worth crashing the relay for.
func (s *InspectServer) Start(port int) {
	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		s.log.Info("Inspect server listening", "addr", addr)
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			s.log.Warn("Inspect server stopped", "error", err)
		}
	}()
}

func (s *InspectServer) handleInspect(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = "mutes:"
	}

	page := inspectPage{Prefix: prefix, Stats: s.collectStats()}

	_ = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			page.Keys = append(page.Keys, keyRow{
				Key:  string(item.Key()),
				Size: int(item.EstimatedSize()),
			})
		}
		return nil
	})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(page)
}

func (s *InspectServer) collectStats() map[string]any {
	stats := make(map[string]any)
	if s.stats != nil {
		stats = s.stats()
	}
	stats["goroutines"] = runtime.NumGoroutine()
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["mem_used_percent"] = vm.UsedPercent
	}
	return stats
}
