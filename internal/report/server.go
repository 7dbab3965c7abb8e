package report

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/txrelay/simnet/internal/relay"
	"github.com/txrelay/simnet/log"
)

// Server is an optional live-stats HTTP endpoint a long-running simulation
// can expose while it executes, grounded on the teacher's own probe/backend
// HTTP API surface (julienschmidt/httprouter is the teacher's router of
// choice for its RPC/API layers).
type Server struct {
	router *httprouter.Router
	stats  func() map[uint32]*relay.NodeStats
}

// NewServer builds a Server that reports live(ish) stats via statsFn on
// every request; callers typically pass a closure over a running Network's
// Stats method.
func NewServer(statsFn func() map[uint32]*relay.NodeStats) *Server {
	s := &Server{router: httprouter.New(), stats: statsFn}
	s.router.GET("/stats", s.handleStats)
	s.router.GET("/stats/:node", s.handleNodeStats)
	return s
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats()); err != nil {
		log.Error("report: failed to encode stats", "err", err)
	}
}

func (s *Server) handleNodeStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("node")
	all := s.stats()
	for nodeID, ns := range all {
		if nodeAddrString(nodeID) == id {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(ns)
			return
		}
	}
	http.NotFound(w, r)
}

func nodeAddrString(id uint32) string {
	return "node-" + itoaLocal(id)
}

func itoaLocal(id uint32) string {
	if id == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = byte('0' + id%10)
		id /= 10
	}
	return string(buf[i:])
}

// ListenAndServe starts the server on addr. It blocks until the listener
// fails or the process exits; callers typically run it in its own
// goroutine alongside the simulation's scheduler loop.
func (s *Server) ListenAndServe(addr string) error {
	log.Info("report: live stats endpoint listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}
