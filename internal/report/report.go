// Package report renders a completed run's NodeStats into human-facing
// summary tables: network totals (including the reconciliation count) and a
// histogram of receive timestamps. It follows the
// teacher's own console-reporting shape (cmd/gprobe's use of a run-scoped
// identifier and colorized terminal tables), built on the teacher's own
// table and color dependencies.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/txrelay/simnet/internal/relay"
	"github.com/txrelay/simnet/internal/simconfig"
)

// RunID is a fresh identifier for one simulation run, used to tag exported
// metrics and log lines (spec.md §6's "ties results to one execution").
func RunID() string { return uuid.New().String() }

// Summary aggregates every node's NodeStats into the network-wide figures
// spec.md §6 lists: totals, a propagation-latency histogram bucketed by
// simconfig.Granularity, and reconciliation diagnostics.
type Summary struct {
	RunID string

	Nodes            int
	TxCreated        int64
	InvMessages      int64
	UselessInv       int64
	ReconInvMessages int64
	ReconUselessInv  int64
	Reconciliations  int64
	BandwidthBytes   int64

	// Latency counts every node's receive timestamp for every transaction
	// (the TxReceivedTimes of all nodes), bucketed into
	// simconfig.Granularity equal-width steps spanning the run. The
	// timestamps are absolute simulation times; they are not measured from
	// each transaction's creation or first sighting, and entries are not
	// grouped by transaction or by creating node.
	Latency []int

	FirstSpySuccess float64
}

// Summarize reduces a Network's per-node stats into one Summary.
func Summarize(runID string, stats map[uint32]*relay.NodeStats, stopAt float64) Summary {
	s := Summary{RunID: runID, Nodes: len(stats)}

	var allTimes []relay.TxReceivedTime
	for _, ns := range stats {
		s.TxCreated += ns.TxCreated
		s.InvMessages += ns.InvReceivedMessages
		s.UselessInv += ns.UselessInvReceivedMessages
		s.ReconInvMessages += ns.ReconInvReceivedMessages
		s.ReconUselessInv += ns.ReconUselessInvReceivedMessages
		s.Reconciliations += int64(ns.Reconcils)
		s.BandwidthBytes += ns.BandwidthBytes
		if ns.FirstSpySuccess > 0 && (s.FirstSpySuccess == 0 || ns.FirstSpySuccess < s.FirstSpySuccess) {
			s.FirstSpySuccess = ns.FirstSpySuccess
		}
		allTimes = append(allTimes, ns.TxReceivedTimes...)
	}

	s.Latency = latencyHistogram(allTimes, stopAt, simconfig.Granularity)
	return s
}

// latencyHistogram buckets every receive timestamp into buckets equal-width
// steps across [0, stopAt); a timestamp past the last step lands in the last
// bucket. It counts absolute receive times, not per-transaction propagation
// delays.
func latencyHistogram(times []relay.TxReceivedTime, stopAt float64, buckets int) []int {
	hist := make([]int, buckets)
	if stopAt <= 0 {
		return hist
	}
	width := stopAt / float64(buckets)
	for _, t := range times {
		idx := int(math.Floor(t.TxTime / width))
		if idx < 0 {
			idx = 0
		}
		if idx >= buckets {
			idx = buckets - 1
		}
		hist[idx]++
	}
	return hist
}

// WriteTable renders the Summary as a pair of colorized terminal tables:
// network totals and the latency histogram, in the teacher's style of
// highlighting counters that look anomalous (here, a non-zero useless-INV
// rate, which signals relay duplication worth a human's attention).
func WriteTable(w io.Writer, s Summary) {
	fmt.Fprintf(w, "run %s — %d nodes\n", s.RunID, s.Nodes)

	totals := tablewriter.NewWriter(w)
	totals.SetHeader([]string{"metric", "value"})
	totals.Append([]string{"tx created", fmt.Sprint(s.TxCreated)})
	totals.Append([]string{"inv messages", fmt.Sprint(s.InvMessages)})
	totals.Append([]string{"useless inv", highlightIfNonZero(s.UselessInv)})
	totals.Append([]string{"recon inv messages", fmt.Sprint(s.ReconInvMessages)})
	totals.Append([]string{"recon useless inv", highlightIfNonZero(s.ReconUselessInv)})
	totals.Append([]string{"reconciliations", fmt.Sprint(s.Reconciliations)})
	totals.Append([]string{"bandwidth (compressed bytes)", fmt.Sprint(s.BandwidthBytes)})
	if s.FirstSpySuccess > 0 {
		totals.Append([]string{"first spy success", fmt.Sprintf("%.2fs", s.FirstSpySuccess)})
	}
	totals.Render()

	hist := tablewriter.NewWriter(w)
	hist.SetHeader([]string{"bucket", "count"})
	for i, c := range s.Latency {
		hist.Append([]string{fmt.Sprint(i), fmt.Sprint(c)})
	}
	hist.Render()
}

func highlightIfNonZero(v int64) string {
	if v == 0 {
		return fmt.Sprint(v)
	}
	return color.YellowString(fmt.Sprint(v))
}

// SortedNodeIDs returns the node ids of stats in ascending order, for
// callers that need to iterate stats deterministically. Neither WriteTable
// nor the live HTTP endpoint calls it.
func SortedNodeIDs(stats map[uint32]*relay.NodeStats) []uint32 {
	ids := make([]uint32, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
