package report

import (
	"os"

	"github.com/shirou/gopsutil/process"

	"github.com/txrelay/simnet/log"
)

// ResourceSample is a point-in-time snapshot of the simulator process's own
// resource consumption, taken with gopsutil (the teacher's library for
// sampling process health). Nothing in the simulator takes or logs samples
// on its own; SampleResources is called only by callers that want one.
type ResourceSample struct {
	CPUPercent    float64
	MemoryRSSMiB  float64
	NumGoroutines int
}

// SampleResources reads the current process's CPU and memory usage. Errors
// are logged and a zero-value sample is returned rather than propagated:
// resource reporting is a diagnostic nicety, never load-bearing for the
// simulation itself.
func SampleResources() ResourceSample {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("report: failed to open self process handle", "err", err)
		return ResourceSample{}
	}
	cpu, err := proc.CPUPercent()
	if err != nil {
		log.Warn("report: failed to sample cpu", "err", err)
	}
	mem, err := proc.MemoryInfo()
	var rss float64
	if err != nil {
		log.Warn("report: failed to sample memory", "err", err)
	} else {
		rss = float64(mem.RSS) / (1024 * 1024)
	}
	return ResourceSample{CPUPercent: cpu, MemoryRSSMiB: rss}
}
