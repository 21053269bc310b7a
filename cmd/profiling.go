package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spiffcs/ghusers/internal/log"
)

// Profiler writes the CPU, heap and execution-trace profiles requested by
// --cpuprofile, --memprofile and --trace around one command.
type Profiler struct {
	cpuPath   string
	memPath   string
	tracePath string

	// stops runs in reverse order on Stop.
	stops []func()
}

// NewProfiler returns a profiler; empty paths disable that profile.
func NewProfiler(cpuPath, memPath, tracePath string) *Profiler {
	return &Profiler{cpuPath: cpuPath, memPath: memPath, tracePath: tracePath}
}

// Start begins the CPU profile and the trace. If either fails, whatever
// already started is stopped.
func (p *Profiler) Start() error {
	if p.cpuPath == "" && p.memPath == "" && p.tracePath == "" {
		return nil
	}
	log.Debug("profiling enabled", "cpu", p.cpuPath, "mem", p.memPath, "trace", p.tracePath)

	if p.cpuPath != "" {
		if err := p.startFile(p.cpuPath, "CPU profile", pprof.StartCPUProfile, pprof.StopCPUProfile); err != nil {
			return err
		}
	}
	if p.tracePath != "" {
		if err := p.startFile(p.tracePath, "trace", trace.Start, trace.Stop); err != nil {
			p.Stop()
			return err
		}
	}
	if p.memPath != "" {
		p.stops = append(p.stops, p.writeHeap)
	}
	return nil
}

func (p *Profiler) startFile(path, what string, start func(io.Writer) error, stop func()) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", what, err)
	}
	if err := start(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not start %s: %w", what, err)
	}
	p.stops = append(p.stops, func() {
		stop()
		if err := f.Close(); err != nil {
			log.Warn("could not close profile", "kind", what, "error", err)
		}
	})
	return nil
}

// writeHeap runs first on Stop so the heap profile sees the finished command.
func (p *Profiler) writeHeap() {
	f, err := os.Create(p.memPath)
	if err != nil {
		log.Warn("could not create memory profile", "error", err)
		return
	}
	defer f.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Warn("could not write memory profile", "error", err)
	}
}

// Stop ends every started profile. It is safe to call more than once.
func (p *Profiler) Stop() {
	for i := len(p.stops) - 1; i >= 0; i-- {
		p.stops[i]()
	}
	p.stops = nil
}
