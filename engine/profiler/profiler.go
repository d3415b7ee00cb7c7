package profiler

import (
	"log"
	"runtime"
	"time"
)

// FrameSample carries one rendered frame's CPU pass timings and submission
// volumes. Durations cover host-side work only; GPU execution is asynchronous
// and not visible here.
type FrameSample struct {
	Build     time.Duration // job flattening, sorting, validation
	Staging   time.Duration // instance marshaling and buffer writes
	Shadow    time.Duration // shadow pass encoding
	Main      time.Duration // main pass encoding
	Composite time.Duration // composite pass encoding
	UI        time.Duration // UI pass encoding

	Instances int
	Sprites   int
	Batches   int
}

// Profiler tracks frame rate, per-pass CPU timings, and memory statistics
// for performance monitoring. Outputs stats to the log at a configurable
// interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	sampleCount int
	accum       FrameSample
	lastSample  FrameSample
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// Observe records one frame's pass timings for inclusion in the next interval
// report. Call it once per rendered scene frame, before Tick.
//
// Parameters:
//   - sample: the frame's CPU timings and submission counts
func (p *Profiler) Observe(sample FrameSample) {
	p.sampleCount++
	p.accum.Build += sample.Build
	p.accum.Staging += sample.Staging
	p.accum.Shadow += sample.Shadow
	p.accum.Main += sample.Main
	p.accum.Composite += sample.Composite
	p.accum.UI += sample.UI
	p.lastSample = sample
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times,
// total memory, and per-pass CPU averages when frames were observed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		if p.sampleCount > 0 {
			n := time.Duration(p.sampleCount)
			log.Printf("[Profiler] Passes (avg): build %v | stage %v | shadow %v | main %v | composite %v | ui %v | last frame: %d instances, %d sprites, %d batches",
				p.accum.Build/n, p.accum.Staging/n, p.accum.Shadow/n, p.accum.Main/n, p.accum.Composite/n, p.accum.UI/n,
				p.lastSample.Instances, p.lastSample.Sprites, p.lastSample.Batches)
			p.accum = FrameSample{}
			p.sampleCount = 0
		}

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}
