package client

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// LinkQuality grades the command channel's responsiveness in five
// levels. Higher values are worse.
type LinkQuality int

// All link quality levels.
const (
	LinkExcellent LinkQuality = iota
	LinkGood
	LinkFair
	LinkPoor
	LinkBad
)

func (q LinkQuality) String() string {
	switch q {
	case LinkExcellent:
		return "excellent"
	case LinkGood:
		return "good"
	case LinkFair:
		return "fair"
	case LinkPoor:
		return "poor"
	case LinkBad:
		return "bad"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

const (
	keepaliveInterval = 1 * time.Second
	// improveStreak is the number of consecutive better observations
	// needed before the link quality improves by one step. Degradation
	// is applied immediately.
	improveStreak = 5
	// deadSessionTimeout is how long the radio may stay silent before
	// the session is torn down.
	deadSessionTimeout = 15 * time.Second
	// errorWindowTicks is the length of the rolling window over which
	// the packet-error ratio is graded.
	errorWindowTicks = 10
)

// healthMonitor pings the radio once per second, grades the round trip
// time and the streaming channel's packet-error ratio into a link
// quality, and tears the session down when the radio goes silent for
// too long.
type healthMonitor struct {
	client *Client

	mu        sync.Mutex
	quality   LinkQuality
	streak    int
	lastRTT   time.Duration
	lastReply time.Time

	lossWindow [errorWindowTicks]lossSample
	lossNext   int
	prevFrames uint64
	prevGaps   uint64
	errorGrade LinkQuality

	done chan struct{}
	wg   sync.WaitGroup
}

type lossSample struct {
	frames uint64
	gaps   uint64
}

func newHealthMonitor(client *Client) *healthMonitor {
	return &healthMonitor{
		client:    client,
		quality:   LinkExcellent,
		lastReply: time.Now(),
		done:      make(chan struct{}),
	}
}

func (h *healthMonitor) start() {
	h.wg.Add(1)
	go h.run()
}

func (h *healthMonitor) stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
	h.wg.Wait()
}

func (h *healthMonitor) run() {
	defer h.wg.Done()
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.tick()
		}
	}
}

func (h *healthMonitor) tick() {
	h.mu.Lock()
	silent := time.Since(h.lastReply)
	h.mu.Unlock()

	if silent > deadSessionTimeout && !h.client.options.DisableTimeoutCheck {
		log.Printf("no reply from the radio for %v, disconnecting", silent.Round(time.Second))
		go h.client.abort()
		return
	}
	h.observe(h.sampleLoss(h.client.frameLossTotals()))
	if silent > 2*keepaliveInterval {
		h.observe(LinkBad)
	}

	sent := time.Now()
	h.client.SendCommandWithReply(func(_ uint32, _ uint32, _ string) {
		h.observeReply(time.Since(sent))
	}, "ping")
}

func (h *healthMonitor) observeReply(rtt time.Duration) {
	h.mu.Lock()
	h.lastReply = time.Now()
	h.lastRTT = rtt
	grade := gradeRTT(rtt)
	if h.errorGrade > grade {
		grade = h.errorGrade
	}
	h.mu.Unlock()

	h.client.metrics.keepaliveRTT.Set(rtt.Seconds())
	h.observe(grade)
}

// sampleLoss folds the frame and gap counts accumulated since the
// previous tick into the rolling window and grades the packet-error
// ratio over that window. A fast round trip time never masks a lossy
// link: observeReply reports the worse of the two grades.
func (h *healthMonitor) sampleLoss(frames, gaps uint64) LinkQuality {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lossWindow[h.lossNext] = lossSample{frames: frames - h.prevFrames, gaps: gaps - h.prevGaps}
	h.lossNext = (h.lossNext + 1) % len(h.lossWindow)
	h.prevFrames = frames
	h.prevGaps = gaps

	var totalFrames, totalGaps uint64
	for _, sample := range h.lossWindow {
		totalFrames += sample.frames
		totalGaps += sample.gaps
	}

	h.errorGrade = LinkExcellent
	if totalFrames > 0 {
		h.errorGrade = gradeErrorRatio(float64(totalGaps) / float64(totalFrames))
	}
	return h.errorGrade
}

func gradeRTT(rtt time.Duration) LinkQuality {
	switch {
	case rtt < 50*time.Millisecond:
		return LinkExcellent
	case rtt < 150*time.Millisecond:
		return LinkGood
	case rtt < 400*time.Millisecond:
		return LinkFair
	case rtt < 1*time.Second:
		return LinkPoor
	default:
		return LinkBad
	}
}

func gradeErrorRatio(ratio float64) LinkQuality {
	switch {
	case ratio < 0.001:
		return LinkExcellent
	case ratio < 0.01:
		return LinkGood
	case ratio < 0.05:
		return LinkFair
	case ratio < 0.1:
		return LinkPoor
	default:
		return LinkBad
	}
}

// observe feeds one graded tick into the hysteresis state machine. A
// worse observation takes effect immediately; an improvement takes one
// step only after improveStreak consecutive better observations, so the
// reported quality does not flap on a jittery link.
func (h *healthMonitor) observe(observed LinkQuality) {
	h.mu.Lock()
	previous := h.quality
	switch {
	case observed > h.quality:
		h.quality = observed
		h.streak = 0
	case observed < h.quality:
		h.streak++
		if h.streak >= improveStreak {
			h.quality--
			h.streak = 0
		}
	default:
		h.streak = 0
	}
	current := h.quality
	h.mu.Unlock()

	if current != previous {
		h.client.LinkChanged.emit(current)
	}
}

// Quality returns the current link quality.
func (h *healthMonitor) Quality() LinkQuality {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.quality
}

// RTT returns the most recent keepalive round trip time.
func (h *healthMonitor) RTT() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRTT
}
