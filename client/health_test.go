package client

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGradeRTT(t *testing.T) {
	tt := []struct {
		rtt      time.Duration
		expected LinkQuality
	}{
		{5 * time.Millisecond, LinkExcellent},
		{49 * time.Millisecond, LinkExcellent},
		{100 * time.Millisecond, LinkGood},
		{200 * time.Millisecond, LinkFair},
		{500 * time.Millisecond, LinkPoor},
		{2 * time.Second, LinkBad},
	}
	for _, tc := range tt {
		t.Run(tc.rtt.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, gradeRTT(tc.rtt))
		})
	}
}

func TestGradeErrorRatio(t *testing.T) {
	tt := []struct {
		ratio    float64
		expected LinkQuality
	}{
		{0, LinkExcellent},
		{0.0005, LinkExcellent},
		{0.005, LinkGood},
		{0.02, LinkFair},
		{0.07, LinkPoor},
		{0.2, LinkBad},
	}
	for _, tc := range tt {
		t.Run(tc.expected.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, gradeErrorRatio(tc.ratio))
		})
	}
}

func TestPacketLossDegradesQuality(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)

	// 20% loss within one tick drops the quality immediately
	h.observe(h.sampleLoss(100, 20))
	assert.Equal(t, LinkBad, h.Quality())

	// an excellent round trip time does not mask the lossy link
	h.observeReply(5 * time.Millisecond)
	assert.Equal(t, LinkBad, h.Quality())
}

func TestLossRecoveryIsGradual(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)

	frames := uint64(1000)
	h.observe(h.sampleLoss(frames, 100))
	assert.Equal(t, LinkBad, h.Quality())

	// loss-free ticks age the gaps out of the rolling window
	for i := 0; i < errorWindowTicks; i++ {
		frames += 1000
		h.sampleLoss(frames, 100)
	}
	assert.Equal(t, LinkExcellent, h.sampleLoss(frames, 100))

	// even with a clean window the quality recovers stepwise
	expected := []LinkQuality{LinkPoor, LinkFair, LinkGood, LinkExcellent}
	for _, quality := range expected {
		for i := 0; i < improveStreak; i++ {
			h.observeReply(5 * time.Millisecond)
		}
		assert.Equal(t, quality, h.Quality())
	}
}

func TestDegradationIsImmediate(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)

	h.observe(LinkBad)
	assert.Equal(t, LinkBad, h.Quality())
}

func TestImprovementNeedsConsecutiveCleanTicks(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)
	h.observe(LinkBad)

	// four better observations are not enough
	for i := 0; i < improveStreak-1; i++ {
		h.observe(LinkExcellent)
		assert.Equal(t, LinkBad, h.Quality())
	}

	// the fifth moves the quality one single step
	h.observe(LinkExcellent)
	assert.Equal(t, LinkPoor, h.Quality())
}

func TestImprovementStreakResetsOnWorseTick(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)
	h.observe(LinkBad)

	for i := 0; i < improveStreak-1; i++ {
		h.observe(LinkExcellent)
	}
	h.observe(LinkBad) // resets the streak
	for i := 0; i < improveStreak-1; i++ {
		h.observe(LinkExcellent)
		assert.Equal(t, LinkBad, h.Quality())
	}
	h.observe(LinkExcellent)
	assert.Equal(t, LinkPoor, h.Quality())
}

func TestFullRecoveryTakesOneStepPerStreak(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)
	h.observe(LinkBad)

	expected := []LinkQuality{LinkPoor, LinkFair, LinkGood, LinkExcellent}
	for _, quality := range expected {
		for i := 0; i < improveStreak; i++ {
			h.observe(LinkExcellent)
		}
		assert.Equal(t, quality, h.Quality())
	}
}

func TestQualityChangeEmitsEvent(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)

	var changes []LinkQuality
	c.LinkChanged.Subscribe(func(quality LinkQuality) {
		changes = append(changes, quality)
	})

	h.observe(LinkFair)
	h.observe(LinkFair)
	h.observe(LinkBad)

	assert.Equal(t, []LinkQuality{LinkFair, LinkBad}, changes)
}

func TestObserveReplyUpdatesRTT(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	h := newHealthMonitor(c)

	h.observeReply(30 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, h.RTT())
	assert.Equal(t, LinkExcellent, h.Quality())
}
