package proctor

// Monitor counts integrity violations for one attempt. A violation is a
// visible to hidden transition; repeated hidden events without a restore in
// between count once.
type Monitor struct {
	threshold int
	count     int
	hidden    bool
}

// NewMonitor starts counting from initial, which lets a reloaded page keep
// the violations already reported for the attempt.
func NewMonitor(threshold, initial int) *Monitor {
	if threshold <= 0 {
		threshold = DefaultViolationThreshold
	}
	if initial < 0 {
		initial = 0
	}
	return &Monitor{threshold: threshold, count: initial}
}

// VisibilityLost records a hidden event and reports the count and whether
// this event was counted.
func (m *Monitor) VisibilityLost() (int, bool) {
	if m.hidden {
		return m.count, false
	}
	m.hidden = true
	m.count++
	return m.count, true
}

func (m *Monitor) VisibilityRestored() {
	m.hidden = false
}

func (m *Monitor) Exceeded() bool {
	return m.count >= m.threshold
}

func (m *Monitor) Count() int     { return m.count }
func (m *Monitor) Threshold() int { return m.threshold }
