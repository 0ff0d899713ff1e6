package roll

import (
	"slices"
	"time"
)

type (
	// Alerts is the view of the transient notices shown to the user.
	Alerts Model

	// Alert is a transient notice. Alerts with the same non-empty Name replace
	// each other, so a repeating failure shows up only once.
	Alert struct {
		Name      string
		Priority  AlertPriority
		Message   string
		Duration  time.Duration
		FadeLevel float64
	}

	AlertPriority int
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

const fadeSpeed = 5 // fade levels per second

func (m *Model) Alerts() *Alerts { return (*Alerts)(m) }

func (p AlertPriority) String() string {
	switch p {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Iterate yields the alerts, newest last.
func (m *Alerts) Iterate(yield func(index int, alert Alert) bool) {
	for i, a := range m.alerts {
		if !yield(i, a) {
			return
		}
	}
}

func (m *Alerts) Len() int { return len(m.alerts) }

// Update advances the alerts by d: alerts fade in, stay for their duration
// and fade out, after which they are removed. It reports whether some alert
// is still fading, i.e. whether the UI should redraw soon.
func (m *Alerts) Update(d time.Duration) (animating bool) {
	step := d.Seconds() * fadeSpeed
	for i := range m.alerts {
		a := &m.alerts[i]
		if a.Duration >= d {
			a.Duration -= d
			if a.FadeLevel < 1 {
				animating = true
				a.FadeLevel = min(1, a.FadeLevel+step)
			}
		} else {
			a.Duration = 0
			if a.FadeLevel > 0 {
				animating = true
				a.FadeLevel = max(0, a.FadeLevel-step)
			}
		}
	}
	m.alerts = slices.DeleteFunc(m.alerts, func(a Alert) bool {
		return a.Duration == 0 && a.FadeLevel == 0
	})
	return
}

func (m *Alerts) Add(message string, priority AlertPriority) {
	m.AddNamed("", message, priority)
}

func (m *Alerts) AddNamed(name, message string, priority AlertPriority) {
	m.AddAlert(Alert{Name: name, Priority: priority, Message: message, Duration: defaultAlertDuration})
}

func (m *Alerts) AddAlert(a Alert) {
	if a.Name != "" {
		for i := range m.alerts {
			if m.alerts[i].Name == a.Name {
				a.FadeLevel = m.alerts[i].FadeLevel
				m.alerts[i] = a
				return
			}
		}
	}
	m.alerts = append(m.alerts, a)
}
