package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// VecTimer times an operation and observes the duration
// on an ObserverVec, with labels decided once the operation
// is done. Use NewVecTimer to create new instances.
type VecTimer struct {
	begin time.Time
	vec   prometheus.ObserverVec
}

// NewVecTimer starts a new VecTimer.
//
//    func Hook() (err error) {
//        timer := NewVecTimer(durations)
//        defer func() { timer.ObserveErr(err, prometheus.Labels{LabelHook: "install"}) }()
//        // Do actual work.
//    }
func NewVecTimer(v prometheus.ObserverVec) *VecTimer {
	return &VecTimer{
		begin: time.Now(),
		vec:   v,
	}
}

// ObserveWith observes the duration since the VecTimer was created
// with the given labels. The observed duration is also returned.
func (t *VecTimer) ObserveWith(labels prometheus.Labels) time.Duration {
	d := time.Since(t.begin)
	if t.vec != nil {
		t.vec.With(labels).Observe(d.Seconds())
	}
	return d
}

// ObserveErr is like ObserveWith, but also sets LabelStatus
// based on whether err is nil.
func (t *VecTimer) ObserveErr(err error, labels prometheus.Labels) time.Duration {
	l := make(prometheus.Labels, len(labels)+1)
	for k, v := range labels {
		l[k] = v
	}
	l[LabelStatus] = StatusSuccess
	if err != nil {
		l[LabelStatus] = StatusError
	}
	return t.ObserveWith(l)
}
