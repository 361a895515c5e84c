package charm

import (
	"context"
	"fmt"
	"time"
)

// CheckTimeout bounds a Nagios check, including retries. It is
// below the 10 second default timeout of check_nrpe.
const CheckTimeout = 8 * time.Second

// Nagios plugin exit codes.
const (
	ExitOK       = 0
	ExitWarning  = 1
	ExitCritical = 2
	ExitUnknown  = 3
)

var exitNames = map[int]string{
	ExitOK:       "OK",
	ExitWarning:  "WARNING",
	ExitCritical: "CRITICAL",
	ExitUnknown:  "UNKNOWN",
}

// CheckResult is the outcome of a Nagios check.
type CheckResult struct {
	Code    int
	Message string
}

func (r CheckResult) String() string {
	name, ok := exitNames[r.Code]
	if !ok {
		name = exitNames[ExitUnknown]
	}
	return fmt.Sprintf("%s - %s", name, r.Message)
}

// CheckHealth is a Nagios check of the cluster health.
func (c *Charm) CheckHealth(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()
	v := c.Prober.Check(ctx)
	c.instrumentation().ObserveVerdict(v)
	if !v.Healthy {
		return CheckResult{ExitCritical, v.Reason}
	}
	return CheckResult{ExitOK, v.Reason}
}

// CheckService is a Nagios check that the service is running.
func (c *Charm) CheckService(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()
	running, err := c.Service().Running(ctx)
	switch {
	case err != nil:
		return CheckResult{ExitUnknown, fmt.Sprintf("error checking %s: %s", c.ServiceName, err)}
	case !running:
		return CheckResult{ExitCritical, fmt.Sprintf("%s is not running", c.ServiceName)}
	default:
		return CheckResult{ExitOK, fmt.Sprintf("%s is running", c.ServiceName)}
	}
}
