package sim

import "github.com/skanda-m/gravsim/internal/body"

// Severity grades controller feedback shown by the driver.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Feedback is a human-readable controller message for the driver UI.
type Feedback struct {
	Severity Severity
	Message  string
}

// Directive is what a controller may hand back before a step. Every field
// is optional; a nil Directive is a no-op.
type Directive struct {
	// Overrides are merged field-wise into the live config.
	Overrides *Overrides
	// Inject replaces the acceleration-injection function for this and all
	// subsequent steps.
	Inject AccelFunc
	// Feedback surfaces a status message to the driver.
	Feedback *Feedback
}

// Controller is the scenario-pluggable hook invoked before each step.
// It sees the live body slice and may apply corrections to velocities in
// place; the integrator applies any returned directive before staging.
// Controllers keep their own state across invocations and are never shared
// between integrator instances.
type Controller interface {
	BeforeStep(bodies []body.Body, t, dt float64) *Directive
}
