package doctor

import (
	"context"
	"strings"

	"github.com/hay-kot/jsob/internal/core/transform"
)

// probeSource exercises identifier mangling inside a function scope.
const probeSource = `function greet(message) { var greeting = "hi " + message; return greeting; }`

// EngineCheck runs both methods over a small sample script.
type EngineCheck struct {
	transformer *transform.Service
}

// NewEngineCheck creates a new engine check.
func NewEngineCheck(t *transform.Service) *EngineCheck {
	return &EngineCheck{transformer: t}
}

func (c *EngineCheck) Name() string {
	return "Transform Engine"
}

func (c *EngineCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, m := range transform.Methods() {
		label := m.String()
		out, err := c.transformer.Transform(probeSource, m)
		switch {
		case err != nil:
			result.fail(label, "%v", err)
		case out == "":
			result.fail(label, "produced empty output")
		case m == transform.MethodObfuscate && strings.Contains(out, "greeting"):
			result.warn(label, "local identifiers were not renamed")
		default:
			result.pass(label, "%d -> %d bytes", len(probeSource), len(out))
		}
	}

	return result
}
