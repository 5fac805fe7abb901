package migrate

import (
	"strings"

	"github.com/soumikc/driftline/internal/destructive"
	"github.com/soumikc/driftline/internal/diff"
)

// CommentRenderer renders steps as SQL comment lines, one per step, with the
// destructive diagnostics attached beneath the step they belong to. It is the
// fallback renderer for backends without a DDL generator and the default for
// drift reports, which are read by humans rather than executed.
type CommentRenderer struct{}

// Render produces the comment script. The trailing newline after the last
// line keeps the output concatenation-safe.
func (CommentRenderer) Render(steps []diff.Step, plan *destructive.Plan) (string, error) {
	var b strings.Builder

	for i, step := range steps {
		b.WriteString("-- ")
		b.WriteString(step.Description())
		b.WriteByte('\n')

		if plan == nil {
			continue
		}
		for _, w := range plan.WarningsForStep(i) {
			b.WriteString("--   warning: ")
			b.WriteString(w.Message)
			b.WriteByte('\n')
		}
		if d, ok := plan.UnexecutableForStep(i); ok {
			b.WriteString("--   unexecutable: ")
			b.WriteString(d.Message)
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}
