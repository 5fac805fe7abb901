// Package destructive classifies migration steps by their risk of data loss.
// Walking the step list produces a Plan of warnings and unexecutable
// markers; ambiguous cases are resolved with row-count or value-count
// queries against the live database.
//
// The checker reports, it never decides: whether a warning blocks
// application belongs to the caller (the force contract).
package destructive

// Diagnostic attaches a human-readable message to one step of the plan, by
// index into the step list.
type Diagnostic struct {
	StepIndex int    `json:"step_index"`
	Message   string `json:"message"`
}

// Plan is the accumulated outcome of a destructive check: zero or more
// warnings and at most one unexecutable marker per step.
type Plan struct {
	Warnings      []Diagnostic `json:"warnings,omitempty"`
	Unexecutables []Diagnostic `json:"unexecutables,omitempty"`
}

// AddWarning records a warning for the step at index.
func (p *Plan) AddWarning(index int, message string) {
	p.Warnings = append(p.Warnings, Diagnostic{StepIndex: index, Message: message})
}

// SetUnexecutable marks the step at index unexecutable. Later calls for the
// same step are dropped: one marker per step.
func (p *Plan) SetUnexecutable(index int, message string) {
	for _, d := range p.Unexecutables {
		if d.StepIndex == index {
			return
		}
	}
	p.Unexecutables = append(p.Unexecutables, Diagnostic{StepIndex: index, Message: message})
}

// WarningsForStep returns all warnings recorded for one step.
func (p *Plan) WarningsForStep(index int) []Diagnostic {
	var out []Diagnostic
	for _, d := range p.Warnings {
		if d.StepIndex == index {
			out = append(out, d)
		}
	}
	return out
}

// UnexecutableForStep returns the unexecutable marker for one step, if any.
func (p *Plan) UnexecutableForStep(index int) (Diagnostic, bool) {
	for _, d := range p.Unexecutables {
		if d.StepIndex == index {
			return d, true
		}
	}
	return Diagnostic{}, false
}

// HasWarnings reports whether any step carries a warning.
func (p *Plan) HasWarnings() bool { return len(p.Warnings) > 0 }

// IsExecutable reports whether no step is marked unexecutable.
func (p *Plan) IsExecutable() bool { return len(p.Unexecutables) == 0 }

// Blocks implements the force contract: an unexecutable marker always
// blocks; warnings block unless the caller forces.
func (p *Plan) Blocks(force bool) bool {
	if !p.IsExecutable() {
		return true
	}
	return p.HasWarnings() && !force
}
