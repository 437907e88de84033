package dsl

import "fmt"

// Builder manages the scenario construction.
type Builder struct {
	name   string
	caller string
	steps  []*StepBuilder
}

// New creates a new scenario builder.
func New(name string) *Builder {
	return &Builder{name: name}
}

// As sets the caller of the steps added afterwards that do not name their own.
func (b *Builder) As(caller string) *Builder {
	b.caller = caller
	return b
}

// Add appends a new step. Steps run in the order they were added.
func (b *Builder) Add(name string) *StepBuilder {
	sb := &StepBuilder{step: Step{Name: name, Caller: b.caller}}
	b.steps = append(b.steps, sb)
	return sb
}

// Do appends an unnamed step running op.
func (b *Builder) Do(op string, args Args) *StepBuilder {
	return b.Add("").Do(op, args)
}

// Build returns the scenario, or an error naming the first step without an operation.
func (b *Builder) Build() (Scenario, error) {
	sc := Scenario{Name: b.name, Steps: make([]Step, 0, len(b.steps))}
	for _, sb := range b.steps {
		sc.Steps = append(sc.Steps, sb.Build())
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %q: %w", b.name, err)
	}
	return sc, nil
}

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step Step
}

// As sets the caller of the step.
func (s *StepBuilder) As(caller string) *StepBuilder {
	s.step.Caller = caller
	return s
}

// Do sets the operation and its arguments.
func (s *StepBuilder) Do(op string, args Args) *StepBuilder {
	s.step.Op = op
	s.step.Args = args
	return s
}

// Rejected makes the step pass only when the operation fails with reason.
func (s *StepBuilder) Rejected(reason string) *StepBuilder {
	s.step.ExpectError = reason
	return s
}

// Build returns the underlying Step.
func (s *StepBuilder) Build() Step {
	return s.step
}
