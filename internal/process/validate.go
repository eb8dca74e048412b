package process

import (
	"fmt"
	"strings"
)

// Violation names one unmet requirement of a plugin contract.
type Violation struct {
	// Name is the member that failed the check ("id", "new_content", ...).
	Name string

	// Kind distinguishes a missing method implementation from a missing or
	// empty declared attribute.
	Kind ViolationKind

	// Reason explains the failure in one clause.
	Reason string
}

// ViolationKind classifies the two validation stages.
type ViolationKind string

const (
	// KindMethod marks stage-1 failures: a required factory/function member
	// is nil.
	KindMethod ViolationKind = "method"

	// KindAttribute marks stage-2 failures: a required identity attribute is
	// missing or empty.
	KindAttribute ViolationKind = "attribute"
)

func (v Violation) String() string {
	return fmt.Sprintf("%s (%s): %s", v.Name, v.Kind, v.Reason)
}

// Checker accumulates violations across both validation stages. On success
// it has no side effects; callers decide what a non-empty result means
// (reject outright, or register broken-but-listed).
type Checker struct {
	violations []Violation
}

// RequireFunc runs a stage-1 check: fn must be a non-nil function value.
// isNil is passed explicitly because the zero check depends on the concrete
// function type.
func (c *Checker) RequireFunc(name string, isNil bool) {
	if isNil {
		c.violations = append(c.violations, Violation{
			Name:   name,
			Kind:   KindMethod,
			Reason: "required factory is not implemented",
		})
	}
}

// RequireString runs a stage-2 check: val must be non-empty.
func (c *Checker) RequireString(name, val string) {
	if strings.TrimSpace(val) == "" {
		c.violations = append(c.violations, Violation{
			Name:   name,
			Kind:   KindAttribute,
			Reason: "required attribute is missing or empty",
		})
	}
}

// Require runs an arbitrary stage-2 check.
func (c *Checker) Require(name string, ok bool, reason string) {
	if !ok {
		c.violations = append(c.violations, Violation{Name: name, Kind: KindAttribute, Reason: reason})
	}
}

// Violations returns the accumulated failures, nil when everything passed.
func (c *Checker) Violations() []Violation { return c.violations }

// Names returns just the member names of the accumulated failures.
func (c *Checker) Names() []string {
	if len(c.violations) == 0 {
		return nil
	}
	names := make([]string, len(c.violations))
	for i, v := range c.violations {
		names[i] = v.Name
	}
	return names
}

// ViolationNames joins the member names of the failures for log fields.
func ViolationNames(violations []Violation) string {
	names := make([]string, len(violations))
	for i, v := range violations {
		names[i] = v.Name
	}
	return strings.Join(names, ",")
}

// ValidationError builds the descriptive error for a failed contract check,
// naming every missing member.
func ValidationError(subject string, violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return fmt.Errorf("%s failed contract validation: %s", subject, strings.Join(parts, "; "))
}
