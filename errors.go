package graphom

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for contract violations.
var (
	// ErrUnknownRelationship is returned when a lookup or an index rule
	// references a relationship that was not declared anywhere in the
	// class tree.
	ErrUnknownRelationship = errors.New("graphom: unknown relationship")

	// ErrInvalidCardinality is returned when a view operation does not
	// match the declared cardinality of the relationship.
	ErrInvalidCardinality = errors.New("graphom: invalid cardinality")

	// ErrCounterNotEnabled is returned when the size of a list without a
	// counter is requested.
	ErrCounterNotEnabled = errors.New("graphom: counter not enabled")

	// ErrAmbiguousDirection is returned when a relationship-triggered
	// index rule cannot determine which side triggers and which side is
	// updated.
	ErrAmbiguousDirection = errors.New("graphom: ambiguous direction")

	// ErrUnknownModel is returned when a class tag or target name does
	// not resolve to a defined model.
	ErrUnknownModel = errors.New("graphom: unknown model")

	// ErrDuplicateRelationship is returned when a relationship name is
	// declared twice within one class tree.
	ErrDuplicateRelationship = errors.New("graphom: duplicate relationship")
)

// UnknownRelationshipError reports a reference to an undeclared
// relationship. It is raised synchronously at the violating call and is
// never retried.
type UnknownRelationshipError struct {
	Model string // root model of the tree that was searched
	Name  string // relationship name
}

// Error returns the error string.
func (e *UnknownRelationshipError) Error() string {
	return fmt.Sprintf("graphom: relationship %q is not declared on %s or any of its subclasses", e.Name, e.Model)
}

// Is reports whether the target error matches ErrUnknownRelationship.
func (e *UnknownRelationshipError) Is(err error) bool {
	return err == ErrUnknownRelationship
}

// IsUnknownRelationship returns true if the error reports an undeclared
// relationship.
func IsUnknownRelationship(err error) bool {
	return errors.Is(err, ErrUnknownRelationship)
}

// InvalidCardinalityError reports a view operation applied to a
// relationship of the wrong cardinality, such as single-valued replace
// semantics on a many-valued schema.
type InvalidCardinalityError struct {
	Name string // relationship name
	Want string // cardinality required by the operation
	Got  string // declared cardinality
}

// Error returns the error string.
func (e *InvalidCardinalityError) Error() string {
	return fmt.Sprintf("graphom: relationship %q has cardinality %s, operation requires %s", e.Name, e.Got, e.Want)
}

// Is reports whether the target error matches ErrInvalidCardinality.
func (e *InvalidCardinalityError) Is(err error) bool {
	return err == ErrInvalidCardinality
}

// IsInvalidCardinality returns true if the error reports a cardinality
// mismatch.
func IsInvalidCardinality(err error) bool {
	return errors.Is(err, ErrInvalidCardinality)
}

// CounterNotEnabledError reports a size request on a list declared
// without a counter.
type CounterNotEnabledError struct {
	Name string // relationship name
}

// Error returns the error string.
func (e *CounterNotEnabledError) Error() string {
	return fmt.Sprintf("graphom: list %q was declared without a counter", e.Name)
}

// Is reports whether the target error matches ErrCounterNotEnabled.
func (e *CounterNotEnabledError) Is(err error) bool {
	return err == ErrCounterNotEnabled
}

// IsCounterNotEnabled returns true if the error reports a missing list
// counter.
func IsCounterNotEnabled(err error) bool {
	return errors.Is(err, ErrCounterNotEnabled)
}

// AmbiguousDirectionError reports a relationship-triggered index rule
// whose trigger and updater sides cannot be resolved from the
// declarations at hand.
type AmbiguousDirectionError struct {
	Model  string // model the rule was declared on
	Name   string // relationship name
	Reason string // why resolution failed
}

// Error returns the error string.
func (e *AmbiguousDirectionError) Error() string {
	return fmt.Sprintf("graphom: cannot resolve trigger and updater for relationship %q on %s: %s", e.Name, e.Model, e.Reason)
}

// Is reports whether the target error matches ErrAmbiguousDirection.
func (e *AmbiguousDirectionError) Is(err error) bool {
	return err == ErrAmbiguousDirection
}

// IsAmbiguousDirection returns true if the error reports an unresolvable
// index rule direction.
func IsAmbiguousDirection(err error) bool {
	return errors.Is(err, ErrAmbiguousDirection)
}

// UnknownModelError reports a class tag or target name that does not
// resolve to a defined model.
type UnknownModelError struct {
	Name string
}

// Error returns the error string.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("graphom: model %q is not defined", e.Name)
}

// Is reports whether the target error matches ErrUnknownModel.
func (e *UnknownModelError) Is(err error) bool {
	return err == ErrUnknownModel
}

// IsUnknownModel returns true if the error reports an undefined model.
func IsUnknownModel(err error) bool {
	return errors.Is(err, ErrUnknownModel)
}

// DuplicateRelationshipError reports a relationship name declared twice
// within one class tree.
type DuplicateRelationshipError struct {
	Model string // root model of the tree
	Name  string // relationship name
}

// Error returns the error string.
func (e *DuplicateRelationshipError) Error() string {
	return fmt.Sprintf("graphom: relationship %q is already declared in the %s tree", e.Name, e.Model)
}

// Is reports whether the target error matches ErrDuplicateRelationship.
func (e *DuplicateRelationshipError) Is(err error) bool {
	return err == ErrDuplicateRelationship
}

// IsDuplicateRelationship returns true if the error reports a duplicate
// relationship declaration.
func IsDuplicateRelationship(err error) bool {
	return errors.Is(err, ErrDuplicateRelationship)
}
