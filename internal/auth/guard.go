// Package auth restricts task commands to the configured operator.
package auth

import "errors"

// ErrDenied is returned when a non-operator sends a privileged command.
var ErrDenied = errors.New("authorization denied")

// Guard compares sender handles against a single operator username.
type Guard struct {
	operator string
}

func NewGuard(operator string) *Guard {
	return &Guard{operator: operator}
}

// Operator returns the configured operator username.
func (g *Guard) Operator() string {
	return g.operator
}

// Privileged reports whether the named command requires the operator.
// Only /start is public.
func Privileged(name string) bool {
	return name != "start"
}

// Authorize returns ErrDenied when username may not run the named command.
// Comparison is case-sensitive.
func (g *Guard) Authorize(name, username string) error {
	if !Privileged(name) {
		return nil
	}
	if g.operator == "" || username != g.operator {
		return ErrDenied
	}
	return nil
}
