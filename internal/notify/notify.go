// Package notify delivers plain-text messages to users on the external
// messaging channel.
package notify

import (
	"context"
	"errors"
)

// Notifier sends a message to a single user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, userID int64, message string) error

func (f Func) Notify(ctx context.Context, userID int64, message string) error {
	return f(ctx, userID, message)
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, userID int64, message string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, userID, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every message.
var Discard Notifier = Func(func(context.Context, int64, string) error { return nil })
