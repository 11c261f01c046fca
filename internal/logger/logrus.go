// Package logger carries a logrus entry through a context.
package logger

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	ctxKeyLog ctxKey = iota
)

// Entry returns the entry stored in ctx and panics if there is none.
func Entry(ctx context.Context) *logrus.Entry {
	v := ctx.Value(ctxKeyLog)
	e, ok := v.(*logrus.Entry)
	if !ok {
		err := fmt.Errorf("not a *logrus.Entry: %T", v)
		panic(err)
	}
	return e
}

// FromContext is like Entry but falls back to the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if e, ok := ctx.Value(ctxKeyLog).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func WithLogEntry(ctx context.Context, e *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKeyLog, e)
}
