package main

import (
	"context"
	"errors"

	"osuparse/dotosu"
)

// Failure categories.
const (
	failRead      = "read"
	failInvalid   = "invalid"
	failTooLong   = "too_long"
	failLimits    = "limits"
	failFetch     = "fetch"
	failBrokenZip = "broken_files"
	failIndex     = "index"
	failPanic     = "panic"
	failUnknown   = "unknown"
)

// failCategory maps a decode error onto the remediation it needs.
func failCategory(err error) string {
	switch {
	case errors.Is(err, dotosu.ErrIO):
		return failRead
	case errors.Is(err, dotosu.ErrFieldTooLong):
		return failTooLong
	case errors.Is(err, dotosu.ErrResourceExhausted):
		return failLimits
	case errors.Is(err, dotosu.ErrMalformed):
		return failInvalid
	case errors.Is(err, errDecodePanic):
		return failPanic
	default:
		return failUnknown
	}
}

// Fail logs a failure and records it in ix when one is open.
func Fail(ctx context.Context, ix *Index, cat string, ref string, reason string) {
	logger.Warn("fail", "category", cat, "ref", ref, "reason", reason)
	if ix == nil {
		return
	}
	if err := ix.RecordFailure(ctx, cat, ref, reason); err != nil {
		logger.Error("recording failure", "category", cat, "ref", ref, "err", err)
	}
}
