// Package tenancy carries the active company for a request and enforces
// tenant isolation on the database layer. The active company lives in the
// request's context.Context, never in package state, so two concurrent
// requests can never observe each other's tenant.
package tenancy

import (
	"context"
	"errors"
)

// ErrNoActiveTenant is returned when an operation requires an active
// company and the request pipeline never resolved one. This signals a
// misconfigured endpoint (it should have required auth plus tenant), not a
// transient condition.
var ErrNoActiveTenant = errors.New("tenancy: no active company in context")

type contextKey int

const (
	companyKey contextKey = iota
	forcedKey
	bypassKey
)

// WithCompany returns a context carrying company id as the active tenant.
// The company resolver middleware calls this once per request.
func WithCompany(ctx context.Context, companyID uint) context.Context {
	return context.WithValue(ctx, companyKey, companyID)
}

// CompanyFromContext returns the ambient active company, if any.
func CompanyFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(companyKey).(uint)
	return id, ok
}

// WithForcedCompany pins queries in this context to company id regardless
// of the ambient active tenant. Administrative use only; call sites opt in
// explicitly.
func WithForcedCompany(ctx context.Context, companyID uint) context.Context {
	return context.WithValue(ctx, forcedKey, companyID)
}

// WithBypass disables tenant filtering for queries in this context,
// giving cross-company visibility. Administrative use only.
func WithBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey, true)
}

// Bypassed reports whether tenant filtering is disabled in this context.
func Bypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey).(bool)
	return v
}

// ActiveCompany returns the company queries in this context are scoped to:
// a forced company wins over the ambient one. A bypassed context has no
// scope at all.
func ActiveCompany(ctx context.Context) (uint, bool) {
	if Bypassed(ctx) {
		return 0, false
	}
	if id, ok := ctx.Value(forcedKey).(uint); ok {
		return id, true
	}
	return CompanyFromContext(ctx)
}

// RequireCompany returns the active company or ErrNoActiveTenant. For
// call sites where a missing tenant is a hard failure, not an option.
func RequireCompany(ctx context.Context) (uint, error) {
	id, ok := ActiveCompany(ctx)
	if !ok {
		return 0, ErrNoActiveTenant
	}
	return id, nil
}
