// Package handler contains the HTTP handlers. They follow a single shape:
// parse, check, delegate to the database, respond with echo.Map. Tenant
// scoping of the scheduling models is not done here; the tenancy plugin
// applies it from the request context.
package handler

import (
	"agendia/internal/ability"
	"agendia/pkg/jwtutil"

	"github.com/labstack/echo/v4"
)

var (
	jwtUtil         *jwtutil.JWTUtil
	abilityResolver *ability.Resolver
)

// Init wires the collaborators shared by all handlers. Called once from
// the serve command before routes are bound.
func Init(j *jwtutil.JWTUtil, r *ability.Resolver) {
	jwtUtil = j
	abilityResolver = r
}

// currentUserID returns the authenticated user ID set by the auth
// middleware.
func currentUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}

// currentCompanyID returns the active company set by the company resolver
// middleware.
func currentCompanyID(c echo.Context) (uint, bool) {
	id, ok := c.Get("company_id").(uint)
	return id, ok
}
