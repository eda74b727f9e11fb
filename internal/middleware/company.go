package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"agendia/internal/model"
	"agendia/internal/tenancy"
	"agendia/pkg/jwtutil"
	"agendia/pkg/logger"
)

// CompanyHeader is the explicit tenant selector a request may carry.
const CompanyHeader = "X-Company-ID"

// CompanyLookup returns the fallback company for a user when the request
// carries no selector: the earliest-created active membership. ok=false
// means the user belongs to no company.
type CompanyLookup func(ctx context.Context, userID uint) (uint, bool, error)

// MembershipCompanyLookup builds the database-backed CompanyLookup.
// Ordering by (created_at, id) keeps the fallback deterministic even for
// memberships created in the same instant.
func MembershipCompanyLookup(db *gorm.DB) CompanyLookup {
	return func(ctx context.Context, userID uint) (uint, bool, error) {
		var m model.Membership
		err := db.WithContext(ctx).
			Where("user_id = ? AND active = ?", userID, true).
			Order("created_at, id").
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		return m.CompanyID, true, nil
	}
}

// ResolveCompany determines the active company for the request and
// publishes it on the request context for the gate and the tenancy plugin.
// Resolution order: well-formed X-Company-ID header, then the token's
// pinned company, then the user's earliest active membership. Resolution
// never fails the request; no company at all is a valid outcome and
// downstream gates decide whether that is acceptable.
func ResolveCompany(lookup CompanyLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			companyID, ok := companyFromRequest(c, lookup)
			if ok {
				ctx := tenancy.WithCompany(c.Request().Context(), companyID)
				c.SetRequest(c.Request().WithContext(ctx))
				c.Set("company_id", companyID)
				logger.EchoWith(c, zap.Uint("company_id", companyID))
			}
			return next(c)
		}
	}
}

func companyFromRequest(c echo.Context, lookup CompanyLookup) (uint, bool) {
	log := logger.FromEcho(c)

	// Explicit selector wins. A malformed value is ignored, not an error.
	if raw := c.Request().Header.Get(CompanyHeader); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			return uint(id), true
		}
		log.Warn("Ignoring malformed company selector", zap.String("header", raw))
	}

	// Token pinned to a company at login or switch.
	if claims, ok := c.Get("claims").(*jwtutil.UserClaims); ok && claims.CompanyID != nil {
		return *claims.CompanyID, true
	}

	// Earliest active membership of the authenticated user.
	userID, ok := c.Get("user_id").(uint)
	if !ok || lookup == nil {
		return 0, false
	}
	companyID, found, err := lookup(c.Request().Context(), userID)
	if err != nil {
		log.Error("Failed to look up fallback company", zap.Uint("user_id", userID), zap.Error(err))
		return 0, false
	}
	return companyID, found
}
