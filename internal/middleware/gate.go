package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"agendia/internal/ability"
	"agendia/internal/tenancy"
	"agendia/pkg/logger"
	"agendia/prometheus"
)

// RequireAbility rejects the request before the handler runs unless the
// acting user holds name in the active company. The required ability is
// validated against the catalog when the route is bound, so a typo panics
// at startup instead of misbehaving per request.
//
// Denials are distinguishable: 401 without identity, 400 without an active
// company, 403 without the ability. The 403 body names the required
// ability and nothing else; the caller never learns the grant set.
func RequireAbility(resolver *ability.Resolver, name string) echo.MiddlewareFunc {
	ability.MustKnow(name)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			userID, ok := c.Get("user_id").(uint)
			if !ok {
				prometheus.RecordGateDenial(name, "unauthenticated")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			companyID, err := tenancy.RequireCompany(c.Request().Context())
			if err != nil {
				log.Warn("Protected route reached without an active company",
					zap.Uint("user_id", userID),
					zap.String("required", name))
				prometheus.RecordGateDenial(name, "no_company")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "no active company context"})
			}

			abilities, err := resolver.Effective(c.Request().Context(), userID, companyID)
			if err != nil {
				log.Error("Failed to resolve abilities",
					zap.Uint("user_id", userID),
					zap.Uint("company_id", companyID),
					zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve permissions"})
			}

			if !abilities.Has(name) {
				log.Warn("Ability denied",
					zap.Uint("user_id", userID),
					zap.Uint("company_id", companyID),
					zap.String("required", name))
				prometheus.RecordGateDenial(name, "forbidden")
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":    "insufficient permissions",
					"required": name,
				})
			}

			return next(c)
		}
	}
}
