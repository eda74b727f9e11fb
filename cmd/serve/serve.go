// Package serve boots the HTTP API: configuration, logger, database with
// the tenancy plugin, the ability resolver, and the full route table with
// per-route required abilities.
package serve

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"agendia/internal/ability"
	"agendia/internal/handler"
	"agendia/internal/middleware"
	"agendia/pkg/cache"
	"agendia/pkg/config"
	"agendia/pkg/database"
	"agendia/pkg/jwtutil"
	"agendia/pkg/logger"
	"agendia/pkg/metrics"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the AgendIA API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	conf, err := config.Load("agendia")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	db, err := database.Init(&conf.DB)
	if err != nil {
		return err
	}

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	var abilityCache *cache.Client
	if conf.Redis.Enabled {
		abilityCache, err = cache.NewClient(&cache.Config{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer abilityCache.Close()
	}

	resolver := ability.NewResolver(ability.NewGormStore(db), abilityCache, conf.Redis.CacheTTL)
	handler.Init(jwt, resolver)

	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/health", handler.Health)

	// Public routes
	e.POST("/auth/register", handler.Register)
	e.POST("/auth/login", handler.Login)

	// Everything below runs behind authentication and tenant resolution,
	// in that order: the gate and the tenancy plugin both read what these
	// two middlewares publish.
	api := e.Group("")
	api.Use(middleware.JWTAuth(jwt))
	api.Use(middleware.ResolveCompany(middleware.MembershipCompanyLookup(db)))

	gate := func(name string) echo.MiddlewareFunc {
		return middleware.RequireAbility(resolver, name)
	}

	api.GET("/auth/me", handler.Me)
	api.POST("/auth/switch-company", handler.SwitchCompany)
	api.POST("/memberships/main-company", handler.SetMainCompany)
	api.GET("/abilities/mine", handler.MyAbilities)

	api.GET("/companies", handler.ListCompanies, gate("companies.index"))
	api.POST("/companies", handler.CreateCompany, gate("companies.store"))
	api.GET("/companies/:id", handler.GetCompany, gate("companies.show"))
	api.PUT("/companies/:id", handler.UpdateCompany, gate("companies.update"))
	api.POST("/companies/:id/deactivate", handler.DeactivateCompany, gate("companies.delete"))
	api.POST("/companies/:id/restore", handler.RestoreCompany, gate("companies.restore"))
	api.DELETE("/companies/:id", handler.DeleteCompany, gate("companies.delete"))
	api.GET("/admin/companies", handler.ListAllCompanies, gate("companies.index_all"))

	api.GET("/memberships", handler.ListMemberships, gate("memberships.index"))
	api.POST("/memberships", handler.AttachUser, gate("memberships.store"))
	api.DELETE("/memberships/:user_id", handler.DetachUser, gate("memberships.delete"))

	api.GET("/profiles", handler.ListProfiles, gate("profiles.index"))
	api.GET("/profiles/:id", handler.GetProfile, gate("profiles.show"))
	api.POST("/profiles", handler.CreateProfile, gate("profiles.store"))
	api.PUT("/profiles/:id", handler.UpdateProfile, gate("profiles.update"))
	api.DELETE("/profiles/:id", handler.DeleteProfile, gate("profiles.delete"))
	api.PUT("/profiles/:id/abilities", handler.SyncProfileAbilities, gate("profiles.sync"))

	api.GET("/abilities", handler.ListAbilities, gate("abilities.index"))

	api.GET("/clients", handler.ListClients, gate("clients.index"))
	api.GET("/clients/:id", handler.GetClient, gate("clients.show"))
	api.POST("/clients", handler.CreateClient, gate("clients.store"))
	api.PUT("/clients/:id", handler.UpdateClient, gate("clients.update"))
	api.DELETE("/clients/:id", handler.DeleteClient, gate("clients.delete"))

	api.GET("/services", handler.ListServices, gate("services.index"))
	api.GET("/services/:id", handler.GetService, gate("services.show"))
	api.POST("/services", handler.CreateService, gate("services.store"))
	api.PUT("/services/:id", handler.UpdateService, gate("services.update"))
	api.DELETE("/services/:id", handler.DeleteService, gate("services.delete"))

	api.GET("/schedules", handler.ListSchedules, gate("schedules.index"))
	api.GET("/schedules/:id", handler.GetSchedule, gate("schedules.show"))
	api.POST("/schedules", handler.CreateSchedule, gate("schedules.store"))
	api.PUT("/schedules/:id", handler.UpdateSchedule, gate("schedules.update"))
	api.DELETE("/schedules/:id", handler.DeleteSchedule, gate("schedules.delete"))

	api.GET("/schedule-blocks", handler.ListScheduleBlocks, gate("schedule_blocks.index"))
	api.POST("/schedule-blocks", handler.CreateScheduleBlock, gate("schedule_blocks.store"))
	api.DELETE("/schedule-blocks/:id", handler.DeleteScheduleBlock, gate("schedule_blocks.delete"))

	api.GET("/appointments", handler.ListAppointments, gate("appointments.index"))
	api.GET("/appointments/:id", handler.GetAppointment, gate("appointments.show"))
	api.POST("/appointments", handler.CreateAppointment, gate("appointments.store"))
	api.PUT("/appointments/:id", handler.UpdateAppointment, gate("appointments.update"))
	api.DELETE("/appointments/:id", handler.DeleteAppointment, gate("appointments.delete"))

	log.Info("Starting agendia API on port " + conf.Server.Port)
	return e.Start(":" + conf.Server.Port)
}
