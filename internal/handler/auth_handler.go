package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"agendia/internal/model"
	"agendia/pkg/database"
	"agendia/pkg/logger"
	"agendia/prometheus"
)

// Register creates an owner account: the user, their company and an admin
// membership flagged as the main company, all in one transaction. The
// response carries a token already pinned to the new company.
func Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		CompanyName string `json:"company_name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse register request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" || req.CompanyName == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and company_name are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	var adminProfile model.Profile
	if result := database.GetDB().Where("name = ?", "admin").First(&adminProfile); result.Error != nil {
		log.Error("Admin profile not seeded", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration unavailable"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	user := model.User{Name: req.Name, Email: req.Email, Password: string(hash)}
	if result := tx.Create(&user); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	company := model.Company{Name: req.CompanyName, Active: true}
	if result := tx.Create(&company); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create company", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company creation failed"})
	}

	membership := model.Membership{
		UserID:      user.ID,
		CompanyID:   company.ID,
		ProfileID:   adminProfile.ID,
		MainCompany: true,
		Active:      true,
	}
	if result := tx.Create(&membership); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create membership", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "membership creation failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit registration", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	companyID := company.ID
	token, err := jwtUtil.GenerateTokenWithCompany(user.Email, user.ID, &companyID, company.Name, adminProfile.Name)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Owner registered",
		zap.Uint("user_id", user.ID),
		zap.Uint("company_id", company.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"token":   token,
		"user":    user,
		"company": company,
	})
}

// Login authenticates a user. An optional company_id picks the company the
// token is pinned to; without one the main company (falling back to the
// earliest membership) is used.
func Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		CompanyID *uint  `json:"company_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	var membership model.Membership
	query := database.GetDB().Preload("Company").Preload("Profile").
		Where("user_id = ? AND active = ?", user.ID, true)
	if req.CompanyID != nil {
		query = query.Where("company_id = ?", *req.CompanyID)
	} else {
		query = query.Order("main_company DESC, created_at, id")
	}
	if result := query.First(&membership); result.Error != nil {
		if req.CompanyID != nil {
			log.Warn("No membership in requested company",
				zap.Uint("user_id", user.ID),
				zap.Uint("company_id", *req.CompanyID))
			prometheus.RecordAuthError("company_access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the requested company"})
		}
		// No membership anywhere: a valid but companyless session.
		token, err := jwtUtil.GenerateToken(user.Email, user.ID)
		if err != nil {
			log.Error("Failed to generate token", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
	}

	companyID := membership.CompanyID
	token, err := jwtUtil.GenerateTokenWithCompany(user.Email, user.ID, &companyID, membership.Company.Name, membership.Profile.Name)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.Uint("company_id", companyID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
		"company": echo.Map{
			"id":      membership.Company.ID,
			"name":    membership.Company.Name,
			"profile": membership.Profile.Name,
		},
	})
}

// SwitchCompany issues a new token pinned to another company the user
// belongs to.
func SwitchCompany(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("switch")

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	email, _ := c.Get("email").(string)

	var req struct {
		CompanyID uint `json:"company_id"`
	}
	if err := c.Bind(&req); err != nil || req.CompanyID == 0 {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var membership model.Membership
	result := database.GetDB().Preload("Company").Preload("Profile").
		Where("user_id = ? AND company_id = ? AND active = ?", userID, req.CompanyID, true).
		First(&membership)
	if result.Error != nil {
		log.Warn("Unauthorized company switch attempt",
			zap.Uint("user_id", userID),
			zap.Uint("company_id", req.CompanyID))
		prometheus.RecordAuthError("company_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the requested company"})
	}

	companyID := membership.CompanyID
	token, err := jwtUtil.GenerateTokenWithCompany(email, userID, &companyID, membership.Company.Name, membership.Profile.Name)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User switched company",
		zap.Uint("user_id", userID),
		zap.Uint("company_id", companyID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"company": echo.Map{
			"id":      membership.Company.ID,
			"name":    membership.Company.Name,
			"profile": membership.Profile.Name,
		},
	})
}

// Me returns the authenticated user with their memberships.
func Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var user model.User
	result := database.GetDB().
		Preload("Memberships", "active = ?", true).
		Preload("Memberships.Company").
		Preload("Memberships.Profile").
		First(&user, userID)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}
