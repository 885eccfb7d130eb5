package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/cardnest/cardnest-api/api/swagger"
	"github.com/cardnest/cardnest-api/internal/handler"
	"github.com/cardnest/cardnest-api/internal/middleware"
	"github.com/cardnest/cardnest-api/internal/models"
	"github.com/cardnest/cardnest-api/internal/repository"
	"github.com/cardnest/cardnest-api/internal/service"
	"github.com/cardnest/cardnest-api/pkg/cache"
	"github.com/cardnest/cardnest-api/pkg/config"
	"github.com/cardnest/cardnest-api/pkg/database"
	"github.com/cardnest/cardnest-api/pkg/export"
	"github.com/cardnest/cardnest-api/pkg/logger"
	corsmiddleware "github.com/cardnest/cardnest-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cardnest/cardnest-api/pkg/middleware/requestid"
)

// @title CardNest API
// @version 1.0.0
// @description Multi-tenant ID card management for schools, colleges and companies
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The dashboard cache is an optimisation; the API stays up without it.
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	students := repository.NewStudentRepository(db)
	employees := repository.NewEmployeeRepository(db)
	admins := repository.NewAdminRepository(db)
	institutions := repository.NewInstitutionRepository(db)
	changeRequests := repository.NewChangeRequestRepository(db)
	cardDesigns := repository.NewCardDesignRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	directory := map[models.Role]service.PrincipalLookup{
		models.RoleStudent:        students.Lookup,
		models.RoleEmployee:       employees.Lookup,
		models.RoleInstituteAdmin: admins.LookupInstituteAdmin,
		models.RoleSuperAdmin:     admins.LookupSuperAdmin,
	}
	passwords := map[models.Role]service.PasswordUpdate{
		models.RoleStudent:        students.UpdatePassword,
		models.RoleEmployee:       employees.UpdatePassword,
		models.RoleInstituteAdmin: admins.UpdateInstituteAdminPassword,
		models.RoleSuperAdmin:     admins.UpdateSuperAdminPassword,
	}

	authService := service.NewAuthService(directory, passwords, admins, nil, logr, service.AuthConfig{
		Secret:           cfg.Session.Secret,
		TokenExpiry:      cfg.Session.TokenExpiry,
		RememberMeExpiry: cfg.Session.RememberMeExpiry,
		Issuer:           cfg.Session.Issuer,
	})

	resolver := service.NewTenantResolver(admins)
	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter()

	studentService := service.NewStudentService(students, institutions, resolver, csvExporter, pdfExporter, nil, logr)
	employeeService := service.NewEmployeeService(employees, resolver, nil, logr)
	changeRequestService := service.NewChangeRequestService(changeRequests, students, admins, logr)
	institutionService := service.NewInstitutionService(institutions, admins, cardDesigns, nil, logr)
	cardDesignService := service.NewCardDesignService(cardDesigns, resolver, nil, logr)
	dashboardService := service.NewDashboardService(students, employees, changeRequests, resolver, cacheRepo, logr, cfg.Dashboard.CacheTTL)
	metricsService := service.NewMetricsService()

	cookie := handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.SecureCookie}
	authHandler := handler.NewAuthHandler(authService, cookie)
	studentHandler := handler.NewStudentHandler(studentService, cfg.Imports.MaxFileSizeBytes)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	changeRequestHandler := handler.NewChangeRequestHandler(changeRequestService)
	institutionHandler := handler.NewInstitutionHandler(institutionService)
	cardDesignHandler := handler.NewCardDesignHandler(cardDesignService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	opts := middleware.SessionOptions{CookieName: cfg.Session.CookieName, LoginPath: cfg.Session.LoginPath}
	session := middleware.Session(authService, opts)

	authed := r.Group("/", session)
	authed.GET("/me", authHandler.Me)
	authed.POST("/change-password", authHandler.ChangePassword)

	student := r.Group("/student", session, middleware.RequireRole(models.RoleStudent, opts))
	student.GET("/profile", studentHandler.Profile)
	student.POST("/change-requests", changeRequestHandler.Submit)
	student.GET("/change-requests", changeRequestHandler.ListOwn)

	employee := r.Group("/employee", session, middleware.RequireRole(models.RoleEmployee, opts))
	employee.GET("/profile", employeeHandler.Profile)

	institute := r.Group("/institute", session, middleware.RequireRole(models.RoleInstituteAdmin, opts))
	institute.GET("/dashboard", dashboardHandler.Stats)
	institute.GET("/students", studentHandler.List)
	institute.POST("/students", studentHandler.Create)
	institute.POST("/students/import", studentHandler.Import)
	institute.GET("/students/export", studentHandler.ExportCSV)
	institute.GET("/students/cards", studentHandler.ExportCards)
	institute.GET("/students/:id", studentHandler.Get)
	institute.PUT("/students/:id", studentHandler.Update)
	institute.PUT("/students/:id/payment", studentHandler.UpdatePaymentStatus)
	institute.PUT("/students/:id/photo", studentHandler.UploadPhoto)
	institute.GET("/employees", employeeHandler.List)
	institute.POST("/employees", employeeHandler.Create)
	institute.GET("/employees/:id", employeeHandler.Get)
	institute.PUT("/employees/:id", employeeHandler.Update)
	institute.PUT("/employees/:id/photo", employeeHandler.UploadPhoto)
	institute.GET("/change-requests", changeRequestHandler.List)
	institute.POST("/change-requests/review", changeRequestHandler.Review)
	institute.GET("/card-designs", cardDesignHandler.ListInstitution)
	institute.POST("/card-designs", cardDesignHandler.CreateInstitution)
	institute.DELETE("/card-designs/:id", cardDesignHandler.DeleteInstitution)

	admin := r.Group("/admin", session, middleware.RequireRole(models.RoleSuperAdmin, opts))
	admin.GET("/institutions", institutionHandler.List)
	admin.POST("/institutions", institutionHandler.Create)
	admin.GET("/institutions/:id", institutionHandler.Get)
	admin.GET("/institute-admins", institutionHandler.ListAdmins)
	admin.POST("/institute-admins", institutionHandler.CreateAdmin)
	admin.DELETE("/institute-admins/:id", institutionHandler.DeleteAdmin)
	admin.PUT("/institute-admins/:id/password", institutionHandler.ChangeAdminPassword)
	admin.PUT("/institute-admins/:id/card-design", institutionHandler.AssignCardDesign)
	admin.GET("/card-designs", cardDesignHandler.ListCatalog)
	admin.POST("/card-designs", cardDesignHandler.CreateCatalog)
	admin.DELETE("/card-designs/:id", cardDesignHandler.DeleteCatalog)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
