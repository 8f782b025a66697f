package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-mt-distribution/internal/handler"
	"go-mt-distribution/internal/identity"
	"go-mt-distribution/internal/middleware"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"
	"go-mt-distribution/internal/service"
	"go-mt-distribution/internal/ws"
	"go-mt-distribution/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.User{}, &model.Role{}, &model.Permission{}, &model.Branch{},
		&model.Document{}, &model.DocumentStatusHistory{}, &model.ActivityLog{},
	)

	// 3. Seed roles, permissions, and the bootstrap admin
	seedRolesPermissionsAndAdmin(db)

	// 4. Websocket hub for in-app notifications
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency injection (wiring layers)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	permRepo := repository.NewPermissionRepo(db)
	branchRepo := repository.NewBranchRepo(db)
	docRepo := repository.NewDocumentRepo(db)
	historyRepo := repository.NewStatusHistoryRepo(db)
	activityRepo := repository.NewActivityLogRepo(db)
	txRunner := repository.NewTxRunner(db)

	audit := service.NewAuditTrail(activityRepo)
	resolver := service.NewPermissionResolver(roleRepo, audit, txRunner)
	guard := service.NewAccessGuard(userRepo, branchRepo, docRepo, resolver)
	engine := service.NewStatusEngine(docRepo, historyRepo, audit, resolver, guard, txRunner, wsHub)
	bulk := service.NewBulkCoordinator(engine, audit)
	roleService := service.NewRoleService(roleRepo, permRepo, userRepo, resolver, audit, txRunner)
	docService := service.NewDocumentService(docRepo, historyRepo, branchRepo, guard, resolver, audit, txRunner)
	identityClient := identity.NewHTTPClient(os.Getenv("IDENTITY_URL"))
	authService := service.NewAuthService(userRepo, resolver, identityClient, audit)

	authHandler := handler.NewAuthHandler(authService)
	docHandler := handler.NewDocumentHandler(docService, engine, bulk)
	roleHandler := handler.NewRoleHandler(roleService)
	userHandler := handler.NewUserHandler(userRepo, roleService)
	branchHandler := handler.NewBranchHandler(branchRepo, guard)
	activityHandler := handler.NewActivityHandler(audit)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "MT Distribution v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Documents
	protected.Get("/documents", middleware.RequirePermission(resolver, model.PermDocumentsView), docHandler.Search)
	protected.Post("/documents", middleware.RequirePermission(resolver, model.PermDocumentsCreate), docHandler.Create)
	protected.Post("/documents/bulk-send", middleware.RequirePermission(resolver, model.PermDocumentsBulkSend), docHandler.BulkSend)
	protected.Get("/documents/:id", middleware.RequirePermission(resolver, model.PermDocumentsView), docHandler.Get)
	protected.Delete("/documents/:id", docHandler.Delete) // owner-draft rule enforced in the service
	protected.Put("/documents/:id/status", middleware.RequirePermission(resolver, model.PermDocumentsUpdateStatus), docHandler.UpdateStatus)
	protected.Get("/documents/:id/history", middleware.RequirePermission(resolver, model.PermDocumentsView), docHandler.History)

	// Roles and permissions
	protected.Get("/roles", roleHandler.List)
	protected.Post("/roles", middleware.RequirePermission(resolver, model.PermAdminRoles), roleHandler.Create)
	protected.Put("/roles/:id", middleware.RequirePermission(resolver, model.PermAdminRoles), roleHandler.Update)
	protected.Delete("/roles/:id", middleware.RequirePermission(resolver, model.PermAdminRoles), roleHandler.Delete)
	protected.Get("/permissions", roleHandler.ListPermissions)

	// Users
	protected.Get("/users", middleware.RequirePermission(resolver, model.PermAdminUsers), userHandler.List)
	protected.Get("/users/:id/access", middleware.RequirePermission(resolver, model.PermAdminUsers), userHandler.GetAccess)
	protected.Put("/users/:id/roles", middleware.RequirePermission(resolver, model.PermAdminRoles), userHandler.UpdateRoles)

	// Branches
	protected.Get("/branches", middleware.RequirePermission(resolver, model.PermBranchesView), branchHandler.List)
	protected.Get("/branches/accessible", branchHandler.Accessible)
	protected.Post("/branches", middleware.RequirePermission(resolver, model.PermBranchesManage), branchHandler.Create)

	// Activity log
	protected.Get("/activity-logs", middleware.RequirePermission(resolver, model.PermActivityView), activityHandler.Recent)

	// Websocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedRolesPermissionsAndAdmin creates the default permissions, roles, their
// mapping, and the bootstrap admin account if they don't exist
func seedRolesPermissionsAndAdmin(db *gorm.DB) {
	permRepo := repository.NewPermissionRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	// 1. Seed permissions first
	if err := permRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed permissions: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Attach default permission sets to roles that have none yet
	for roleName, permNames := range model.DefaultRolePermissions {
		role, err := roleRepo.FindByName(string(roleName))
		if err != nil || len(role.Permissions) > 0 {
			continue
		}
		names := make([]string, len(permNames))
		for i, p := range permNames {
			names[i] = string(p)
		}
		permissions, err := permRepo.FindByNames(names)
		if err != nil {
			log.Printf("Warning: Failed to load permissions for role %s: %v", roleName, err)
			continue
		}
		if err := roleRepo.ReplacePermissions(nil, role, permissions); err != nil {
			log.Printf("Warning: Failed to assign permissions to role %s: %v", roleName, err)
		}
	}

	// 4. Create the bootstrap admin with a local password. Every other user
	// is created on first login against the identity directory.
	if _, err := userRepo.FindByUsername("admin"); err != nil {
		adminRole, err := roleRepo.FindByName(string(model.RoleAdmin))
		if err != nil {
			log.Printf("Warning: admin role missing, skipping bootstrap admin: %v", err)
			return
		}

		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = "admin123"
		}

		admin := &model.User{
			Username: "admin",
			FullName: "System Administrator",
			IsActive: true,
			Roles:    []model.Role{*adminRole},
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword(password); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}
		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create bootstrap admin: %v", err)
		} else {
			log.Println("Bootstrap admin user created: admin")
		}
	}
}
