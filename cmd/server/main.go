package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ananyateklu/second-brain-sub000/internal/api/handlers"
	"github.com/ananyateklu/second-brain-sub000/internal/api/middleware"
	"github.com/ananyateklu/second-brain-sub000/internal/config"
	"github.com/ananyateklu/second-brain-sub000/internal/repository"
	"github.com/ananyateklu/second-brain-sub000/internal/service"
)

func main() {
	// LOAD ENV
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	// LOGGING
	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}

	// INIT DB
	repo, err := repository.NewPostgresRepo(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	// MIGRATIONS
	if err := repo.RunMigrations(context.Background()); err != nil {
		log.Fatal("migration error:", err)
	}

	// SERVICES
	activityService := service.NewActivityService(repo, nil)
	gameService := service.NewGamificationService(repo, cfg.XPPerCreate, cfg.XPPerComplete, cfg.XPPerSync)
	authService := service.NewAuthService(repo, cfg.JWTSecret)
	tickTickClient := service.NewTickTickClient(cfg.TickTickBaseURL)
	integrationService := service.NewIntegrationService(repo, cfg.TickTickClientID, cfg.TickTickClientSecret, cfg.TickTickRedirectURL)
	syncService := service.NewSyncService(repo, tickTickClient, activityService, gameService, nil)

	// HANDLERS
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(repo, activityService, gameService)
	noteHandler := handlers.NewNoteHandler(repo, activityService, gameService)
	itemHandler := handlers.NewItemHandler(repo, activityService)
	activityHandler := handlers.NewActivityHandler(activityService, gameService)
	integrationHandler := handlers.NewIntegrationHandler(syncService, integrationService, repo)

	// ROUTER
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api/v1")

	// AUTH ROUTES
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// AUTHENTICATED ROUTES
	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret))

	tasks := authed.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/restore", taskHandler.RestoreTask)
	}

	notes := authed.Group("/notes")
	{
		notes.GET("", noteHandler.ListNotes)
		notes.POST("", noteHandler.CreateNote)
		notes.GET("/:id", noteHandler.GetNote)
		notes.PUT("/:id", noteHandler.UpdateNote)
		notes.DELETE("/:id", noteHandler.DeleteNote)
		notes.POST("/:id/restore", noteHandler.RestoreNote)
	}

	ideas := authed.Group("/ideas")
	{
		ideas.GET("", itemHandler.ListIdeas)
		ideas.POST("", itemHandler.CreateIdea)
		ideas.PUT("/:id", itemHandler.UpdateIdea)
		ideas.DELETE("/:id", itemHandler.DeleteIdea)
	}

	reminders := authed.Group("/reminders")
	{
		reminders.GET("", itemHandler.ListReminders)
		reminders.POST("", itemHandler.CreateReminder)
		reminders.PUT("/:id", itemHandler.UpdateReminder)
		reminders.DELETE("/:id", itemHandler.DeleteReminder)
	}

	authed.GET("/me", authHandler.Me)
	authed.GET("/activities", activityHandler.ListActivities)
	authed.GET("/stats", activityHandler.GetStats)
	authed.GET("/items/:type/:id", activityHandler.ResolveItem)

	ticktick := authed.Group("/integrations/ticktick")
	{
		ticktick.GET("/authorize", integrationHandler.GetAuthURL)
		ticktick.POST("/connect", integrationHandler.Connect)
		ticktick.GET("/status", integrationHandler.GetStatus)
		ticktick.DELETE("", integrationHandler.Disconnect)
		ticktick.POST("/sync", integrationHandler.TriggerSync)
		ticktick.POST("/reset", integrationHandler.ResetSync)
		ticktick.GET("/history", integrationHandler.GetSyncHistory)
	}

	// START SERVER
	log.Println("Server running on port:", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server error:", err)
	}
}
