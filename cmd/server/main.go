package main

import (
	"fmt"
	"os"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/config"
	"github.com/Invcxze/TaskTracker/internal/handler"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/router"
	"github.com/Invcxze/TaskTracker/internal/search"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.AuthToken{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.Workspace{},
		&model.UserWorkspaceRole{},
		&model.TaskType{},
		&model.TaskStatus{},
		&model.Label{},
		&model.Task{},
		&model.TaskDependency{},
		&model.TaskComment{},
		&model.TaskAttachment{},
		&model.TaskChecklistItem{},
		&model.TaskLog{},
	); err != nil {
		log.WithError(err).Fatal("auto migrate")
	}

	// Redis (search index)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	index := search.NewRedisIndex(rdb)

	// Projection worker
	projector := search.NewProjector(db, index, log)
	projector.Start()
	defer projector.Stop()

	evaluator := access.NewEvaluator(db)

	// Services
	authService := service.NewAuthService(db)
	userService := service.NewUserService(db, projector)
	workspaceService := service.NewWorkspaceService(db, projector)
	taskService := service.NewTaskService(db, evaluator, projector)
	statusService := service.NewTaskStatusService(db, evaluator, projector)
	typeService := service.NewTaskTypeService(db, projector)
	labelService := service.NewLabelService(db, evaluator, projector)
	dependencyService := service.NewDependencyService(db)
	detailService := service.NewTaskDetailService(db, projector, cfg.Upload.Dir)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, index)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	taskHandler := handler.NewTaskHandler(taskService, index)
	statusHandler := handler.NewTaskStatusHandler(statusService)
	typeHandler := handler.NewTaskTypeHandler(typeService)
	labelHandler := handler.NewLabelHandler(labelService)
	dependencyHandler := handler.NewDependencyHandler(dependencyService)
	detailHandler := handler.NewTaskDetailHandler(detailService)

	// Gin engine
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	router.Setup(r, router.Deps{
		AuthService:       authService,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		WorkspaceHandler:  workspaceHandler,
		TaskHandler:       taskHandler,
		TaskStatusHandler: statusHandler,
		TaskTypeHandler:   typeHandler,
		LabelHandler:      labelHandler,
		DependencyHandler: dependencyHandler,
		TaskDetailHandler: detailHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.WithField("addr", addr).Info("server starting")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("server run")
	}
}
