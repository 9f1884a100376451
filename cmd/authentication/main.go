// Authentication service: username/password login with an OTP second
// factor, issuing the JWTs the requirement tracker validates.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/talentops/rfh/internal/authentication"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config struct for YAML configuration
type Config struct {
	HTTPPort      int    `yaml:"HTTP_PORT"`
	DBHost        string `yaml:"DB_HOST"`
	DBPort        int    `yaml:"DB_PORT"`
	DBUser        string `yaml:"DB_USER"`
	DBPassword    string `yaml:"DB_PASSWORD"`
	DBName        string `yaml:"DB_NAME"`
	DBSSLMode     string `yaml:"DB_SSLMODE"`
	RedisAddr     string `yaml:"REDIS_ADDR"`
	JWTSecret     string `yaml:"JWT_SECRET"`
	SeedAdminUser string `yaml:"SEED_ADMIN_USER"`
	SeedAdminPass string `yaml:"SEED_ADMIN_PASS"`
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", err)
	}

	users, err := authentication.NewGormUserRepository(gdb)
	if err != nil {
		log.Fatal("failed to initialize user repository", err)
	}

	// Without redis the codes live in process memory, which is fine for a
	// single instance.
	var otpStore authentication.OTPStore
	if cfg.RedisAddr != "" {
		otpStore = authentication.NewRedisOTPStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory OTP store")
		otpStore = authentication.NewMemoryOTPStore()
	}

	service := authentication.NewService(users, otpStore, &authentication.LogNotifier{Logger: logger}, cfg.JWTSecret, logger)

	seedAdmin(service, cfg, logger)

	router := chi.NewRouter()
	router.Mount("/auth", authentication.NewHandler(service, logger).Routes())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Authentication service running", zap.Int("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("Authentication service stopped")
}

func loadConfig() (*Config, error) {
	configPath := filepath.Join("internal", "authentication", "config", "config.yaml")
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// seedAdmin creates the bootstrap admin account on first start.
func seedAdmin(service *authentication.Service, cfg *Config, logger *zap.Logger) {
	if cfg.SeedAdminUser == "" || cfg.SeedAdminPass == "" {
		return
	}
	_, err := service.CreateUser(context.Background(), cfg.SeedAdminUser, "", cfg.SeedAdminPass, "admin", true)
	if err != nil {
		logger.Info("seed admin not created (may already exist)", zap.Error(err))
	}
}
