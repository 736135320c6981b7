package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"user-service/internal/api"
	"user-service/internal/cache"
	"user-service/internal/config"
	"user-service/internal/events"
	"user-service/internal/repository"
	"user-service/internal/service"
	"user-service/migrations"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("user-service failed")
	}
}

var rootCmd = &cobra.Command{
	Use:           "user-service",
	Short:         "HTTP CRUD service for users",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and serve the users API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users table and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", os.Getenv("CONFIG_PATH"), "path to a yaml config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (*config.Config, error) {
	conf, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(conf.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	return conf, nil
}

func connectDB(driver, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open(driver, dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to %s database", driver)
				return db, nil
			}
			db.Close()
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to %s database", i+1, driver)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to %s database after retries: %w", driver, err)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := connectDB(conf.DB.Driver, conf.DB.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.AutoMigrateUsers(conf.DB.MigrateRetries, conf.DB.Driver, db); err != nil {
		return err
	}
	log.Info().Msg("users table migrated")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := connectDB(conf.DB.Driver, conf.DB.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.AutoMigrateUsers(conf.DB.MigrateRetries, conf.DB.Driver, db); err != nil {
		return err
	}

	userRepo, err := repository.NewUserRepository(db, conf.DB.Driver)
	if err != nil {
		return err
	}

	var opts []service.Option
	if conf.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: conf.Redis.Addr,
		})
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewUserCache(rdb, conf.Redis.TTL)))
		log.Info().Msgf("User cache enabled on %s", conf.Redis.Addr)
	}
	if len(conf.Kafka.Brokers) > 0 {
		kafkaWriter := config.NewKafkaWriter(conf.Kafka.Brokers, conf.Kafka.Topic)
		defer kafkaWriter.Close()
		opts = append(opts, service.WithPublisher(events.NewPublisher(kafkaWriter)))
		log.Info().Msgf("User events enabled on topic %s", conf.Kafka.Topic)
	}

	userService := service.NewUserService(userRepo, opts...)
	userHandler := api.NewUserHandler(userService)

	e := api.NewRouter(userHandler, api.RouterConfig{
		JWTSecret:      conf.Auth.JWTSecret,
		RequestTimeout: conf.Server.RequestTimeout,
		RateLimit:      conf.RateLimit.Rate,
		RateBurst:      conf.RateLimit.Burst,
		RateExpiresIn:  conf.RateLimit.ExpiresIn,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Listening on %s", conf.Addr())
		if err := e.Start(conf.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
