package main

import (
	"time"

	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/database"
	"github.com/lshigami/skilltest/internal/event"
	"github.com/lshigami/skilltest/internal/logger"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/lshigami/skilltest/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		return database.AutoMigrate(db)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire abandoned attempts once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}

		var publisher event.Publisher = event.LogPublisher{}
		if cfg.RabbitMQ.URL != "" {
			amqpPublisher, err := event.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
			if err != nil {
				return err
			}
			publisher = amqpPublisher
		}
		defer publisher.Close()

		reaper := service.NewReaperService(repository.NewAttemptRepository(db), publisher, cfg)
		n, err := reaper.Sweep(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		log.Info().Int("expired", n).Msg("Sweep finished")
		return nil
	},
}

func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
