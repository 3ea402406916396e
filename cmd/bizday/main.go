package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/bizday-calc/internal/bizday"
	"github.com/username/bizday-calc/internal/calendar"
	"github.com/username/bizday-calc/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bizday",
		Short:         "Business-day delivery date calculator",
		Long:          "Compute delivery dates a number of business days away, skipping weekends, public holidays and closure days",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					logger = initLogger(cfg.Log.Level) // Fallback to console
					logger.Warn("Failed to open log file, logging to console", zap.Error(err))
				}
			} else {
				logger = initLogger(cfg.Log.Level)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml, $HOME/.bizday, /etc/bizday)")

	rootCmd.AddCommand(deliveryCmd())
	rootCmd.AddCommand(fromTodayCmd())
	rootCmd.AddCommand(checkCmd())

	return rootCmd
}

// initializeEngine builds the holiday calendar selected in cfg and wraps it in an engine
func initializeEngine(ctx context.Context, cfg *config.Config) (*bizday.Engine, error) {
	cal, err := initializeCalendar(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newEngine(cal), nil
}

func newEngine(cal calendar.Calendar) *bizday.Engine {
	return bizday.NewEngine(
		calendar.NewOracle(cal, logger),
		logger,
		bizday.WithMaxOffset(cfg.Engine.MaxOffset),
		bizday.WithMaxGap(cfg.Engine.MaxGap),
	)
}

func initializeCalendar(ctx context.Context, cfg *config.Config) (calendar.Calendar, error) {
	switch cfg.Holidays.Source {
	case config.SourceRules:
		logger.Info("Using rule-based holiday calendar", zap.String("region", cfg.Holidays.Region))
		return calendar.NewRulesCalendar(cfg.Holidays.Region, logger)

	case config.SourceFile:
		logger.Info("Using holiday file", zap.String("file", cfg.Holidays.File))
		fileCal := calendar.NewFileCalendar(cfg.Holidays.File, logger)
		if err := fileCal.Load(); err != nil {
			return nil, fmt.Errorf("failed to load holiday file: %w", err)
		}
		return fileCal, nil

	case config.SourceRemote:
		logger.Info("Using remote holiday API", zap.String("url", cfg.Holidays.RemoteURL))
		remote := calendar.NewRemoteCalendar(cfg.Holidays.RemoteURL, cfg.Holidays.GetCacheTTL(), logger)
		remote.SetContext(ctx)
		if err := preloadAround(ctx, remote); err != nil {
			return nil, err
		}
		return remote, nil

	case config.SourceComposite:
		logger.Info("Using remote holiday API with rule-based fallback",
			zap.String("url", cfg.Holidays.RemoteURL),
			zap.String("region", cfg.Holidays.Region))
		remote := calendar.NewRemoteCalendar(cfg.Holidays.RemoteURL, cfg.Holidays.GetCacheTTL(), logger)
		remote.SetContext(ctx)
		if err := preloadAround(ctx, remote); err != nil {
			logger.Warn("Failed to preload holiday data, continuing with fallback", zap.Error(err))
		}
		rules, err := calendar.NewRulesCalendar(cfg.Holidays.Region, logger)
		if err != nil {
			return nil, err
		}
		return calendar.NewCompositeCalendar(remote, rules, logger), nil
	}

	return nil, fmt.Errorf("unknown holiday source: %s", cfg.Holidays.Source)
}

// preloadAround fetches last, current and next year so typical lookups stay in memory
func preloadAround(ctx context.Context, remote *calendar.RemoteCalendar) error {
	year := time.Now().Year()
	if err := remote.Preload(ctx, year-1, year, year+1); err != nil {
		return fmt.Errorf("failed to preload holiday data: %w", err)
	}
	return nil
}

func initLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))

	l, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return l
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		parseLevel(level),
	)

	return zap.New(core), nil
}

func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	return zapLevel
}
