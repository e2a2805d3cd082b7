/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allbin/go-serialsession"
	"github.com/spf13/viper"
)

// lineConfig builds the line settings from flags, config file and environment
func lineConfig() (serial.Config, error) {
	config := serial.DefaultConfig()

	parity, err := serial.ParseParity(viper.GetString("parity"))
	if err != nil {
		return config, fmt.Errorf("invalid parity %q: %w", viper.GetString("parity"), err)
	}
	flow, err := serial.ParseFlowControl(viper.GetString("flow-control"))
	if err != nil {
		return config, fmt.Errorf("invalid flow control %q: %w", viper.GetString("flow-control"), err)
	}

	opts := []serial.Option{
		serial.WithBaudRate(viper.GetInt("baud")),
		serial.WithDataBits(viper.GetInt("data-bits")),
		serial.WithStopBits(viper.GetInt("stop-bits")),
		serial.WithParity(parity),
		serial.WithFlowControl(flow),
	}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return config, err
		}
	}
	return config, nil
}

// helperTimeout bounds the privileged helper round trip of a one-shot command
const helperTimeout = 30 * time.Second

func helperContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), helperTimeout)
}

func newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newEscalator() serial.Escalator {
	return serial.NewCommandEscalator(viper.GetStringSlice("escalate-cmd")...)
}

func newSession(logger *slog.Logger) (*serial.Session, error) {
	conf, err := serial.ConfiguratorByName(viper.GetString("backend"))
	if err != nil {
		return nil, err
	}

	opts := []serial.SessionOption{
		serial.WithConfigurator(conf),
		serial.WithLogger(logger),
	}
	if viper.GetBool("no-escalate") {
		opts = append(opts, serial.WithoutEscalation())
	} else {
		opts = append(opts, serial.WithEscalator(newEscalator()))
	}
	return serial.NewSession(opts...)
}

// openSession opens portPath with the configured line settings
func openSession(ctx context.Context, portPath string, logger *slog.Logger) (*serial.Session, error) {
	config, err := lineConfig()
	if err != nil {
		return nil, err
	}

	s, err := newSession(logger)
	if err != nil {
		return nil, err
	}

	if err := s.OpenConfig(ctx, portPath, config); err != nil {
		return nil, explainOpenError(err)
	}
	return s, nil
}

// explainOpenError adds a hint about what the user can do next
func explainOpenError(err error) error {
	switch {
	case errors.Is(err, serial.ErrEscalationFailed):
		return fmt.Errorf("%w\nhint: the privileged helper could not run; check --escalate-cmd or add your user to the dialout group", err)
	case errors.Is(err, serial.ErrPermissionDenied):
		return fmt.Errorf("%w\nhint: the helper ran but access is still missing; check the device's udev rules", err)
	case errors.Is(err, serial.ErrNativeOpenFailed):
		return fmt.Errorf("%w\nhint: the device is busy, gone, or rejected the line settings", err)
	default:
		return err
	}
}
