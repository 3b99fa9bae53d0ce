package config

import (
	"errors"
	"fmt"
)

// Validate はすべての設定値を検証し、エラーをまとめて返します。
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.validateStore(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverMongo:
		var errs []error
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri must not be empty"))
		}
		if c.Mongo.Database == "" {
			errs = append(errs, errors.New("mongo.database must not be empty"))
		}
		if c.Mongo.Collection == "" {
			errs = append(errs, errors.New("mongo.collection must not be empty"))
		}
		return errors.Join(errs...)
	case DriverMySQL:
		if c.MySQL.Host == "" || c.MySQL.Name == "" {
			return errors.New("mysql.host and mysql.name must not be empty")
		}
		return nil
	case DriverMemory:
		return nil
	default:
		return fmt.Errorf("store.driver must be one of: mongo, mysql, memory; got %q", c.Store.Driver)
	}
}
