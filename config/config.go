// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validEnvs      = []string{"development", "production"}
	validDrivers   = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.env", "app_env")
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors_origins", "host_cors_origins")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.expires_hours", "jwt_expires_hours")
	v.BindEnv("jwt.cookie_expires_hours", "jwt_cookie_expires_hours")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.public_url", "aws_public_url")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender_address", "mail_sender_address")
	v.BindEnv("mail.password", "mail_password")

	//
	// Defaults
	//
	v.SetDefault("app.env", "production")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("jwt.expires_hours", 24)
	v.SetDefault("jwt.cookie_expires_hours", 24)

	v.SetDefault("security.rate_limit", 50)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validEnvs, v.GetString("app.env")) {
		return errors.New("invalid app env provided")
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid db driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetInt("jwt.expires_hours") <= 0 {
		return errors.New("jwt.expires_hours must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetString("aws.bucket") != "" {
		if v.GetString("aws.access_key") == "" {
			return errors.New("access key can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if v.GetString("aws.region") == "" {
			return errors.New("region can't be empty")
		}
		if v.GetString("aws.public_url") == "" {
			return errors.New("public url can't be empty")
		}
	}

	if v.GetString("mail.host") == "" {
		return errors.New("mail.host can't be empty")
	}

	if v.GetString("mail.sender_address") == "" {
		return errors.New("mail.sender_address can't be empty")
	}

	if v.GetInt("mail.port") <= 0 {
		return errors.New("mail.port must be bigger than 0")
	}

	return nil
}
