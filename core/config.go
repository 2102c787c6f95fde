package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	Build     string
	Debug     bool
	TestMode  bool
	AppName   string
	SecretKey string

	RollbarToken string

	// Backend is the remote school service all derived state is sourced from.
	// The base URL is injected here once; nothing else reads it from the environment.
	Backend struct {
		BaseURL string
		Timeout time.Duration
	}

	// SchoolYear bounds attendance tracking; see SchoolYearStart/SchoolYearEnd.
	SchoolYear struct {
		StartYear int
	}

	Server struct {
		Host               string
		Addr               string
		DebugHost          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	Database struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Capstone")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "q0w(e5r-t8y$u2i+op7a=sd&fgh3j!kl6z#xc9v*bn1m4")
	v.SetDefault("backendUrl", "") // empty selects the built-in dummy backend
	v.SetDefault("backendTimeout", 15*time.Second)
	v.SetDefault("schoolYearStart", 2025)
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8080")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "capstone")
	v.SetDefault("dbUser", "capstone")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbDisableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     env == "TEST",
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Backend.BaseURL = strings.TrimRight(v.GetString("backendUrl"), "/")
	conf.Backend.Timeout = v.GetDuration("backendTimeout")
	conf.SchoolYear.StartYear = v.GetInt("schoolYearStart")
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Addr = v.GetString("serverAddr")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Server.ShutdownTimeout = v.GetDuration("shutdownTimeout")
	conf.Database.Engine = v.GetString("dbEngine")
	conf.Database.Name = v.GetString("dbName")
	conf.Database.User = v.GetString("dbUser")
	conf.Database.Password = v.GetString("dbPassword")
	conf.Database.AdminUser = v.GetString("dbAdminUser")
	conf.Database.AdminPassword = v.GetString("dbAdminPassword")
	conf.Database.Host = v.GetString("dbHost")
	conf.Database.Port = v.GetInt("dbPort")
	conf.Database.DisableTLS = v.GetBool("dbDisableTLS")
	return conf
}

// SchoolYearStart returns the first tracked school day: June 16 of the configured start year.
func (c *Config) SchoolYearStart() time.Time {
	return time.Date(c.SchoolYear.StartYear, time.June, 16, 0, 0, 0, 0, time.UTC)
}

// SchoolYearEnd returns the last tracked school day: March 31 of the following year.
func (c *Config) SchoolYearEnd() time.Time {
	return time.Date(c.SchoolYear.StartYear+1, time.March, 31, 0, 0, 0, 0, time.UTC)
}

func (c *Config) DatabaseAddress() string {
	return fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
}
