package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string
		AppName  string

		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		// InstitutionEmailDomain is used to derive a synthetic address for roster
		// students with no email on file.
		InstitutionEmailDomain string

		SendgridApiKey string
		RollbarToken   string

		Server     ServerConfig
		Database   DatabaseConfig
		Regulatory RegulatoryConfig

		// Holidays lists the public holidays excluded from class schedules.
		Holidays []time.Time

		// RiskSweepCronSpec drives the periodic at-risk evaluation of all courses.
		RiskSweepCronSpec   string
		RiskSweepAutoNotify bool
	}

	ServerConfig struct {
		Host            string
		ApiAddress      string
		DebugAddress    string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	// RegulatoryConfig holds the institution-wide thresholds; loaded once at
	// process start, immutable thereafter.
	RegulatoryConfig struct {
		MinAttendancePct int
		MinPassingGrade  float64
	}
)

func (dbc DatabaseConfig) Address() string {
	return dbc.Host + ":" + dbc.Port
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "AcademicFlow")
	v.SetDefault("build", "dev")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("defaultFromName", "AcademicFlow")
	v.SetDefault("institutionEmailDomain", "universidad.edu.co")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverApiAddress", ":8080")
	v.SetDefault("serverDebugAddress", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "academicflow")
	v.SetDefault("databaseUser", "academicflow")
	v.SetDefault("databasePassword", "academicflow")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseDisableTLS", true)
	v.SetDefault("minAttendancePct", 80)
	v.SetDefault("minPassingGrade", 3.0)
	v.SetDefault("holidays", "")
	v.SetDefault("riskSweepCronSpec", "0 6 * * *")
	v.SetDefault("riskSweepAutoNotify", false)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
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
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Env:      env,
		Build:    v.GetString("build"),
		AppName:  v.GetString("appName"),

		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("defaultFromName"),
			Address: v.GetString("defaultFromEmail"),
		},
		InstitutionEmailDomain: v.GetString("institutionEmailDomain"),

		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			ApiAddress:      v.GetString("serverApiAddress"),
			DebugAddress:    v.GetString("serverDebugAddress"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetString("databasePort"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
		Regulatory: RegulatoryConfig{
			MinAttendancePct: v.GetInt("minAttendancePct"),
			MinPassingGrade:  v.GetFloat64("minPassingGrade"),
		},

		RiskSweepCronSpec:   v.GetString("riskSweepCronSpec"),
		RiskSweepAutoNotify: v.GetBool("riskSweepAutoNotify"),
	}
	conf.Holidays = parseHolidays(v.GetString("holidays"))
	return conf
}

// parseHolidays parses a comma-separated list of YYYY-MM-DD dates.
func parseHolidays(s string) []time.Time {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	dates := make([]time.Time, 0, len(parts))
	for _, p := range parts {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(p))
		if err != nil {
			log.Fatal(fmt.Errorf("config.parseHolidays(%q): %v", p, err))
		}
		dates = append(dates, d)
	}
	return dates
}
