package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type LogConfig struct {
	ActivityFile string `mapstructure:"activity_file"`
	Level        string `mapstructure:"level"`
}

// LoanConfig carries the group's lending policy knobs. Defaults follow the
// group constitution: 20%/30% simple interest and a 0.75x savings limit.
type LoanConfig struct {
	InternalRatePercent float64 `mapstructure:"internal_rate_percent"`
	ExternalRatePercent float64 `mapstructure:"external_rate_percent"`
	LimitRatio          float64 `mapstructure:"limit_ratio"`
	GracePeriodDays     int     `mapstructure:"grace_period_days"`
	LateFeePercent      float64 `mapstructure:"late_fee_percent"`
}

type AppSubConfig struct {
	PageSize  int    `mapstructure:"page_size"`
	GroupName string `mapstructure:"group_name"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Loan     LoanConfig     `mapstructure:"loan"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. CHM_SERVER_PORT=9000
		v.SetEnvPrefix("CHM")
		v.AutomaticEnv()

		setDefaults(v)

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "data/chama.db")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("log.activity_file", "logs/activity.log")
	v.SetDefault("loan.internal_rate_percent", 20.0)
	v.SetDefault("loan.external_rate_percent", 30.0)
	v.SetDefault("loan.limit_ratio", 0.75)
	v.SetDefault("loan.grace_period_days", 7)
	v.SetDefault("loan.late_fee_percent", 5.0)
	v.SetDefault("app.page_size", 20)
	v.SetDefault("app.group_name", "Pamoja Agencies SHG")
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
