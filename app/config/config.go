package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment         EnvironmentConfig
	Server              ServerConfig
	Database            DatabaseConfig
	DatabaseConnections DatabaseConnectionsConfig
	Redis               RedisConfig
	JWT                 JWTConfig
	RateLimit           RateLimitConfig
	Email               EmailConfig
	AssetStore          AssetStoreConfig
	Tracing             TracingConfig
}

type EnvironmentConfig struct {
	Current string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	CookieSecure bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type DatabaseConnectionsConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

type EmailConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
	BaseURL  string
}

type AssetStoreConfig struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	DefaultAvatarID  string
	DefaultAvatarURL string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func LoadConfig() (config Config, err error) {
	viper.SetConfigName("app")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, err
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("environment.current", "development")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.readtimeout", 15)
	viper.SetDefault("server.writetimeout", 15)
	viper.SetDefault("server.idletimeout", 60)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "pingpark")
	viper.SetDefault("database.password", "pingpark")
	viper.SetDefault("database.dbname", "pingpark")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("databaseconnections.maxopenconns", 25)
	viper.SetDefault("databaseconnections.maxidleconns", 5)
	viper.SetDefault("databaseconnections.connmaxlifetime", 5*time.Minute)
	viper.SetDefault("databaseconnections.connmaxidletime", time.Minute)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secretkey", "your_default_secret_change_in_production")
	viper.SetDefault("ratelimit.maxrequests", 100)
	viper.SetDefault("ratelimit.window", time.Minute)
	viper.SetDefault("email.baseurl", "http://localhost:8080")
	viper.SetDefault("assetstore.baseurl", "http://localhost:9000")
	viper.SetDefault("assetstore.timeout", 30*time.Second)
	viper.SetDefault("assetstore.defaultavatarid", "ping-park")
	viper.SetDefault("assetstore.defaultavatarurl", "https://res.cloudinary.com/ping-park/image/upload/ping-park-group.png")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")
	viper.SetDefault("tracing.servicename", "ping-park")

	err = viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.JWT.SecretKey == "your_default_secret_change_in_production" {
		log.Println("WARNING: Using default JWT secret key. This is insecure for production.")
	}

	return config, nil
}
