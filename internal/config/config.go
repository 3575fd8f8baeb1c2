package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string
	DB          DBConfig
	Server      ServerConfig
	Redis       RedisConfig
	Mongo       MongoConfig
	LLM         LLMConfig
	Grammar     GrammarConfig
	Friends     FriendsConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	Cache       CacheConfig
	Logger      LoggerConfig
	RateLimit   RateLimitConfig
}

type DBConfig struct {
	Driver   string // "oracle" (go-ora) or "godror"
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MongoConfig struct {
	URI      string
	Database string
}

// LLMConfig selects the text-generation backend used for essay evaluation.
type LLMConfig struct {
	Provider    string // ollama, openai or huggingface
	ServerURL   string
	Model       string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
	JSONMode    bool
}

type GrammarConfig struct {
	Enabled  bool
	URL      string
	Language string
	Timeout  time.Duration
}

type FriendsConfig struct {
	// AutoAcceptMutual resolves a request into a friendship when the receiver
	// already has a pending request to the sender.
	AutoAcceptMutual bool
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// AuthConfig groups what the auth service needs.
type AuthConfig struct {
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type CacheConfig struct {
	EvaluationTTL time.Duration
	StatementsTTL time.Duration
	UnreadTTL     time.Duration
}

type LoggerConfig struct {
	Env   string
	Level string
}

type RateLimitConfig struct {
	EvaluationsPerMinute int
}

func setDefaults() {
	viper.SetDefault("env", "development")
	viper.SetDefault("db.driver", "oracle")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 60)
	viper.SetDefault("server.body_limit", 5*1024*1024)
	viper.SetDefault("mongo.database", "essayhub")
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.server", "http://localhost:11434")
	viper.SetDefault("llm.model", "llama3.1")
	viper.SetDefault("llm.timeout", 60)
	viper.SetDefault("llm.temperature", 0.5)
	viper.SetDefault("llm.json_mode", true)
	viper.SetDefault("grammar.enabled", true)
	viper.SetDefault("grammar.url", "http://localhost:8010")
	viper.SetDefault("grammar.language", "en-US")
	viper.SetDefault("grammar.timeout", 15)
	viper.SetDefault("friends.auto_accept_mutual", true)
	viper.SetDefault("jwt.access_token_ttl", "168h")
	viper.SetDefault("jwt.refresh_token_ttl", "720h")
	viper.SetDefault("cache.evaluation_ttl", "24h")
	viper.SetDefault("cache.statements_ttl", "24h")
	viper.SetDefault("cache.unread_ttl", "5m")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("rate_limit.evaluations_per_minute", 10)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		fmt.Println("No config file found, using defaults and environment")
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Env: viper.GetString("env"),
		DB: DBConfig{
			Driver:   viper.GetString("db.driver"),
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
			BodyLimit:    viper.GetInt("server.body_limit"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("mongo.uri"),
			Database: viper.GetString("mongo.database"),
		},
		LLM: LLMConfig{
			Provider:    viper.GetString("llm.provider"),
			ServerURL:   viper.GetString("llm.server"),
			Model:       viper.GetString("llm.model"),
			APIKey:      viper.GetString("llm.api_key"),
			Timeout:     viper.GetDuration("llm.timeout") * time.Second,
			Temperature: viper.GetFloat64("llm.temperature"),
			JSONMode:    viper.GetBool("llm.json_mode"),
		},
		Grammar: GrammarConfig{
			Enabled:  viper.GetBool("grammar.enabled"),
			URL:      viper.GetString("grammar.url"),
			Language: viper.GetString("grammar.language"),
			Timeout:  viper.GetDuration("grammar.timeout") * time.Second,
		},
		Friends: FriendsConfig{
			AutoAcceptMutual: viper.GetBool("friends.auto_accept_mutual"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		Cache: CacheConfig{
			EvaluationTTL: viper.GetDuration("cache.evaluation_ttl"),
			StatementsTTL: viper.GetDuration("cache.statements_ttl"),
			UnreadTTL:     viper.GetDuration("cache.unread_ttl"),
		},
		Logger: LoggerConfig{
			Env:   viper.GetString("env"),
			Level: viper.GetString("logger.level"),
		},
		RateLimit: RateLimitConfig{
			EvaluationsPerMinute: viper.GetInt("rate_limit.evaluations_per_minute"),
		},
	}

	// Environment overrides
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.DB.Port = p
		}
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if llmServer := os.Getenv("LLM_SERVER"); llmServer != "" {
		config.LLM.ServerURL = llmServer
	}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
		config.Mongo.URI = mongoURI
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}
	if autoAccept := os.Getenv("FRIENDS_AUTO_ACCEPT_MUTUAL"); autoAccept != "" {
		if b, err := strconv.ParseBool(autoAccept); err == nil {
			config.Friends.AutoAcceptMutual = b
		}
	}

	return config, nil
}

func (c *Config) Auth() AuthConfig {
	return AuthConfig{JWT: c.JWT, GoogleOAuth: c.GoogleOAuth}
}

// GetDSN builds the connection string for the configured Oracle driver.
func (c *Config) GetDSN() string {
	if c.DB.Driver == "godror" {
		return fmt.Sprintf(`user="%s" password="%s" connectString="%s:%d/%s"`,
			c.DB.User,
			c.DB.Password,
			c.DB.Host,
			c.DB.Port,
			c.DB.DBName,
		)
	}
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
