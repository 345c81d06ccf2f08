package cmd

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "prepmate"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	AI        AIConfig        `mapstructure:"ai"`
	Documents DocumentsConfig `mapstructure:"documents"`
	RateLimit RateLimitConfig `mapstructure:"rate-limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
	Path   string `mapstructure:"path"`
}

type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt-secret"`
	TokenTTL  time.Duration `mapstructure:"token-ttl"`
}

type AIConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

type DocumentsConfig struct {
	WordsPerChunk    int   `mapstructure:"words-per-chunk"`
	MaxFileSize      int64 `mapstructure:"max-file-size"`
	ResumeChunkLimit int   `mapstructure:"resume-chunk-limit"`
}

type RateLimitConfig struct {
	Requests      int           `mapstructure:"requests"`
	Window        time.Duration `mapstructure:"window"`
	LoginRequests int           `mapstructure:"login-requests"`
	LoginWindow   time.Duration `mapstructure:"login-window"`
}

type LoggingConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "prepmate is an AI interview prep backend: upload a resume and a job description, then practice a scripted three-question interview",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is prepmate.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("logging.debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("logging.json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Secrets commonly live in a .env next to the binary during
	// development; load it before viper reads the environment.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("loading .env file: %v", err)
		}
	}

	viper.SetDefault("server.address", "")
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.path", app+".db")
	viper.SetDefault("storage.dir", "./data/uploads")
	viper.SetDefault("auth.token-ttl", 168*time.Hour)
	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash-exp")
	viper.SetDefault("ai.gemini.embedding-model", "text-embedding-004")
	viper.SetDefault("documents.words-per-chunk", 500)
	viper.SetDefault("documents.max-file-size", 2*1024*1024)
	viper.SetDefault("documents.resume-chunk-limit", 5)
	viper.SetDefault("rate-limit.requests", 100)
	viper.SetDefault("rate-limit.window", 15*time.Minute)
	viper.SetDefault("rate-limit.login-requests", 50)
	viper.SetDefault("rate-limit.login-window", 10*time.Minute)

	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("auth.jwt-secret", "JWT_SECRET"); err != nil {
		log.Fatalf("binding JWT_SECRET environment variable: %v", err)
	}
	if err := viper.BindEnv("database.url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		log.Fatalf("binding PORT environment variable: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A config file is optional; env vars and defaults can carry a full
	// deployment. A present-but-broken file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
