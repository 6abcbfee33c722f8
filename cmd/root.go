package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "mockwise"
)

type Config struct {
	// User is the identity answers are saved under in CLI sessions.
	User    string         `mapstructure:"user"`
	AI      *AIConfig      `mapstructure:"ai"`
	Storage *StorageConfig `mapstructure:"storage"`
	Server  *ServerConfig  `mapstructure:"server"`
}

type AIConfig struct {
	Provider  string        `mapstructure:"provider"`
	Questions int           `mapstructure:"questions"`
	Gemini    *GeminiConfig `mapstructure:"gemini"`
	OpenAI    *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api-key"`
	APIKeyFile        string `mapstructure:"api-key-file"`
	Model             string `mapstructure:"model"`
	SystemInstruction string `mapstructure:"system-instruction"`
	MaxRetries        int    `mapstructure:"max-retries"`
	MaxLogLength      int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKey            string `mapstructure:"api-key"`
	APIKeyFile        string `mapstructure:"api-key-file"`
	BaseURL           string `mapstructure:"base-url"`
	Model             string `mapstructure:"model"`
	SystemInstruction string `mapstructure:"system-instruction"`
	MaxLogLength      int    `mapstructure:"max-log-length"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	SQLite *struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"sqlite"`
	Firestore *FirestoreConfig `mapstructure:"firestore"`
}

type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project-id"`
	Database        string `mapstructure:"database"`
	CredentialsFile string `mapstructure:"credentials-file"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "mockwise is a mock interview trainer: generate questions, answer them aloud and get scored",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.openai.api-key-file": "OPENAI_API_KEY_FILE",
		"user":                   "MOCKWISE_USER",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is mockwise.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("user", "", "user id answers are saved under")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Without an explicit --config every setting has a default.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Storage == nil {
		config.Storage = &StorageConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
