package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Pipeline context provided by the agent
	Pipeline PipelineConfig

	// Task inputs
	Inputs InputsConfig

	// Git configuration
	Git GitConfig

	// Build API client configuration
	API APIConfig

	// Logging configuration
	Log LogConfig

	// Server configuration for the classification service
	Server ServerConfig

	// Security configuration for the classification service
	Security SecurityConfig
}

// PipelineConfig holds the predefined pipeline variables
type PipelineConfig struct {
	CollectionURI string // System.TeamFoundationCollectionUri
	ProjectID     string // System.TeamProjectId
	AccessToken   string // System.AccessToken, empty for public projects
	DefinitionID  string // System.DefinitionId
	BuildID       string // Build.BuildId
	SourceVersion string // Build.SourceVersion
	SourceBranch  string // Build.SourceBranch
}

// InputsConfig holds the task inputs
type InputsConfig struct {
	Variable     string // Default category name
	Rules        string
	RulesFile    string // Overrides Rules when set
	IsOutput     bool
	Cwd          string
	Verbose      bool
	RefBranch    string
	BranchFilter string
	Output       string // "azure", "json" or "env"
}

// GitConfig holds git invocation settings
type GitConfig struct {
	Binary      string
	Parallelism int
}

// APIConfig holds build API settings
type APIConfig struct {
	Timeout    time.Duration
	RunTimeout time.Duration // 0 disables the overall deadline
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "text", "json" or "azure"
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestsPerMin  int
	TrustedProxies  []string
}

// SecurityConfig holds security-specific configuration
type SecurityConfig struct {
	// API Keys - sent by clients for authentication
	APIKeys []string

	GitHubWebhookSecret string
	GiteaWebhookSecret  string
}

// Load loads configuration from environment variables with sensible defaults.
// Agent variables use the agent's environment form (System.TeamProjectId is
// SYSTEM_TEAMPROJECTID) and task inputs use INPUT_<NAME>.
func Load() (*Config, error) {
	// Try to load .env file (ignore errors - it's optional)
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()

	cfg := &Config{
		Pipeline: PipelineConfig{
			CollectionURI: getEnv("SYSTEM_TEAMFOUNDATIONCOLLECTIONURI", ""),
			ProjectID:     getEnv("SYSTEM_TEAMPROJECTID", ""),
			AccessToken:   getEnv("SYSTEM_ACCESSTOKEN", ""),
			DefinitionID:  getEnv("SYSTEM_DEFINITIONID", ""),
			BuildID:       getEnv("BUILD_BUILDID", ""),
			SourceVersion: getEnv("BUILD_SOURCEVERSION", ""),
			SourceBranch:  getEnv("BUILD_SOURCEBRANCH", ""),
		},
		Inputs: InputsConfig{
			Variable:     getEnv("INPUT_VARIABLE", "FilesChanged"),
			Rules:        getEnv("INPUT_RULES", "**"),
			RulesFile:    getEnv("INPUT_RULESFILE", ""),
			IsOutput:     getEnvAsBool("INPUT_ISOUTPUT", false),
			Cwd:          getEnv("INPUT_CWD", cwd),
			Verbose:      getEnvAsBool("INPUT_VERBOSE", false),
			RefBranch:    getEnv("INPUT_REFBRANCH", ""),
			BranchFilter: getEnv("INPUT_BRANCHFILTER", ""),
			Output:       getEnv("INPUT_OUTPUT", "azure"),
		},
		Git: GitConfig{
			Binary:      getEnv("GIT_BINARY", "git"),
			Parallelism: getEnvAsInt("GIT_PARALLELISM", 4),
		},
		API: APIConfig{
			Timeout:    getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
			RunTimeout: getEnvAsDuration("RUN_TIMEOUT", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestsPerMin:  getEnvAsInt("SERVER_REQUESTS_PER_MINUTE", 60),
			TrustedProxies:  getEnvAsSlice("SERVER_TRUSTED_PROXIES", []string{}),
		},
		Security: SecurityConfig{
			APIKeys:             getEnvAsSlice("API_KEYS", []string{}),
			GitHubWebhookSecret: getEnv("GITHUB_WEBHOOK_SECRET", ""),
			GiteaWebhookSecret:  getEnv("GITEA_WEBHOOK_SECRET", ""),
		},
	}

	return cfg, nil
}

// Address returns the server address in the format host:port
func (s *ServerConfig) Address() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// LogLevel returns the effective log level; verbose runs log at debug.
func (c *Config) LogLevel() string {
	if c.Inputs.Verbose {
		return "debug"
	}
	return c.Log.Level
}

// Helper functions to get environment variables

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	// Split by comma and trim spaces
	values := make([]string, 0)
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}

	return values
}
