// Package config 提供配置管理
package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	ScheduleGA ScheduleGAConfig `yaml:"schedule_ga"`
	MatrixGA  MatrixGAConfig  `yaml:"matrix_ga"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + c.SSLMode
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// ScheduleGAConfig 是从环境变量读取的 C4（排班层演化）参数；编排层不读取它，
// C4 实际生效的默认值由 schedulega.Config.WithDefaults 决定
type ScheduleGAConfig struct {
	DefaultTimeout    time.Duration `yaml:"default_timeout"`
	PopulationSize    int           `yaml:"population_size"`
	MaxGenerations    int           `yaml:"max_generations"`
	StagnationLimit   int           `yaml:"stagnation_limit"`
	EliteCount        int           `yaml:"elite_count"`
	MutationRate      float64       `yaml:"mutation_rate"`
	CrossoverRate     float64       `yaml:"crossover_rate"`
	TournamentSize    int           `yaml:"tournament_size"`
	BaselineAdherence float64       `yaml:"baseline_adherence"`
	Guided            bool          `yaml:"guided"`
}

// MatrixGAConfig 是从环境变量读取的 C5（矩阵层演化）参数；编排层不读取它，
// C5 实际生效的默认值由 matrixga.Config.WithDefaults 决定
type MatrixGAConfig struct {
	DefaultTimeout  time.Duration `yaml:"default_timeout"`
	PopulationSize  int           `yaml:"population_size"`
	MaxGenerations  int           `yaml:"max_generations"`
	StagnationLimit int           `yaml:"stagnation_limit"`
	MutationRate    float64       `yaml:"mutation_rate"`
	CrossoverRate   float64       `yaml:"crossover_rate"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "rotacore"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "rotacore"),
			User:            getEnv("DB_USER", "rotacore"),
			Password:        getEnv("DB_PASSWORD", "rotacore123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		ScheduleGA: ScheduleGAConfig{
			DefaultTimeout:    getEnvDuration("SCHEDULE_GA_TIMEOUT", 30*time.Second),
			PopulationSize:    getEnvInt("SCHEDULE_GA_POPULATION", 80),
			MaxGenerations:    getEnvInt("SCHEDULE_GA_MAX_GENERATIONS", 300),
			StagnationLimit:   getEnvInt("SCHEDULE_GA_STAGNATION_LIMIT", 40),
			EliteCount:        getEnvInt("SCHEDULE_GA_ELITE_COUNT", 4),
			MutationRate:      getEnvFloat("SCHEDULE_GA_MUTATION_RATE", 0.05),
			CrossoverRate:     getEnvFloat("SCHEDULE_GA_CROSSOVER_RATE", 0.8),
			TournamentSize:    getEnvInt("SCHEDULE_GA_TOURNAMENT_SIZE", 5),
			BaselineAdherence: getEnvFloat("SCHEDULE_GA_BASELINE_ADHERENCE", 0.7),
			Guided:            getEnvBool("SCHEDULE_GA_GUIDED", true),
		},
		MatrixGA: MatrixGAConfig{
			DefaultTimeout:  getEnvDuration("MATRIX_GA_TIMEOUT", 10*time.Minute),
			PopulationSize:  getEnvInt("MATRIX_GA_POPULATION", 1000),
			MaxGenerations:  getEnvInt("MATRIX_GA_MAX_GENERATIONS", 200),
			StagnationLimit: getEnvInt("MATRIX_GA_STAGNATION_LIMIT", 30),
			MutationRate:    getEnvFloat("MATRIX_GA_MUTATION_RATE", 0.1),
			CrossoverRate:   getEnvFloat("MATRIX_GA_CROSSOVER_RATE", 0.8),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
