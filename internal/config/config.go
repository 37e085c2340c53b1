package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Режимы хранения журнала кликов
const (
	ModeDatabase = "database"
	ModeRedis    = "redis"
	ModeFile     = "file"
	ModeMemory   = "in-memory"
)

// Config хранит конфигурацию сервиса
type Config struct {
	ServerAddress   string        `json:"server_address"`
	GRPCAddress     string        `json:"grpc_address"`
	BaseURL         string        `json:"base_url"`
	BatchSize       int           `json:"batch_size"`
	ShortcodeLength int           `json:"shortcode_length"`
	LedgerKey       string        `json:"ledger_key"`
	FileStoragePath string        `json:"file_storage_path"`
	RedisAddress    string        `json:"redis_address"`
	RedisKeyPrefix  string        `json:"redis_key_prefix"`
	DatabaseDSN     string        `json:"database_dsn"`
	PersistTimeout  time.Duration `json:"persist_timeout"`
	LogLevel        string        `json:"log_level"`
	Mode            string        `json:"-"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		ServerAddress:   "localhost:8080",
		BaseURL:         "https://short.url/",
		BatchSize:       5,
		ShortcodeLength: 6,
		LedgerKey:       "clickData",
		FileStoragePath: "clicks.json",
		RedisKeyPrefix:  "shortener",
		PersistTimeout:  5 * time.Second,
		LogLevel:        "info",
		Mode:            ModeFile,
	}
}

// NewConfig собирает конфигурацию: значения по умолчанию, переменные окружения
// (и .env), JSON-файл, затем флаги командной строки
func NewConfig() *Config {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load - то же, что NewConfig, но с явным набором флагов и аргументов
func Load(fs *flag.FlagSet, args []string) *Config {
	def := Default()
	v := viper.New()

	v.SetDefault("SERVER_ADDRESS", def.ServerAddress) // Значения по умолчанию
	v.SetDefault("GRPC_ADDRESS", def.GRPCAddress)
	v.SetDefault("BASE_URL", def.BaseURL)
	v.SetDefault("BATCH_SIZE", def.BatchSize)
	v.SetDefault("SHORTCODE_LENGTH", def.ShortcodeLength)
	v.SetDefault("LEDGER_KEY", def.LedgerKey)
	v.SetDefault("FILE_STORAGE_PATH", def.FileStoragePath)
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_KEY_PREFIX", def.RedisKeyPrefix)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("PERSIST_TIMEOUT", def.PersistTimeout)
	v.SetDefault("LOG_LEVEL", def.LogLevel)

	v.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Флаги без значений по умолчанию: пустое значение означает "не задан"
	serverAddress := fs.String("a", "", "server address")
	grpcAddress := fs.String("g", "", "gRPC health server address")
	baseURL := fs.String("b", "", "base URL prefix of shortened links")
	batchSize := fs.Int("n", 0, "batch size")
	fileStoragePath := fs.String("f", "", "click ledger file path (JSON file)")
	redisAddress := fs.String("r", "", "redis address")
	databaseDSN := fs.String("d", "", "PostgreSQL DSN")
	logLevel := fs.String("l", "", "log level")
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		log.Printf("Ошибка разбора флагов: %v", err)
	}

	cfg := &Config{
		ServerAddress:   v.GetString("SERVER_ADDRESS"),
		GRPCAddress:     v.GetString("GRPC_ADDRESS"),
		BaseURL:         v.GetString("BASE_URL"),
		BatchSize:       v.GetInt("BATCH_SIZE"),
		ShortcodeLength: v.GetInt("SHORTCODE_LENGTH"),
		LedgerKey:       v.GetString("LEDGER_KEY"),
		FileStoragePath: v.GetString("FILE_STORAGE_PATH"),
		RedisAddress:    v.GetString("REDIS_ADDRESS"),
		RedisKeyPrefix:  v.GetString("REDIS_KEY_PREFIX"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		PersistTimeout:  v.GetDuration("PERSIST_TIMEOUT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}

	// JSON-конфигурация перекрывает только то, что не задано в окружении
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}
	if *configPath != "" {
		if err := cfg.mergeJSON(*configPath, v); err != nil {
			log.Printf("Не удалось применить JSON-файл конфигурации %q: %v", *configPath, err)
		}
	}

	// Если флаг передан, он имеет высший приоритет
	override := func(flagVal string, target *string) {
		if flagVal != "" {
			*target = flagVal
		}
	}
	override(*serverAddress, &cfg.ServerAddress)
	override(*grpcAddress, &cfg.GRPCAddress)
	override(*baseURL, &cfg.BaseURL)
	override(*fileStoragePath, &cfg.FileStoragePath)
	override(*redisAddress, &cfg.RedisAddress)
	override(*databaseDSN, &cfg.DatabaseDSN)
	override(*logLevel, &cfg.LogLevel)
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}

	cfg.Mode = cfg.resolveMode()

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: BaseURL=%s", cfg.BaseURL)
	log.Printf("Инициализация конфигурации: BatchSize=%d", cfg.BatchSize)
	log.Printf("Инициализация конфигурации: Mode=%s", cfg.Mode)

	if err := cfg.Validate(); err != nil {
		log.Printf("Ошибка конфигурации: %v", err)
	}

	return cfg
}

// mergeJSON применяет значения из JSON-файла для ключей, не заданных в окружении
func (cfg *Config) mergeJSON(path string, v *viper.Viper) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	type rawJSON Config
	jsonCfg := &rawJSON{}
	if err := json.Unmarshal(data, jsonCfg); err != nil {
		return fmt.Errorf("ошибка разбора JSON: %w", err)
	}

	// v.IsSet учитывает и SetDefault, поэтому смотрим только окружение и .env
	explicit := func(env string) bool {
		_, ok := os.LookupEnv(env)
		return ok || v.InConfig(env)
	}

	setString := func(env, val string, target *string) {
		if val != "" && !explicit(env) {
			*target = val
		}
	}
	setString("SERVER_ADDRESS", jsonCfg.ServerAddress, &cfg.ServerAddress)
	setString("GRPC_ADDRESS", jsonCfg.GRPCAddress, &cfg.GRPCAddress)
	setString("BASE_URL", jsonCfg.BaseURL, &cfg.BaseURL)
	setString("LEDGER_KEY", jsonCfg.LedgerKey, &cfg.LedgerKey)
	setString("FILE_STORAGE_PATH", jsonCfg.FileStoragePath, &cfg.FileStoragePath)
	setString("REDIS_ADDRESS", jsonCfg.RedisAddress, &cfg.RedisAddress)
	setString("REDIS_KEY_PREFIX", jsonCfg.RedisKeyPrefix, &cfg.RedisKeyPrefix)
	setString("DATABASE_DSN", jsonCfg.DatabaseDSN, &cfg.DatabaseDSN)
	setString("LOG_LEVEL", jsonCfg.LogLevel, &cfg.LogLevel)

	if jsonCfg.BatchSize > 0 && !explicit("BATCH_SIZE") {
		cfg.BatchSize = jsonCfg.BatchSize
	}
	if jsonCfg.ShortcodeLength > 0 && !explicit("SHORTCODE_LENGTH") {
		cfg.ShortcodeLength = jsonCfg.ShortcodeLength
	}
	if jsonCfg.PersistTimeout > 0 && !explicit("PERSIST_TIMEOUT") {
		cfg.PersistTimeout = jsonCfg.PersistTimeout
	}
	return nil
}

// resolveMode определяет режим хранения журнала кликов
func (cfg *Config) resolveMode() string {
	switch {
	case cfg.DatabaseDSN != "":
		return ModeDatabase
	case cfg.RedisAddress != "":
		return ModeRedis
	case cfg.FileStoragePath != "":
		return ModeFile
	default:
		return ModeMemory
	}
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("базовый URL не может быть пустым")
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("размер пакета должен быть положительным: %d", cfg.BatchSize)
	}
	if cfg.ShortcodeLength < 1 || cfg.ShortcodeLength > 8 {
		return fmt.Errorf("длина shortcode должна быть от 1 до 8: %d", cfg.ShortcodeLength)
	}
	if cfg.LedgerKey == "" {
		return fmt.Errorf("ключ журнала кликов не может быть пустым")
	}
	if cfg.PersistTimeout <= 0 {
		return fmt.Errorf("таймаут записи должен быть положительным")
	}
	return nil
}
