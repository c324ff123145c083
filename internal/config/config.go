package config

import (
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	LogLevel     string
	MaxRetries   int
	RetryDelay   time.Duration
	HTTP         HTTPConfig
	Kafka        KafkaConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Indexer      IndexerConfig
	Chain        ChainConfig
	Pool         PoolConfig
	SignerKeyHex string
}

// HTTPConfig holds HTTP client and health server configuration
type HTTPConfig struct {
	Timeout    time.Duration
	HealthAddr string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	BrokerAddress string
	Topic         string
	BatchSize     int
	BatchTimeout  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// IndexerConfig holds transfer-indexer configuration
type IndexerConfig struct {
	URL       string
	RateLimit float64
}

// ChainConfig holds configuration for the target chain
type ChainConfig struct {
	RpcEndpoint     string
	ApiKey          string
	ChainID         int64
	ExplorerBaseURL string
	NativeSymbol    string
	GasReserveWei   *big.Int
}

// PoolConfig holds the liquidity pool target
type PoolConfig struct {
	Address       string
	TokenAddress  string
	TokenSymbol   string
	TokenDecimals int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not fatal, as env vars might be set externally
	}

	config := &Config{
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		MaxRetries: getEnvAsInt("MAX_RETRIES", 5),
		RetryDelay: time.Duration(getEnvAsInt("RETRY_DELAY", 5)) * time.Second,
		HTTP: HTTPConfig{
			Timeout:    time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30)) * time.Second,
			HealthAddr: getEnv("HEALTH_ADDR", ":8080"),
		},
		Kafka: KafkaConfig{
			BrokerAddress: getEnv("KAFKA_BROKER_ADDRESS", "localhost:9092"),
			Topic:         getEnv("KAFKA_TOPIC", "liquidity-deposits"),
			BatchSize:     getEnvAsInt("KAFKA_BATCH_SIZE", 10),
			BatchTimeout:  time.Duration(getEnvAsInt("KAFKA_BATCH_TIMEOUT", 5)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "liquidity_monitor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Indexer: IndexerConfig{
			URL:       getEnv("INDEXER_WS_URL", "ws://localhost:8081/transfers"),
			RateLimit: getEnvAsFloat("INDEXER_RATE_LIMIT", 4),
		},
		Chain: ChainConfig{
			RpcEndpoint:     getEnv("CHAIN_RPC_ENDPOINT", "https://svc.blockdaemon.com/ethereum/mainnet/native"),
			ApiKey:          getEnv("CHAIN_API_KEY", ""),
			ChainID:         int64(getEnvAsInt("CHAIN_ID", 1)),
			ExplorerBaseURL: getEnv("EXPLORER_BASE_URL", "https://etherscan.io/tx/"),
			NativeSymbol:    getEnv("NATIVE_SYMBOL", "ETH"),
			GasReserveWei:   getEnvAsBigInt("GAS_RESERVE_WEI", "10000000000000000"),
		},
		Pool: PoolConfig{
			Address:       getEnv("POOL_ADDRESS", ""),
			TokenAddress:  getEnv("POOL_TOKEN_ADDRESS", ""),
			TokenSymbol:   getEnv("POOL_TOKEN_SYMBOL", "USDC"),
			TokenDecimals: getEnvAsInt("POOL_TOKEN_DECIMALS", 6),
		},
		SignerKeyHex: getEnv("SIGNER_PRIVATE_KEY", ""),
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBigInt gets an environment variable as a base-10 big.Int
func getEnvAsBigInt(key, defaultValue string) *big.Int {
	raw := getEnv(key, defaultValue)
	if v, ok := new(big.Int).SetString(raw, 10); ok {
		return v
	}
	v, _ := new(big.Int).SetString(defaultValue, 10)
	return v
}
