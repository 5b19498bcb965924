package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyPort              = "PORT"
	KeyEnv               = "GO_ENV"
	KeyMongoURI          = "MONGODB_URI"
	KeyMongoDatabase     = "MONGODB_DATABASE"
	KeyJWTSecret         = "JWT_SECRET"
	KeyRedisAddress      = "REDIS_ADDRESS"
	KeyRedisPassword     = "REDIS_PASSWORD"
	KeyRedisQueue        = "REDIS_QUEUE_FOR_ISSUE_LIMIT"
	KeyIssueDailyLimit   = "ISSUE_DAILY_LIMIT"
	KeyMLServiceURL      = "ML_SERVICE_URL"
	KeyClassifierTimeout = "CLASSIFIER_TIMEOUT"
	KeyUploadDir         = "UPLOAD_DIR"
	KeyMaxUploadBytes    = "MAX_UPLOAD_BYTES"
	KeyOTelEnabled       = "OTEL_ENABLED"
	KeyOTelStdout        = "OTEL_STDOUT"
	KeyOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the resolved process configuration.
type Config struct {
	Port              string
	Env               string
	MongoURI          string
	MongoDatabase     string
	JWTSecret         string
	RedisAddress      string
	RedisPassword     string
	RedisQueue        string
	IssueDailyLimit   int
	MLServiceURL      string
	ClassifierTimeout time.Duration
	UploadDir         string
	MaxUploadBytes    int64
	OTelEnabled       bool
	OTelStdout        bool
	OTLPEndpoint      string
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadDotEnv reads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// NewViper returns a viper instance bound to the environment with defaults
// registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyEnv, "development")
	v.SetDefault(KeyMongoDatabase, "infrasense")
	v.SetDefault(KeyRedisQueue, "issue_limit")
	v.SetDefault(KeyIssueDailyLimit, 20)
	v.SetDefault(KeyClassifierTimeout, "10s")
	v.SetDefault(KeyUploadDir, "images")
	v.SetDefault(KeyMaxUploadBytes, 5*1024*1024)
	v.SetDefault(KeyOTelEnabled, false)
	v.SetDefault(KeyOTelStdout, false)
	return v
}

// Load resolves Config from v.
func Load(v *viper.Viper) Config {
	timeout := v.GetDuration(KeyClassifierTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Config{
		Port:              v.GetString(KeyPort),
		Env:               v.GetString(KeyEnv),
		MongoURI:          v.GetString(KeyMongoURI),
		MongoDatabase:     v.GetString(KeyMongoDatabase),
		JWTSecret:         v.GetString(KeyJWTSecret),
		RedisAddress:      v.GetString(KeyRedisAddress),
		RedisPassword:     v.GetString(KeyRedisPassword),
		RedisQueue:        v.GetString(KeyRedisQueue),
		IssueDailyLimit:   v.GetInt(KeyIssueDailyLimit),
		MLServiceURL:      v.GetString(KeyMLServiceURL),
		ClassifierTimeout: timeout,
		UploadDir:         v.GetString(KeyUploadDir),
		MaxUploadBytes:    v.GetInt64(KeyMaxUploadBytes),
		OTelEnabled:       v.GetBool(KeyOTelEnabled),
		OTelStdout:        v.GetBool(KeyOTelStdout),
		OTLPEndpoint:      v.GetString(KeyOTLPEndpoint),
	}
}
