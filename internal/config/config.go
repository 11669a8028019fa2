package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  string
	Env   string
	LLM   LLMConfig
	Image ImageConfig
	// DatabaseDSN enables image-record persistence when set.
	DatabaseDSN string
}

type LLMConfig struct {
	Model       string
	StrongModel string
	MaxAttempts int
	RetryBase   time.Duration
	// CallTimeout bounds each backend call; 0 leaves calls unbounded and
	// relies on the retry policy alone.
	CallTimeout time.Duration
	RPS         float64
	Burst       int
}

type ImageConfig struct {
	Model     string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	LocalDir  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:        *port,
		Env:         env,
		LLM:         loadLLMConfig(),
		Image:       loadImageConfig(env),
		DatabaseDSN: strings.TrimSpace(os.Getenv("IMAGES_PG_DSN")),
	}, nil
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_MODEL")), "gemini-2.5-flash"),
		StrongModel: firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_STRONG_MODEL")), "gemini-2.5-pro"),
		MaxAttempts: envInt("LLM_MAX_ATTEMPTS", 3),
		RetryBase:   envDuration("LLM_RETRY_BASE", time.Second),
		CallTimeout: envDuration("LLM_CALL_TIMEOUT", 0),
		RPS:         envFloat("LLM_RPS", 0),
		Burst:       envInt("LLM_BURST", 1),
	}
}

func loadImageConfig(env string) ImageConfig {
	endpoint := resolveImageEndpoint(env)
	return ImageConfig{
		Model:     firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_MODEL")), "imagen-3.0-generate-002"),
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_S3_BUCKET")), "pageforge-images"),
		UseSSL:    resolveImageUseSSL(env),
		LocalDir:  firstNonEmpty(strings.TrimSpace(os.Getenv("IMAGE_LOCAL_DIR")), "generated"),
	}
}

func resolveImageEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("IMAGE_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("IMAGE_S3_ENDPOINT"))
}

func resolveImageUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("IMAGE_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
