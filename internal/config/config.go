package config

import (
	"log"
	"os"
	"strconv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory" or "firestore"
	UseMockLLM     bool   // true = use mock even on GCP

	Orchestrator string // only "function_calling" for now

	RecipeDataPath string

	MaxHistoryTurns  int
	MaxToolRounds    int
	MaxRecipeResults int
	RetryAttempts    int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("SOUSCHEF_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("SOUSCHEF_PORT", "8080"),

		GCPProjectID: getEnv("SOUSCHEF_GCP_PROJECT", ""),
		GCPLocation:  getEnv("SOUSCHEF_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("SOUSCHEF_MODEL_NAME", "gemini-2.5-flash-lite"),

		StorageBackend: getEnv("SOUSCHEF_STORAGE_BACKEND", "memory"),
		UseMockLLM:     getBoolEnv("SOUSCHEF_USE_MOCK_LLM", mode == ModeLocal),

		Orchestrator: getEnv("SOUSCHEF_ORCHESTRATOR", "function_calling"),

		RecipeDataPath: getEnv("SOUSCHEF_RECIPE_DATA", "data/recipes.json"),

		MaxHistoryTurns:  getIntEnv("SOUSCHEF_MAX_HISTORY_TURNS", 10),
		MaxToolRounds:    getIntEnv("SOUSCHEF_MAX_TOOL_ROUNDS", 3),
		MaxRecipeResults: getIntEnv("SOUSCHEF_MAX_RECIPE_RESULTS", 5),
		RetryAttempts:    getIntEnv("SOUSCHEF_RETRY_ATTEMPTS", 3),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("SOUSCHEF_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
