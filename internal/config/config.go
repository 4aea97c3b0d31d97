package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Research  ResearchConfig
	Assistant AssistantConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
}

// ResearchConfig points at the market-research backend plus the scope the
// harness operates in. WorkspaceId and ExplorationId are dev defaults only;
// library callers supply their own scope per call.
type ResearchConfig struct {
	BaseURL        string
	TimeoutSeconds int
	WorkspaceId    string
	ExplorationId  string
}

// AssistantConfig points at the conversational assistant service.
type AssistantConfig struct {
	BaseURL        string
	TimeoutSeconds int
	OrgId          string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "orchestrator.log"),
		},
		Research: ResearchConfig{
			BaseURL:        getEnv("RESEARCH_API_BASE_URL", "http://localhost:8080"),
			TimeoutSeconds: getEnvAsInt("RESEARCH_API_TIMEOUT_SECONDS", 60),
			WorkspaceId:    getEnv("RESEARCH_WORKSPACE_ID", ""),
			ExplorationId:  getEnv("RESEARCH_EXPLORATION_ID", ""),
		},
		Assistant: AssistantConfig{
			BaseURL:        getEnv("ASSISTANT_API_BASE_URL", "http://localhost:8081"),
			TimeoutSeconds: getEnvAsInt("ASSISTANT_API_TIMEOUT_SECONDS", 30),
			OrgId:          getEnv("ASSISTANT_ORG_ID", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
