package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	JWTSecret     string
	OwnerSecret   string
	OwnerID       string
	MySQLDSN      string
	SQLitePath    string
	RedisURL      string
	DiscordToken  string
	ArtifactDir   string
	ModuleTimeout int

	AIProvider string
	AIModel    string
	OllamaURL  string
	OpenAIKey  string

	EditorCmd    string
	WorkspaceDir string

	RemoteHost     string
	RemoteUser     string
	RemotePassword string
	RemoteKeyFile  string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func Load() Config {
	timeout, _ := strconv.Atoi(getenv("MODULE_TIMEOUT", "60"))
	return Config{
		Port:          getenv("PORT", "8080"),
		JWTSecret:     getenv("JWT_SECRET", "b71fa57ce9eafd87a084c0cf4ededa3b0ad774b77be9bb1b"),
		OwnerSecret:   getenv("OWNER_SECRET", ""),
		OwnerID:       getenv("OWNER_ID", ""),
		MySQLDSN:      getenv("MYSQL_DSN", ""),
		SQLitePath:    getenv("SQLITE_PATH", "home-agent.db"),
		RedisURL:      getenv("REDIS_URL", ""),
		DiscordToken:  getenv("DISCORD_TOKEN", ""),
		ArtifactDir:   getenv("ARTIFACT_DIR", "artifacts"),
		ModuleTimeout: timeout,

		AIProvider: getenv("AI_PROVIDER", "ollama"),
		AIModel:    getenv("AI_MODEL", ""),
		OllamaURL:  getenv("OLLAMA_URL", "http://localhost:11434"),
		OpenAIKey:  getenv("OPENAI_API_KEY", ""),

		EditorCmd:    getenv("EDITOR_CMD", "code"),
		WorkspaceDir: getenv("WORKSPACE_DIR", "workspace"),

		RemoteHost:     getenv("REMOTE_HOST", ""),
		RemoteUser:     getenv("REMOTE_USER", ""),
		RemotePassword: getenv("REMOTE_PASSWORD", ""),
		RemoteKeyFile:  getenv("REMOTE_KEY_FILE", ""),
	}
}
