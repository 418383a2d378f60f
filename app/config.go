package app

import (
	"encoding/json"
	"os"
	"strings"
)

// Config is required configuration for vector.
type Config struct {
	Provider     string `json:"provider"`
	OllamaHost   string `json:"ollamaHost"`
	OllamaModel  string `json:"ollamaModel"`
	OpenAIAPIKey string `json:"openAIAPIKey"`
	OpenAIModel  string `json:"openAIModel"`

	ReportsDirectoryPath string `json:"reportsDirPath"`
	LogsDirectoryPath    string `json:"logsDirPath"`
	AppDatabasePath      string `json:"appDatabasePath"`

	PageSize     int `json:"pageSize"`
	CommentLimit int `json:"commentLimit"`
	FetchWorkers int `json:"fetchWorkers"`
	FetchBatch   int `json:"fetchBatch"`
}

// LoadConfig reads the JSON config at path, then applies environment
// overrides and defaults. An empty path yields a default config.
func LoadConfig(path string) (*Config, error) {
	conf := new(Config)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(conf); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		conf.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		conf.OllamaHost = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		conf.OllamaModel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		conf.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		conf.OpenAIModel = v
	}

	if conf.Provider == "" {
		conf.Provider = "ollama"
	}
	if conf.OllamaHost == "" {
		conf.OllamaHost = "http://localhost:11434"
	}
	if conf.OllamaModel == "" {
		conf.OllamaModel = "llama3"
	}
	if conf.OpenAIModel == "" {
		conf.OpenAIModel = "gpt-4o-mini"
	}
	if conf.ReportsDirectoryPath == "" {
		conf.ReportsDirectoryPath = "reports"
	}
	if conf.LogsDirectoryPath == "" {
		conf.LogsDirectoryPath = "logs"
	}
	if conf.AppDatabasePath == "" {
		conf.AppDatabasePath = "vector.db"
	}
	if conf.PageSize <= 0 {
		conf.PageSize = DefaultPageSize
	}
	if conf.CommentLimit <= 0 {
		conf.CommentLimit = DefaultCommentLimit
	}
	if conf.FetchWorkers <= 0 {
		conf.FetchWorkers = DefaultFetchWorkers
	}
	if conf.FetchBatch <= 0 {
		conf.FetchBatch = DefaultFetchBatch
	}

	return conf, nil
}
