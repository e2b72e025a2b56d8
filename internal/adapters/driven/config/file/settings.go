package file

import (
	"os"

	"github.com/civicsignal/billfeed/internal/core/ports/driven"
)

// Configuration keys. The TOML file nests them, e.g.
//
//	[legiscan]
//	api_key = "..."
const (
	KeyAPIKey       = "legiscan.api_key"
	KeyBaseURL      = "legiscan.base_url"
	KeyQuery        = "search.query"
	KeyJurisdiction = "search.jurisdiction"
	KeyMinRelevance = "search.min_relevance"
	KeyDataDir      = "storage.data_dir"
	KeyRedisURL     = "queue.redis_url"
	KeyQueueName    = "queue.name"
)

// Environment overrides take precedence over the config file.
const (
	EnvAPIKey   = "BILLFEED_API_KEY"
	EnvAPIKeyLS = "LEGISCAN_API_KEY"
	EnvRedisURL = "BILLFEED_REDIS_URL"
)

// DefaultQuery is the full-text search sent to the provider when no
// query is configured. It casts a wide net over AI and automated
// decision-making terminology using the provider's NEAR operator.
const DefaultQuery = "(digital NEAR replica) OR (computer-generated) OR (digital NEAR forger) OR " +
	"(artificial NEAR intelligence) OR (automated NEAR decision NEAR making) OR " +
	"(automatic NEAR decision NEAR making) OR (decision NEAR making NEAR tool) OR " +
	"(automated NEAR decision NEAR tool) OR (automatic NEAR decision NEAR tool) OR " +
	"(automated NEAR decision NEAR system) OR (automatic NEAR decision NEAR system) OR " +
	"(automated NEAR final NEAR decision) OR (automatic NEAR final NEAR decision) OR " +
	"(face NEAR recog) OR (facial NEAR recog) OR (voice NEAR recog) OR " +
	"(iris NEAR recog) OR (gait NEAR recog) OR (genAI) OR (gen-AI) OR " +
	"(generative NEAR AI) OR (generative NEAR tech) OR (generative NEAR model) OR " +
	"(generative NEAR artificial) OR (machine NEAR learning) OR (deep NEAR learning) OR " +
	"(chat NEAR bot) OR (virtual NEAR assistant) OR (ChatGPT) OR (Chat-GPT) OR " +
	"(language NEAR model) OR (AI NEAR task NEAR force) OR (AI NEAR advis) OR " +
	"(AI NEAR audit) OR (AI NEAR generate) OR (AI NEAR snoop) OR (deep NEAR fake) OR " +
	"(synthetic NEAR media) OR (digital NEAR assistant) OR (natural NEAR language NEAR process) OR " +
	"(computer NEAR vision) OR (frontier NEAR model) OR (software NEAR agent) OR " +
	"(embodied NEAR robot) OR (foundation NEAR model) OR (LLM) OR (LLMs) OR " +
	"(Information NEAR Technology NEAR Act)"

// Settings resolves typed configuration values, layering environment
// variables over the config file and falling back to defaults.
type Settings struct {
	store driven.ConfigStore
}

func NewSettings(store driven.ConfigStore) *Settings {
	return &Settings{store: store}
}

// APIKey returns the provider API key, or "" when unset.
func (s *Settings) APIKey() string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	if key := os.Getenv(EnvAPIKeyLS); key != "" {
		return key
	}
	return s.store.GetString(KeyAPIKey)
}

// BaseURL returns the configured provider endpoint, or "" for the default.
func (s *Settings) BaseURL() string {
	return s.store.GetString(KeyBaseURL)
}

// Query returns the search query to run.
func (s *Settings) Query() string {
	if q := s.store.GetString(KeyQuery); q != "" {
		return q
	}
	return DefaultQuery
}

// Jurisdiction returns the configured jurisdiction filter, or "" for all.
func (s *Settings) Jurisdiction() string {
	return s.store.GetString(KeyJurisdiction)
}

// MinRelevance returns the configured relevance cutoff, or 0 when unset.
func (s *Settings) MinRelevance() int {
	return s.store.GetInt(KeyMinRelevance)
}

// DataDir returns the configured database directory, or "" for the default.
func (s *Settings) DataDir() string {
	return s.store.GetString(KeyDataDir)
}

// RedisURL returns the queue connection URL, or "" when notifications
// are disabled.
func (s *Settings) RedisURL() string {
	if url := os.Getenv(EnvRedisURL); url != "" {
		return url
	}
	return s.store.GetString(KeyRedisURL)
}

// QueueName returns the configured queue list name, or "" for the default.
func (s *Settings) QueueName() string {
	return s.store.GetString(KeyQueueName)
}
