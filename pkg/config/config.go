package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Source struct {
		Type         string        `yaml:"type"` // simulator, websocket, kafka
		Symbols      []string      `yaml:"symbols"`
		TickInterval time.Duration `yaml:"tick_interval"`
		WebSocket    struct {
			URL            string        `yaml:"url"`
			APIKey         string        `yaml:"api_key"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"websocket"`
		Workers    int `yaml:"workers"`
		BufferSize int `yaml:"buffer_size"`
	} `yaml:"source"`
	Archive struct {
		Backend   string `yaml:"backend"` // none, kafka, clickhouse
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"archive"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic"`
		AlertsTopic  string   `yaml:"alerts_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Window struct {
		Size         int `yaml:"size"`          // points per symbol
		RecentPoints int `yaml:"recent_points"` // dataStream ring size
	} `yaml:"window"`
	Alerts struct {
		Retention       int     `yaml:"retention"`
		HighChangePct   float64 `yaml:"high_change_pct"`
		MediumChangePct float64 `yaml:"medium_change_pct"`
		VolumeSpikeMult float64 `yaml:"volume_spike_mult"`
	} `yaml:"alerts"`
	Index struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
		Embedder     struct {
			Type    string        `yaml:"type"` // hash, http
			URL     string        `yaml:"url"`
			Dim     int           `yaml:"dim"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"embedder"`
		SeedDocuments bool `yaml:"seed_documents"`
	} `yaml:"index"`
	Retriever struct {
		VectorK      int     `yaml:"vector_k"`
		LexicalK     int     `yaml:"lexical_k"`
		VectorWeight float64 `yaml:"vector_weight"`
	} `yaml:"retriever"`
	LLM struct {
		BaseURL       string        `yaml:"base_url"`
		APIKey        string        `yaml:"api_key"`
		Model         string        `yaml:"model"`
		MaxTokens     int           `yaml:"max_tokens"`
		Timeout       time.Duration `yaml:"timeout"`
		ContextAlerts int           `yaml:"context_alerts"`
	} `yaml:"llm"`
	Cache struct {
		Enabled  bool          `yaml:"enabled"`
		TTL      time.Duration `yaml:"ttl"`
		Backend  string        `yaml:"backend"` // memory, redis
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Source.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv("ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("EMBEDDER_URL"); v != "" {
		c.Index.Embedder.URL = v
	}

	return c, nil
}

// applyDefaults fills zero values the engine cannot run without.
func (c *Config) applyDefaults() {
	if c.Window.Size <= 0 {
		c.Window.Size = 100
	}
	if c.Window.RecentPoints <= 0 {
		c.Window.RecentPoints = 100
	}
	if c.Alerts.Retention <= 0 {
		c.Alerts.Retention = 1000
	}
	if c.Alerts.HighChangePct == 0 {
		c.Alerts.HighChangePct = 1.8
	}
	if c.Alerts.MediumChangePct == 0 {
		c.Alerts.MediumChangePct = 1.5
	}
	if c.Alerts.VolumeSpikeMult == 0 {
		c.Alerts.VolumeSpikeMult = 3.0
	}
	if c.Index.ChunkSize <= 0 {
		c.Index.ChunkSize = 400
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		c.Index.ChunkOverlap = 80
	}
	if c.Index.Embedder.Type == "" {
		c.Index.Embedder.Type = "hash"
	}
	if c.Index.Embedder.Dim <= 0 {
		c.Index.Embedder.Dim = 256
	}
	if c.Retriever.VectorK <= 0 {
		c.Retriever.VectorK = 10
	}
	if c.Retriever.LexicalK <= 0 {
		c.Retriever.LexicalK = 10
	}
	if c.Retriever.VectorWeight <= 0 || c.Retriever.VectorWeight > 1 {
		c.Retriever.VectorWeight = 0.5
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 20 * time.Second
	}
	if c.LLM.ContextAlerts <= 0 {
		c.LLM.ContextAlerts = 20
	}
	if c.Source.Workers <= 0 {
		c.Source.Workers = 4
	}
	if c.Source.BufferSize <= 0 {
		c.Source.BufferSize = 1024
	}
	if c.Source.TickInterval <= 0 {
		c.Source.TickInterval = 2 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Source.Type {
	case "simulator", "websocket", "kafka":
	default:
		return fmt.Errorf("source.type must be 'simulator', 'websocket' or 'kafka', got '%s'", c.Source.Type)
	}
	switch c.Archive.Backend {
	case "", "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("archive.backend must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Archive.Backend)
	}
	if len(c.Source.Symbols) == 0 {
		return fmt.Errorf("source.symbols cannot be empty")
	}
	if c.Source.Type == "websocket" && c.Source.WebSocket.URL == "" {
		return fmt.Errorf("source.websocket.url is required for websocket source")
	}
	if (c.Source.Type == "kafka" || c.Archive.Backend == "kafka") && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is used")
	}
	if c.Index.Embedder.Type == "http" && c.Index.Embedder.URL == "" {
		return fmt.Errorf("index.embedder.url is required for http embedder")
	}
	return nil
}
