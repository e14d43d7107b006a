package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the union of settings used by the services. Each binary reads
// only the keys it needs.
type Config struct {
	ServerPort string

	MongoURI    string
	MongoDBName string

	CassandraHosts    []string
	CassandraKeyspace string

	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string

	WorkflowServiceURL string
	DashboardURL       string
	ChatURL            string

	JWTSecret  string
	CORSOrigin string

	LogFile  string
	LogLevel string

	SearchPollInterval time.Duration
	PresenceOnlineFor  time.Duration
}

// Load reads .env files (missing ones are ignored) and then the process
// environment. defaultPort is used when SERVER_PORT is unset.
func Load(defaultPort string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v := viper.New()
	v.SetDefault("SERVER_PORT", defaultPort)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "casr_dashboard")
	v.SetDefault("CASS_DB", "127.0.0.1")
	v.SetDefault("CASS_KEYSPACE", "chat")
	v.SetDefault("NEO4J_URI", "neo4j://localhost:7687")
	v.SetDefault("NEO4J_USERNAME", "neo4j")
	v.SetDefault("WORKFLOW_SERVICE_URL", "http://workflow-service:8005")
	v.SetDefault("DASHBOARD_SERVICE_URL", "http://dashboard-service:8003")
	v.SetDefault("CHAT_SERVICE_URL", "http://chat-service:8004")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEARCH_POLL_INTERVAL", "30s")
	v.SetDefault("PRESENCE_ONLINE_FOR", "2m")
	v.AutomaticEnv()

	return &Config{
		ServerPort:         v.GetString("SERVER_PORT"),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDBName:        v.GetString("MONGO_DB_NAME"),
		CassandraHosts:     splitHosts(v.GetString("CASS_DB")),
		CassandraKeyspace:  v.GetString("CASS_KEYSPACE"),
		Neo4jURI:           v.GetString("NEO4J_URI"),
		Neo4jUsername:      v.GetString("NEO4J_USERNAME"),
		Neo4jPassword:      v.GetString("NEO4J_PASSWORD"),
		WorkflowServiceURL: v.GetString("WORKFLOW_SERVICE_URL"),
		DashboardURL:       v.GetString("DASHBOARD_SERVICE_URL"),
		ChatURL:            v.GetString("CHAT_SERVICE_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		CORSOrigin:         v.GetString("CORS_ORIGIN"),
		LogFile:            v.GetString("LOG_FILE"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		SearchPollInterval: v.GetDuration("SEARCH_POLL_INTERVAL"),
		PresenceOnlineFor:  v.GetDuration("PRESENCE_ONLINE_FOR"),
	}, nil
}

// Addr is the listen address for ServerPort.
func (c *Config) Addr() string {
	if c.ServerPort == "" {
		return ""
	}
	if c.ServerPort[0] == ':' {
		return c.ServerPort
	}
	return ":" + c.ServerPort
}

// CASS_DB is a comma separated host list.
func splitHosts(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
