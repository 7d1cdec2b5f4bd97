package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		WebMO: WebMOConfig{
			BaseURL:  "https://chem.example.edu/cgi-bin/webmo/rest.cgi",
			Username: "archiver",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "webmo_archive",
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port: 5672,
			Exchange: ExchangeConfig{
				Name: "webmo_events",
			},
		},
		Watcher: WatcherConfig{
			Concurrency:     4,
			PollInterval:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, "https://chem.example.edu/cgi-bin/webmo/rest.cgi", cfg.WebMO.BaseURL)
				assert.Equal(t, "archiver", cfg.WebMO.Username)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "webmo_archive", cfg.Database.Database)
				assert.Equal(t, "webmo_events", cfg.RabbitMQ.Exchange.Name)
				assert.Equal(t, "jobs.terminal", cfg.RabbitMQ.RoutingKey)
				assert.Equal(t, "webmo-watch", cfg.App.Name)
				assert.Equal(t, 4, cfg.Watcher.Concurrency)
				assert.Equal(t, 30*time.Second, cfg.Watcher.PollInterval)
			}
		})
	}
}

func TestLoad_PasswordFromEnvironment(t *testing.T) {
	t.Setenv("WEBMO_PASSWORD", "from-env")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.WebMO.Password)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:      "empty webmo base url",
			mutate:    func(c *Config) { c.WebMO.BaseURL = "" },
			wantErr:   true,
			errString: "webmo base_url is required",
		},
		{
			name:      "empty webmo username",
			mutate:    func(c *Config) { c.WebMO.Username = "" },
			wantErr:   true,
			errString: "webmo username is required",
		},
		{
			name:      "empty database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name:      "invalid database port - too high",
			mutate:    func(c *Config) { c.Database.Port = 70000 },
			wantErr:   true,
			errString: "invalid database port",
		},
		{
			name:      "empty database name",
			mutate:    func(c *Config) { c.Database.Database = "" },
			wantErr:   true,
			errString: "database name is required",
		},
		{
			name:      "empty rabbitmq host",
			mutate:    func(c *Config) { c.RabbitMQ.Host = "" },
			wantErr:   true,
			errString: "rabbitmq host is required",
		},
		{
			name:      "invalid rabbitmq port - too low",
			mutate:    func(c *Config) { c.RabbitMQ.Port = 0 },
			wantErr:   true,
			errString: "invalid rabbitmq port",
		},
		{
			name:      "empty exchange name",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			wantErr:   true,
			errString: "rabbitmq exchange name is required",
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Watcher.Concurrency = 0 },
			wantErr:   true,
			errString: "watcher concurrency must be greater than 0",
		},
		{
			name:      "zero poll interval",
			mutate:    func(c *Config) { c.Watcher.PollInterval = 0 },
			wantErr:   true,
			errString: "watcher poll_interval must be greater than 0",
		},
		{
			name:      "zero shutdown timeout",
			mutate:    func(c *Config) { c.Watcher.ShutdownTimeout = 0 },
			wantErr:   true,
			errString: "watcher shutdown_timeout must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	t.Run("load and validate valid config", func(t *testing.T) {
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		require.NoError(t, cfg.Validate())
	})

	t.Run("load config with missing database name", func(t *testing.T) {
		cfg, err := Load("testdata/missing_database.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database name is required")
	})

	t.Run("load config with missing webmo section", func(t *testing.T) {
		cfg, err := Load("testdata/missing_webmo.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "webmo base_url is required")
	})
}
