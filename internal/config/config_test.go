package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func etcPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(etcPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	// Test basic config fields
	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.Webserver.Token.AccessTTL != 2*time.Hour {
		t.Errorf("Webserver.Token.AccessTTL = %v, want 2h", cfg.Webserver.Token.AccessTTL)
	}

	// Test DB config
	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	if cfg.Log.File.AccessLog != "access.log" {
		t.Errorf("Log.File.AccessLog = %q, want access.log", cfg.Log.File.AccessLog)
	}
}

func TestLocationScopes(t *testing.T) {
	cfg, err := ReadConfig(etcPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	tests := []struct {
		role     string
		location string
	}{
		{"雄安分公司负责人", "雄安"},
		{"高碑店分公司负责人", "高碑店"},
	}

	locations := cfg.LocationMap()

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got, exists := locations[tt.role]
			if !exists {
				t.Fatalf("role %s not found in location scopes", tt.role)
			}

			if got != tt.location {
				t.Errorf("location of %s = %q, want %q", tt.role, got, tt.location)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{
					Port:  8080,
					URL:   "http://localhost:8080",
					Token: Token{Secret: "secret"},
				},
			},
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{
					Port:  0,
					URL:   "http://localhost:8080",
					Token: Token{Secret: "secret"},
				},
			},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "missing URL",
			config: Config{
				Webserver: Webserver{
					Port:  8080,
					URL:   "",
					Token: Token{Secret: "secret"},
				},
			},
			wantErr: ErrEmptyURL,
		},
		{
			name: "missing token secret",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: ErrTokenSecretEmpty,
		},
		{
			name: "unknown engine",
			config: Config{
				DB: DB{GormEngine: "oracle"},
				Webserver: Webserver{
					Port:  8080,
					URL:   "http://localhost:8080",
					Token: Token{Secret: "secret"},
				},
			},
			wantErr: ErrUnsupportedGormEngine,
		},
		{
			name: "duplicate location scope",
			config: Config{
				Webserver: Webserver{
					Port:  8080,
					URL:   "http://localhost:8080",
					Token: Token{Secret: "secret"},
				},
				LocationScopes: []LocationScope{
					{Role: "a", Location: "x"},
					{Role: "a", Location: "y"},
				},
			},
			wantErr: ErrDuplicateLocationScope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("validate() unexpected error = %v", err)
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	c := Config{
		Webserver: Webserver{
			Port:  8080,
			URL:   "http://localhost:8080",
			Token: Token{Secret: "secret"},
		},
	}

	if err := validate(&c); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if c.Webserver.ShutDownTime != defaultShutDownTime {
		t.Errorf("ShutDownTime = %d, want %d", c.Webserver.ShutDownTime, defaultShutDownTime)
	}

	if c.DB.GormEngine != GormEngineMySQL {
		t.Errorf("GormEngine = %q, want %q", c.DB.GormEngine, GormEngineMySQL)
	}

	if c.Webserver.Token.RefreshTTL != defaultRefreshTTL {
		t.Errorf("RefreshTTL = %v, want %v", c.Webserver.Token.RefreshTTL, defaultRefreshTTL)
	}

	if len(c.Auth.AdminRoleCodes) != 1 || c.Auth.AdminRoleCodes[0] != defaultAdminCode {
		t.Errorf("AdminRoleCodes = %v, want [%s]", c.Auth.AdminRoleCodes, defaultAdminCode)
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	// Set JSON override environment variable
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090}}`
	t.Setenv(EnvConfigJSON, jsonOverride)

	cfg, err := ReadConfig(etcPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Test Override" {
		t.Errorf("Title = %v, want %v", cfg.Title, "Test Override")
	}

	if cfg.Webserver.Port != 9090 {
		t.Errorf("Webserver.Port = %v, want %v", cfg.Webserver.Port, 9090)
	}
}

func TestReadConfigWithEnvOverride(t *testing.T) {
	t.Setenv(EnvPrefix+"_WEBSERVER_PORT", "7070")

	cfg, err := ReadConfig(etcPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Webserver.Port != 7070 {
		t.Errorf("Webserver.Port = %v, want %v", cfg.Webserver.Port, 7070)
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
		LocationScopes: []LocationScope{
			{Role: "雄安分公司负责人", Location: "雄安"},
		},
	}

	tomlStr, err := DumpConfig(&cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if tomlStr == "" {
		t.Error("DumpConfig() returned empty string")
	}

	// Check if output contains expected values
	if !strings.Contains(tomlStr, "Test") {
		t.Error("DumpConfig() output should contain Title")
	}

	if !strings.Contains(tomlStr, "雄安") {
		t.Error("DumpConfig() output should contain the location scopes")
	}
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	if err != nil {
		t.Fatalf("DumpConfigJSON() error = %v", err)
	}

	if jsonStr == "" {
		t.Error("DumpConfigJSON() returned empty string")
	}

	// Check if output is valid JSON by checking for expected fields
	if !strings.Contains(jsonStr, "Test") {
		t.Error("DumpConfigJSON() output should contain Title")
	}
}
