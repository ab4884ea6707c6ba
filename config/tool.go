package config

import (
	"time"
)

type MCPServer struct {
	Command string            `mapstructure:"command" yaml:"command"`
	Args    []string          `mapstructure:"args" yaml:"args"`
	Env     map[string]string `mapstructure:"env" yaml:"env"`
}

type ToolConfig struct {
	// Workspace is the base directory relative paths in tool arguments resolve against.
	Workspace      string `mapstructure:"workspace"`
	CustomToolsDir string `mapstructure:"custom_tools_dir"`

	OutputLimit    int           `mapstructure:"output_limit"`
	ReadLimit      int           `mapstructure:"read_limit"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	Shell          []string      `mapstructure:"shell"`
	PythonBin      string        `mapstructure:"python_bin"`

	SearchURL       string `mapstructure:"search_url"`
	FireCrawlAPIKey string `mapstructure:"firecrawl_api_key"`
	FireCrawlAPIURL string `mapstructure:"firecrawl_api_url"`

	MCPServers map[string]MCPServer `mapstructure:"mcp_servers"`
}

func NewToolConfig() *ToolConfig {
	return &ToolConfig{
		Workspace:       ".",
		CustomToolsDir:  "tools",
		OutputLimit:     2000,
		ReadLimit:       3000,
		DefaultTimeout:  60 * time.Second,
		CommandTimeout:  60 * time.Second,
		Shell:           []string{"sh", "-c"},
		PythonBin:       "python3",
		SearchURL:       "https://html.duckduckgo.com/html/",
		FireCrawlAPIURL: "https://api.firecrawl.dev",
	}
}
