package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/agentloop/entity"
	"github.com/habiliai/agentloop/errors"
)

type TeamConfig struct {
	Roles []entity.WorkerRole `mapstructure:"roles" yaml:"roles"`
}

func NewTeamConfig() *TeamConfig {
	return &TeamConfig{
		Roles: []entity.WorkerRole{
			{
				Name:        "researcher",
				Description: "web search, research, information gathering",
				Tools:       []string{"web_search", "fetch_url", "read_feed", "read_file", "run_command", "python_exec"},
			},
			{
				Name:        "coder",
				Description: "write/edit code, run commands, Python execution",
				Tools:       []string{"create_file", "read_file", "run_command", "python_exec", "find_files", "list_directory", "create_directory"},
			},
			{
				Name:        "file_manager",
				Description: "create/read/delete/move files, download, organize",
				Tools:       []string{"create_file", "read_file", "delete_file", "move_file", "find_files", "list_directory", "create_directory", "download_file"},
			},
		},
	}
}

// LoadTeamFromFile reads a roles file:
//
//	roles:
//	  - name: researcher
//	    description: web research
//	    tools: [web_search, read_file]
func LoadTeamFromFile(file string) (team TeamConfig, err error) {
	var yamlBytes []byte
	if yamlBytes, err = os.ReadFile(file); err != nil {
		err = errors.Wrapf(err, "failed to read file %s", file)
		return
	}

	if err = yaml.Unmarshal(yamlBytes, &team); err != nil {
		err = errors.Wrapf(err, "failed to unmarshal file %s", file)
		return
	}

	for _, role := range team.Roles {
		if role.Name == "" || len(role.Tools) == 0 {
			err = errors.Wrapf(errors.ErrInvalidConfig, "role %q in %s needs a name and at least one tool", role.Name, file)
			return
		}
	}

	return
}
