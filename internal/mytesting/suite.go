package mytesting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/habiliai/agentloop/internal/mylog"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
)

// Suite gives each test a cancellable context, a scratch workspace directory
// and the project .env, when one exists.
type Suite struct {
	suite.Suite
	context.Context

	Cancel    context.CancelFunc
	Workspace string
	Logger    *mylog.Logger
}

func (s *Suite) SetupTest() {
	projectRoot, err := s.findProjectRoot()
	s.Require().NoError(err, "Failed to find project root")
	if envFile := filepath.Join(projectRoot, ".env"); fileExists(envFile) {
		s.Require().NoError(godotenv.Load(envFile))
	}

	s.Workspace = s.T().TempDir()
	s.Logger = mylog.Discard()
	s.Context, s.Cancel = context.WithCancel(context.TODO())
}

func (s *Suite) TearDownTest() {
	s.Cancel()
}

// Path joins elem onto the scratch workspace.
func (s *Suite) Path(elem ...string) string {
	return filepath.Join(append([]string{s.Workspace}, elem...)...)
}

// findProjectRoot searches for go.mod file starting from the current file location
func (s *Suite) findProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	dir := filepath.Dir(filename)
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("go.mod not found in any parent directory")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
