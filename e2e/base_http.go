package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sayit/client"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration and skips when no server is configured.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.APIURL == "" {
		s.T().Skip("E2E_API_URL not set")
	}
}

// Step runs fn against a fresh API client under a coloured header.
func (s *BaseHTTPSuite) Step(t *testing.T, name string, fn func(ctx context.Context, api *client.Client)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	start := time.Now()
	fn(ctx, client.New(s.Config.APIURL))
	t.Logf("%s done in %v", name, time.Since(start))
}
