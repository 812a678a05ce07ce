package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/cli/config"
	"github.com/fedmod/ostracon/pkg/domain/types"
)

// newCommand parses args with the given flags so their destinations are set
func newCommand(t *testing.T, flags []cli.Flag, args ...string) {
	t.Helper()
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...))).Required()
}

func writeFederationFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "federation.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestFederationConfigure(t *testing.T) {
	path := writeFederationFile(t, `
log_channel = "C0LOG"

[[community]]
id = "C012345"
name = "Alpha"
owner = "U012345"

[[community]]
id = "C054321"
name = "Beta"
owner = "U054321"
`)

	var cfg config.Federation
	newCommand(t, cfg.Flags(), "--federation-config", path)

	federation, err := cfg.Configure()
	gt.NoError(t, err).Required()

	gt.Array(t, federation.Communities()).Length(2)
	gt.Value(t, federation.LogChannelID()).Equal("C0LOG")

	alpha, ok := federation.Community(types.CommunityID("C012345"))
	gt.Bool(t, ok).True()
	gt.Value(t, alpha.Name).Equal("Alpha")
	gt.Value(t, alpha.OwnerID).Equal(types.UserID("U012345"))
}

func TestFederationConfigureRejectsDuplicates(t *testing.T) {
	path := writeFederationFile(t, `
[[community]]
id = "C012345"
owner = "U012345"

[[community]]
id = "C012345"
owner = "U054321"
`)

	var cfg config.Federation
	newCommand(t, cfg.Flags(), "--federation-config", path)

	_, err := cfg.Configure()
	gt.Error(t, err)
}

func TestFederationConfigureEmptyPath(t *testing.T) {
	var cfg config.Federation
	federation, err := cfg.Configure()
	gt.NoError(t, err).Required()
	gt.Array(t, federation.Communities()).Length(0)
}

func TestWorkflowValidate(t *testing.T) {
	var cfg config.Workflow
	newCommand(t, cfg.Flags())

	gt.NoError(t, cfg.Validate())
	gt.Value(t, cfg.Deadline()).Equal(24 * time.Hour)
	gt.Value(t, cfg.ReminderInterval()).Equal(time.Hour)
}

func TestWorkflowValidateRejectsLongInterval(t *testing.T) {
	var cfg config.Workflow
	newCommand(t, cfg.Flags(),
		"--decision-deadline", "1h",
		"--reminder-interval", "2h",
	)

	gt.Error(t, cfg.Validate())
}

func TestLoggerConfigureRejectsUnknownLevel(t *testing.T) {
	var cfg config.Logger
	newCommand(t, cfg.Flags(), "--log-level", "verbose")

	_, err := cfg.Configure()
	gt.Error(t, err)
}

func TestRepositoryConfigureMemory(t *testing.T) {
	var cfg config.Repository
	newCommand(t, cfg.Flags(), "--store-backend", "memory")

	store, err := cfg.Configure(t.Context())
	gt.NoError(t, err).Required()
	gt.NoError(t, store.Close())
}

func TestRepositoryConfigureUnknownBackend(t *testing.T) {
	var cfg config.Repository
	newCommand(t, cfg.Flags(), "--store-backend", "postgres")

	_, err := cfg.Configure(t.Context())
	gt.Error(t, err)
}
