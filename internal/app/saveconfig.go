package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/trainctl/internal/cli"
	"github.com/specialistvlad/trainctl/internal/config"
	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/specialistvlad/trainctl/internal/train"
)

// SaveConfigFilename is the file written into the trainer's log directory.
const SaveConfigFilename = "config.yaml"

// SaveConfigCallback writes the full resolved configuration, unset options
// included, into the trainer's log directory when training starts.
type SaveConfigCallback struct {
	parser *cli.Parser
	config *config.Tree
}

// NewSaveConfigCallback is the default SaveConfigFactory.
func NewSaveConfigCallback(p *cli.Parser, tree *config.Tree) train.Callback {
	return &SaveConfigCallback{parser: p, config: tree}
}

func (c *SaveConfigCallback) OnTrainStart(ctx context.Context, tr train.Trainer, _ train.Model) error {
	logDir := tr.LogDir()
	if logDir == "" {
		return fmt.Errorf("%w: trainer has no log directory", errdefs.ErrState)
	}
	path := filepath.Join(logDir, SaveConfigFilename)
	if err := c.parser.Save(c.config, path, false); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Configuration saved.", "path", path)
	return nil
}
