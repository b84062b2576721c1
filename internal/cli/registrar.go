package cli

import (
	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/internal/train"
)

// AddTrainerArgs adds the arguments of a trainer class under key. The class
// must produce a train.Trainer.
func (p *Parser) AddTrainerArgs(class *registry.Class, key string) ([]string, error) {
	return p.addKindArgs(class, train.KindTrainer, key)
}

// AddModelArgs adds the arguments of a model class under key.
func (p *Parser) AddModelArgs(class *registry.Class, key string) ([]string, error) {
	return p.addKindArgs(class, train.KindModel, key)
}

// AddDataModuleArgs adds the arguments of a data module class under key.
func (p *Parser) AddDataModuleArgs(class *registry.Class, key string) ([]string, error) {
	return p.addKindArgs(class, train.KindDataModule, key)
}

// addKindArgs checks the capability before touching the flag set, so a
// mismatch leaves the parser unchanged.
func (p *Parser) addKindArgs(class *registry.Class, kind, key string) ([]string, error) {
	if err := p.reg.CheckKind(class, kind); err != nil {
		return nil, err
	}
	return p.AddClassArguments(class, key)
}
