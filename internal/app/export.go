package app

import (
	"github.com/vk/statetree/internal/hcl"
)

// Export writes the loaded definitions back out as canonical HCL.
func (a *App) Export() error {
	_, def, err := a.loaded()
	if err != nil {
		return err
	}
	return hcl.Export(a.outW, def)
}
