//go:build darwin

package backend

import (
	"fmt"

	"github.com/ebitengine/purego"
)

const (
	symInitialize = "mlx_bridge_initialize"
	symForceOOM   = "mlx_bridge_force_oom"
	symGenerate   = "mlx_bridge_generate"
	symWarmup     = "mlx_bridge_warmup"
)

func resolveEntryPoints(library string) (entry EntryPoints, err error) {
	lib, err := purego.Dlopen(library, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return EntryPoints{}, fmt.Errorf("dlopen: %w", err)
	}
	defer func() {
		if err != nil {
			_ = purego.Dlclose(lib)
		}
	}()

	bind := func(fptr any, name string) error {
		sym, err := purego.Dlsym(lib, name)
		if err != nil {
			return fmt.Errorf("dlsym %s: %w", name, err)
		}
		purego.RegisterFunc(fptr, sym)
		return nil
	}

	if err = bind(&entry.Initialize, symInitialize); err != nil {
		return EntryPoints{}, err
	}
	if err = bind(&entry.ForceOOM, symForceOOM); err != nil {
		return EntryPoints{}, err
	}
	if err = bind(&entry.Generate, symGenerate); err != nil {
		return EntryPoints{}, err
	}
	if err = bind(&entry.Warmup, symWarmup); err != nil {
		return EntryPoints{}, err
	}
	return entry, nil
}
