package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/tetra/internal/ir"
)

// Load compiles a layout from path. A directory is loaded as one CUE
// package; a file (.cue or .json, JSON being valid CUE) is compiled on its
// own.
func Load(path string) (*ir.LayoutDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	if info.IsDir() {
		return loadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return LoadBytes(path, data)
}

// LoadBytes compiles layout source. name is used in error positions.
func LoadBytes(name string, data []byte) (*ir.LayoutDocument, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileDocument(value)
}

func loadDir(dir string) (*ir.LayoutDocument, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("layout %s: no CUE instances loaded", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("layout %s: loading CUE files: %w", dir, inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileDocument(value)
}
