package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/gridq/internal/ir"
)

// LoadFile compiles every grid declared in one CUE file.
func LoadFile(path string) ([]ir.GridSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	return CompileAll(v)
}

// Pick returns the grid named name, or the only grid when name is empty.
func Pick(specs []ir.GridSpec, name string) (ir.GridSpec, error) {
	if name == "" {
		if len(specs) != 1 {
			return ir.GridSpec{}, fmt.Errorf("schema declares %d grids; name one", len(specs))
		}
		return specs[0], nil
	}
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return ir.GridSpec{}, fmt.Errorf("schema declares no grid %q", name)
}
