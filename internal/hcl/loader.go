package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/fsutil"
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// FileExtension is the extension of definition files.
const FileExtension = ".hcl"

// ErrNoFiles is returned when none of the given paths holds a definition file.
var ErrNoFiles = errors.New("no definition files found")

// Loader reads HCL definition files and binds them to a handler registry.
type Loader struct {
	registry *registry.Registry
}

// NewLoader creates a new HCL definition loader bound to reg.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{registry: reg}
}

// Load parses the files under paths and resolves the result into a raw
// definition ready for collection.New. The parsed Definition is returned as
// well so callers can export or inspect it.
func (l *Loader) Load(ctx context.Context, paths ...string) (*module.RawDefinition, *Definition, error) {
	def, err := l.Parse(ctx, paths...)
	if err != nil {
		return nil, nil, err
	}

	raw, err := Resolve(ctx, def, l.registry)
	if err != nil {
		return nil, nil, err
	}
	return raw, def, nil
}

// Parse reads every definition file under paths. Files are processed in
// lexical order; a single `store` block may appear across all of them and
// top-level `module` blocks are appended to the store in the order they are
// read.
func (l *Loader) Parse(ctx context.Context, paths ...string) (*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(FileExtension, paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	store := &Definition{State: cty.NilVal}
	var storeSeen *hcl.Range

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		content, diags := hclFile.Body.Content(fileSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range content.Blocks {
			switch block.Type {
			case "store":
				if storeSeen != nil {
					return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, hcl.Diagnostics{{
						Severity: hcl.DiagError,
						Summary:  "Duplicate store block",
						Detail:   fmt.Sprintf("A store block is already declared at %s.", storeSeen),
						Subject:  block.DefRange.Ptr(),
					}})
				}
				decoded, diags := decodeDefinition("", block.Body, block.DefRange)
				if diags.HasErrors() {
					return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
				}
				// Modules declared before the store block keep their place
				// ahead of the store's own nested modules.
				decoded.Modules = append(store.Modules, decoded.Modules...)
				store = decoded
				storeSeen = block.DefRange.Ptr()
			case "module":
				child, diags := decodeDefinition(block.Labels[0], block.Body, block.DefRange)
				if diags.HasErrors() {
					return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
				}
				store.Modules = append(store.Modules, child)
			}
		}
	}

	if err := checkUniqueKeys(store); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "files", len(files), "modules", countModules(store))
	return store, nil
}

// checkUniqueKeys rejects sibling modules sharing a key, which can only
// happen when they come from different files.
func checkUniqueKeys(def *Definition) error {
	seen := make(map[string]*Definition, len(def.Modules))
	for _, m := range def.Modules {
		if prev, dup := seen[m.Key]; dup {
			return fmt.Errorf("duplicate module %q: declared at %s and %s", m.Key, prev.DeclRange, m.DeclRange)
		}
		seen[m.Key] = m
	}
	return nil
}

func countModules(def *Definition) int {
	n := len(def.Modules)
	for _, m := range def.Modules {
		n += countModules(m)
	}
	return n
}
