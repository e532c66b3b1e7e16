package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
)

// fileSchema is the top level of a definition file.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "store"},
		{Type: "module", LabelNames: []string{"key"}},
	},
}

// definitionSchema is the body of a store or module block.
var definitionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "namespaced"},
		{Name: "state"},
		{Name: "state_factory"},
		{Name: "fresh_state"},
		{Name: "getters"},
		{Name: "mutations"},
		{Name: "actions"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "module", LabelNames: []string{"key"}},
	},
}

// decodeDefinition reads a store or module block body.
func decodeDefinition(key string, body hcl.Body, declRange hcl.Range) (*Definition, hcl.Diagnostics) {
	content, diags := body.Content(definitionSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	def := &Definition{Key: key, State: cty.NilVal, DeclRange: declRange}

	if attr, ok := content.Attributes["namespaced"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &def.Namespaced)...)
	}
	if attr, ok := content.Attributes["fresh_state"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &def.FreshState)...)
	}
	if attr, ok := content.Attributes["state_factory"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &def.StateFactory)...)
	}
	if attr, ok := content.Attributes["state"]; ok {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() {
			if ty := val.Type(); !ty.IsObjectType() && !ty.IsMapType() {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid state",
					Detail:   fmt.Sprintf("state must be an object, got %s.", ty.FriendlyName()),
					Subject:  attr.Expr.Range().Ptr(),
				})
			} else {
				def.State = val
			}
		}

		if def.StateFactory != "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Conflicting state declarations",
				Detail:   "Only one of state and state_factory may be set.",
				Subject:  attr.NameRange.Ptr(),
			})
		}
	}
	if def.FreshState && def.State.IsNull() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "fresh_state without state",
			Detail:   "fresh_state only applies to a literal state value.",
			Subject:  content.Attributes["fresh_state"].NameRange.Ptr(),
		})
	}

	var bindingDiags hcl.Diagnostics
	def.Getters, bindingDiags = decodeBindings(content.Attributes["getters"])
	diags = append(diags, bindingDiags...)
	def.Mutations, bindingDiags = decodeBindings(content.Attributes["mutations"])
	diags = append(diags, bindingDiags...)
	def.Actions, bindingDiags = decodeBindings(content.Attributes["actions"])
	diags = append(diags, bindingDiags...)

	for _, block := range content.Blocks {
		child, childDiags := decodeDefinition(block.Labels[0], block.Body, block.DefRange)
		diags = append(diags, childDiags...)
		if childDiags.HasErrors() {
			continue
		}
		if _, dup := def.Module(child.Key); dup {
			diags = append(diags, duplicateModule(child.Key, block))
			continue
		}
		def.Modules = append(def.Modules, child)
	}

	return def, diags
}

// decodeBindings reads an object of `key = "HandlerName"` pairs in source
// order.
func decodeBindings(attr *hcl.Attribute) ([]Binding, hcl.Diagnostics) {
	if attr == nil {
		return nil, nil
	}

	pairs, diags := hcl.ExprMap(attr.Expr)
	if diags.HasErrors() {
		return nil, diags
	}

	bindings := make([]Binding, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		key := hcl.ExprAsKeyword(pair.Key)
		if key == "" {
			var keyDiags hcl.Diagnostics
			keyDiags = gohcl.DecodeExpression(pair.Key, nil, &key)
			diags = append(diags, keyDiags...)
			if keyDiags.HasErrors() {
				continue
			}
		}

		var handler string
		valDiags := gohcl.DecodeExpression(pair.Value, nil, &handler)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}

		if _, dup := seen[key]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate entry",
				Detail:   fmt.Sprintf("%s declares %q more than once.", attr.Name, key),
				Subject:  pair.Key.Range().Ptr(),
			})
			continue
		}
		seen[key] = struct{}{}
		bindings = append(bindings, Binding{Key: key, Handler: handler})
	}

	return bindings, diags
}

func duplicateModule(key string, block *hcl.Block) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Duplicate module",
		Detail:   fmt.Sprintf("A module with key %q is already declared at this level.", key),
		Subject:  block.DefRange.Ptr(),
	}
}
