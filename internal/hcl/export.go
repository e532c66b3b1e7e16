package hcl

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Export writes def as a canonical, formatted definition file. Entries keep
// their definition order; state attributes come out sorted by name.
func Export(w io.Writer, def *Definition) error {
	f := hclwrite.NewEmptyFile()
	block := f.Body().AppendNewBlock("store", nil)
	writeDefinition(block.Body(), def)

	if _, err := w.Write(hclwrite.Format(f.Bytes())); err != nil {
		return fmt.Errorf("writing definition: %w", err)
	}
	return nil
}

func writeDefinition(body *hclwrite.Body, def *Definition) {
	if def.Namespaced {
		body.SetAttributeValue("namespaced", cty.True)
	}
	if def.StateFactory != "" {
		body.SetAttributeValue("state_factory", cty.StringVal(def.StateFactory))
	}
	if !def.State.IsNull() {
		body.SetAttributeValue("state", def.State)
		if def.FreshState {
			body.SetAttributeValue("fresh_state", cty.True)
		}
	}
	writeBindings(body, "getters", def.Getters)
	writeBindings(body, "mutations", def.Mutations)
	writeBindings(body, "actions", def.Actions)

	for _, m := range def.Modules {
		body.AppendNewline()
		child := body.AppendNewBlock("module", []string{m.Key})
		writeDefinition(child.Body(), m)
	}
}

func writeBindings(body *hclwrite.Body, name string, bindings []Binding) {
	if len(bindings) == 0 {
		return
	}

	attrs := make([]hclwrite.ObjectAttrTokens, 0, len(bindings))
	for _, b := range bindings {
		attrs = append(attrs, hclwrite.ObjectAttrTokens{
			Name:  keyTokens(b.Key),
			Value: hclwrite.TokensForValue(cty.StringVal(b.Handler)),
		})
	}
	body.SetAttributeRaw(name, hclwrite.TokensForObject(attrs))
}

// keyTokens writes bare identifiers where HCL allows them and quoted strings
// otherwise.
func keyTokens(key string) hclwrite.Tokens {
	if hclsyntax.ValidIdentifier(key) {
		return hclwrite.TokensForIdentifier(key)
	}
	return hclwrite.TokensForValue(cty.StringVal(key))
}
