package app

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/vk/statetree/internal/collection"
	"github.com/vk/statetree/internal/modpath"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Inspect.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// InspectOptions selects what Inspect prints.
type InspectOptions struct {
	// Module limits the tree to the subtree at this path; empty is the root.
	Module []string
	// Format is one of FormatText, FormatJSON or FormatYAML.
	Format string
}

// inspection is the document printed by the json and yaml formats.
type inspection struct {
	Tree   collection.NodeSnapshot `json:"tree" yaml:"tree"`
	Tables *collection.Tables      `json:"tables" yaml:"tables"`
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// Inspect prints the module tree and the flattened getter, mutation and
// action tables.
func (a *App) Inspect(opts InspectOptions) error {
	c, _, err := a.loaded()
	if err != nil {
		return err
	}

	snap := c.Snapshot()
	node, ok := findNode(snap.Root, opts.Module)
	if !ok {
		return fmt.Errorf("module %q not found", modpath.String(opts.Module))
	}
	tables := filterTables(c.Tables(), opts.Module)

	switch opts.Format {
	case "", FormatText:
		return writeText(a.outW, snap.Runtime, node, tables)
	case FormatJSON:
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return enc.Encode(inspection{Tree: node, Tables: tables})
	case FormatYAML:
		enc := yaml.NewEncoder(a.outW)
		enc.SetIndent(2)
		if err := enc.Encode(toYAMLValue(inspection{Tree: node, Tables: tables})); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

func findNode(root collection.NodeSnapshot, path []string) (collection.NodeSnapshot, bool) {
	node := root
	for _, key := range path {
		idx := slices.IndexFunc(node.Children, func(c collection.NodeSnapshot) bool { return c.Key == key })
		if idx < 0 {
			return collection.NodeSnapshot{}, false
		}
		node = node.Children[idx]
	}
	return node, true
}

// filterTables keeps the entries defined at or below path.
func filterTables(t *collection.Tables, path []string) *collection.Tables {
	if len(path) == 0 {
		return t
	}
	under := func(e collection.Entry) bool {
		return len(e.Path) >= len(path) && slices.Equal(e.Path[:len(path)], path)
	}
	keep := func(entries []collection.Entry) []collection.Entry {
		var out []collection.Entry
		for _, e := range entries {
			if under(e) {
				out = append(out, e)
			}
		}
		return out
	}

	out := &collection.Tables{
		Getters:    keep(t.Getters),
		Overridden: keep(t.Overridden),
		Mutations:  keep(t.Mutations),
		Actions:    keep(t.Actions),
	}
	for _, ns := range t.Namespaces {
		if len(ns.Path) >= len(path) && slices.Equal(ns.Path[:len(path)], path) {
			out.Namespaces = append(out.Namespaces, ns)
		}
	}
	return out
}

func writeText(w io.Writer, runtime string, node collection.NodeSnapshot, tables *collection.Tables) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", headingStyle.Render("Store"), mutedStyle.Render(runtime))
	b.WriteString(buildTree(node).String())
	b.WriteString("\n")

	writeEntries(&b, "Getters", tables.Getters)
	writeEntries(&b, "Overridden getters", tables.Overridden)
	writeEntries(&b, "Mutations", tables.Mutations)
	writeEntries(&b, "Actions", tables.Actions)

	_, err := io.WriteString(w, b.String())
	return err
}

func buildTree(node collection.NodeSnapshot) *tree.Tree {
	t := tree.Root(nodeLabel(node))
	t.Child(fmt.Sprintf("state: %s", compactJSON(node.State)))
	if len(node.Getters) > 0 {
		t.Child("getters: " + strings.Join(node.Getters, ", "))
	}
	if len(node.Mutations) > 0 {
		t.Child("mutations: " + strings.Join(node.Mutations, ", "))
	}
	if len(node.Actions) > 0 {
		t.Child("actions: " + strings.Join(node.Actions, ", "))
	}
	for _, child := range node.Children {
		t.Child(buildTree(child))
	}
	return t
}

func nodeLabel(node collection.NodeSnapshot) string {
	label := node.Key
	if len(node.Path) == 0 {
		label = "<root>"
	}
	var tags []string
	if node.Namespaced {
		tags = append(tags, "namespace "+node.Namespace)
	}
	if node.Dynamic {
		tags = append(tags, "dynamic")
	}
	if len(tags) > 0 {
		label += " " + mutedStyle.Render("("+strings.Join(tags, ", ")+")")
	}
	return headingStyle.Render(label)
}

func writeEntries(b *strings.Builder, title string, entries []collection.Entry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString(headingStyle.Render(title))
	b.WriteString("\n")

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Type))
	}
	for _, e := range entries {
		fmt.Fprintf(b, "  %-*s  %s\n", width, e.Type, mutedStyle.Render(displayPath(e.Path)))
	}
}

func displayPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return modpath.String(path)
}

// compactJSON renders state on one line with sorted keys.
func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// toYAMLValue routes a value through its JSON form so the yaml output uses
// the same field names and omissions as the json output.
func toYAMLValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
