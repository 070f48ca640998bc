// # internal/engine/parser/mixin.go
package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"shadowmap/internal/engine/mapping"
)

const defaultShadowPrefix = "shadow$"

// MixinExtractor pulls mixin declarations out of Java syntax trees.
// Every class is recorded with its member list so that non-mixin
// classes still feed the target index; classes annotated with @Mixin
// additionally carry their targets and @Shadow members.
type MixinExtractor struct {
	engine *ExtractorEngine
	prefix string
}

// NewMixinExtractor builds an extractor using prefix as the default shadow
// name prefix. An empty prefix selects "shadow$"; a per-annotation prefix
// argument always takes precedence.
func NewMixinExtractor(prefix string) *MixinExtractor {
	if prefix == "" {
		prefix = defaultShadowPrefix
	}
	e := &MixinExtractor{prefix: prefix}
	e.engine = NewExtractorEngine(map[string]NodeHandler{
		"package_declaration": e.handlePackage,
		"import_declaration":  e.handleImport,
		"class_declaration":   e.handleClass,
	})
	return e
}

func (e *MixinExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Imports:  make(map[string]string),
		ParsedAt: time.Now(),
	}
	ctx := &ExtractionContext{Source: source, File: file}
	e.engine.Walk(ctx, root)
	return file, nil
}

func (e *MixinExtractor) handlePackage(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		kind := child.Kind()
		if kind == "scoped_identifier" || kind == "identifier" {
			ctx.File.Package = ctx.Text(child)
		}
	}
	return true
}

func (e *MixinExtractor) handleImport(ctx *ExtractionContext, node *sitter.Node) bool {
	// Static and wildcard imports never resolve type names.
	text := ctx.Text(node)
	if strings.Contains(text, " static ") || strings.Contains(text, ".*") {
		return true
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "scoped_identifier" {
			fq := ctx.Text(child)
			if idx := strings.LastIndex(fq, "."); idx >= 0 {
				ctx.File.Imports[fq[idx+1:]] = fq
			}
		}
	}
	return true
}

func (e *MixinExtractor) handleClass(ctx *ExtractionContext, node *sitter.Node) bool {
	e.extractClass(ctx, node, "")
	return true
}

func (e *MixinExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, outer string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := ctx.Text(nameNode)

	binary := name
	if outer != "" {
		binary = outer + "$" + name
	} else if ctx.File.Package != "" {
		binary = strings.ReplaceAll(ctx.File.Package, ".", "/") + "/" + name
	}

	cls := Class{
		Name:     binary,
		Remap:    true,
		Location: ctx.Location(node),
	}

	resolver := NewDescriptorResolver(ctx.File.Package, ctx.File.Imports)

	if mods := childOfKind(node, "modifiers"); mods != nil {
		for _, ann := range annotationsOf(ctx, mods) {
			if ann.name != "Mixin" {
				continue
			}
			cls.IsMixin = true
			cls.Targets = e.mixinTargets(ctx, ann, resolver)
			if v, ok := ann.boolArg("remap"); ok {
				cls.Remap = v
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			child := body.Child(i)
			switch child.Kind() {
			case "field_declaration":
				e.extractField(ctx, child, &cls, resolver)
			case "method_declaration":
				e.extractMethod(ctx, child, &cls, resolver)
			case "class_declaration":
				e.extractClass(ctx, child, binary)
			}
		}
	}

	ctx.File.Classes = append(ctx.File.Classes, cls)
}

func (e *MixinExtractor) mixinTargets(ctx *ExtractionContext, ann annotation, resolver *DescriptorResolver) []string {
	var targets []string

	// @Mixin(Foo.class) and @Mixin(value = {Foo.class, Bar.class})
	for _, v := range ann.values("value") {
		if v.Kind() == "class_literal" {
			targets = append(targets, classLiteralName(ctx, v, resolver))
		}
	}
	// @Mixin(targets = "com.example.Hidden$Inner") for inaccessible types
	for _, v := range ann.values("targets") {
		if v.Kind() == "string_literal" {
			targets = append(targets, strings.ReplaceAll(stringLiteral(ctx, v), ".", "/"))
		}
	}
	return targets
}

func (e *MixinExtractor) extractField(ctx *ExtractionContext, node *sitter.Node, cls *Class, resolver *DescriptorResolver) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	desc := resolver.FieldDescriptor(ctx.Text(typeNode))

	var shadow *annotation
	final := false
	if mods := childOfKind(node, "modifiers"); mods != nil {
		for _, ann := range annotationsOf(ctx, mods) {
			switch ann.name {
			case "Shadow":
				a := ann
				shadow = &a
			case "Final":
				final = true
			}
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		raw := ctx.Text(nameNode)
		member := Member{Name: raw, Descriptor: desc, Kind: mapping.KindField}
		cls.Members = append(cls.Members, member)

		if shadow != nil {
			sm := e.shadowMember(ctx, member, *shadow, cls, node)
			sm.Final = final
			cls.Shadows = append(cls.Shadows, sm)
		}
	}
}

func (e *MixinExtractor) extractMethod(ctx *ExtractionContext, node *sitter.Node, cls *Class, resolver *DescriptorResolver) {
	nameNode := node.ChildByFieldName("name")
	typeNode := node.ChildByFieldName("type")
	params := node.ChildByFieldName("parameters")
	if nameNode == nil || typeNode == nil {
		return
	}

	var paramTypes []string
	if params != nil {
		for i := uint(0); i < params.ChildCount(); i++ {
			child := params.Child(i)
			switch child.Kind() {
			case "formal_parameter":
				if t := child.ChildByFieldName("type"); t != nil {
					paramTypes = append(paramTypes, ctx.Text(t))
				}
			case "spread_parameter":
				if t := namedChildOfKindSuffix(child, "_type", "identifier"); t != nil {
					paramTypes = append(paramTypes, ctx.Text(t)+"...")
				}
			}
		}
	}

	member := Member{
		Name:       ctx.Text(nameNode),
		Descriptor: resolver.MethodDescriptor(paramTypes, ctx.Text(typeNode)),
		Kind:       mapping.KindMethod,
	}
	cls.Members = append(cls.Members, member)

	if mods := childOfKind(node, "modifiers"); mods != nil {
		for _, ann := range annotationsOf(ctx, mods) {
			if ann.name == "Shadow" {
				cls.Shadows = append(cls.Shadows, e.shadowMember(ctx, member, ann, cls, node))
			}
		}
	}
}

func (e *MixinExtractor) shadowMember(ctx *ExtractionContext, member Member, ann annotation, cls *Class, node *sitter.Node) ShadowMember {
	prefix := e.prefix
	if p, ok := ann.stringArg(ctx, "prefix"); ok {
		prefix = p
	}

	raw := member.Name
	stripped := ""
	if strings.HasPrefix(member.Name, prefix) {
		member.Name = strings.TrimPrefix(member.Name, prefix)
		stripped = prefix
	}

	remap := cls.Remap
	if v, ok := ann.boolArg("remap"); ok {
		remap = cls.Remap && v
	}

	return ShadowMember{
		Member:   member,
		RawName:  raw,
		Prefix:   stripped,
		Remap:    remap,
		Location: ctx.Location(node),
	}
}

// annotation is one parsed annotation with lazy argument access.
type annotation struct {
	name string
	args *sitter.Node // annotation_argument_list, nil for marker annotations
	ctx  *ExtractionContext
}

func annotationsOf(ctx *ExtractionContext, modifiers *sitter.Node) []annotation {
	var anns []annotation
	for i := uint(0); i < modifiers.ChildCount(); i++ {
		child := modifiers.Child(i)
		kind := child.Kind()
		if kind != "marker_annotation" && kind != "annotation" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := ctx.Text(nameNode)
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		anns = append(anns, annotation{
			name: name,
			args: child.ChildByFieldName("arguments"),
			ctx:  ctx,
		})
	}
	return anns
}

// values returns the value nodes bound to the named annotation element.
// A bare single argument binds to "value"; array initializers flatten
// into their element nodes.
func (a annotation) values(key string) []*sitter.Node {
	if a.args == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < a.args.ChildCount(); i++ {
		child := a.args.Child(i)
		switch child.Kind() {
		case "element_value_pair":
			k := child.ChildByFieldName("key")
			v := child.ChildByFieldName("value")
			if k == nil || v == nil || a.ctx.Text(k) != key {
				continue
			}
			out = append(out, flattenValue(v)...)
		case "(", ")", ",":
		default:
			if key == "value" {
				out = append(out, flattenValue(child)...)
			}
		}
	}
	return out
}

func flattenValue(v *sitter.Node) []*sitter.Node {
	if v.Kind() != "element_value_array_initializer" {
		return []*sitter.Node{v}
	}
	var out []*sitter.Node
	for i := uint(0); i < v.ChildCount(); i++ {
		child := v.Child(i)
		switch child.Kind() {
		case "{", "}", ",":
		default:
			out = append(out, child)
		}
	}
	return out
}

func (a annotation) boolArg(key string) (bool, bool) {
	for _, v := range a.values(key) {
		switch v.Kind() {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func (a annotation) stringArg(ctx *ExtractionContext, key string) (string, bool) {
	for _, v := range a.values(key) {
		if v.Kind() == "string_literal" {
			return stringLiteral(ctx, v), true
		}
	}
	return "", false
}

func classLiteralName(ctx *ExtractionContext, node *sitter.Node, resolver *DescriptorResolver) string {
	// class_literal is "<type>.class"; the type may itself be scoped.
	text := ctx.Text(node)
	text = strings.TrimSuffix(text, ".class")
	return resolver.internalName(strings.TrimSpace(text))
}

func stringLiteral(ctx *ExtractionContext, node *sitter.Node) string {
	return strings.Trim(ctx.Text(node), `"`)
}

func childOfKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}

func namedChildOfKindSuffix(node *sitter.Node, suffix, orKind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		kind := child.Kind()
		if strings.HasSuffix(kind, suffix) || kind == orKind || kind == "type_identifier" || kind == "scoped_type_identifier" {
			return child
		}
	}
	return nil
}
