// # internal/engine/parser/descriptor.go
package parser

import "strings"

// DescriptorResolver turns Java source-level type names into JVM
// descriptors. Generics are erased and unqualified class names are
// resolved through the file's imports, falling back to java.lang and
// then the declaring package.
type DescriptorResolver struct {
	pkg     string
	imports map[string]string // simple name -> fully qualified
}

var primitiveDescriptors = map[string]string{
	"void":    "V",
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
}

var javaLangTypes = map[string]bool{
	"Object": true, "String": true, "Class": true, "Integer": true,
	"Long": true, "Short": true, "Byte": true, "Character": true,
	"Boolean": true, "Float": true, "Double": true, "Void": true,
	"Number": true, "Math": true, "System": true, "Thread": true,
	"Runnable": true, "Iterable": true, "Comparable": true,
	"CharSequence": true, "StringBuilder": true, "StringBuffer": true,
	"Exception": true, "RuntimeException": true, "Throwable": true,
	"Error": true, "IllegalArgumentException": true,
	"IllegalStateException": true, "NullPointerException": true,
	"UnsupportedOperationException": true, "Enum": true, "Record": true,
	"AutoCloseable": true, "Cloneable": true, "Deprecated": true,
	"Override": true, "SuppressWarnings": true,
}

func NewDescriptorResolver(pkg string, imports map[string]string) *DescriptorResolver {
	if imports == nil {
		imports = make(map[string]string)
	}
	return &DescriptorResolver{pkg: pkg, imports: imports}
}

// FieldDescriptor resolves a single source type, e.g. "int[]" -> "[I",
// "List<String>" -> "Ljava/util/List;".
func (r *DescriptorResolver) FieldDescriptor(srcType string) string {
	srcType = strings.TrimSpace(srcType)

	dims := 0
	for strings.HasSuffix(srcType, "[]") {
		srcType = strings.TrimSpace(strings.TrimSuffix(srcType, "[]"))
		dims++
	}
	if strings.HasSuffix(srcType, "...") {
		srcType = strings.TrimSpace(strings.TrimSuffix(srcType, "..."))
		dims++
	}

	srcType = eraseGenerics(srcType)

	desc, ok := primitiveDescriptors[srcType]
	if !ok {
		desc = "L" + r.internalName(srcType) + ";"
	}
	return strings.Repeat("[", dims) + desc
}

// MethodDescriptor builds "(params)return" from source-level types.
func (r *DescriptorResolver) MethodDescriptor(paramTypes []string, returnType string) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, pt := range paramTypes {
		b.WriteString(r.FieldDescriptor(pt))
	}
	b.WriteByte(')')
	b.WriteString(r.FieldDescriptor(returnType))
	return b.String()
}

func (r *DescriptorResolver) internalName(name string) string {
	simple := name
	rest := ""
	if i := strings.Index(name, "."); i >= 0 {
		simple = name[:i]
		rest = name[i:]
	}

	// Nested types written as Outer.Inner resolve through the outer
	// simple name; a lowercase leading segment marks a fully qualified
	// name by Java package convention.
	if fq, ok := r.imports[simple]; ok {
		return strings.ReplaceAll(fq, ".", "/") + strings.ReplaceAll(rest, ".", "$")
	}
	if rest != "" && simple != "" && simple[0] >= 'a' && simple[0] <= 'z' {
		return strings.ReplaceAll(name, ".", "/")
	}
	if javaLangTypes[simple] {
		return "java/lang/" + simple + strings.ReplaceAll(rest, ".", "$")
	}
	if r.pkg != "" {
		return strings.ReplaceAll(r.pkg, ".", "/") + "/" + simple + strings.ReplaceAll(rest, ".", "$")
	}
	return simple + strings.ReplaceAll(rest, ".", "$")
}

// eraseGenerics strips type arguments, including nested ones, and
// wildcard annotations: "Map<String, List<Integer>>" -> "Map".
func eraseGenerics(srcType string) string {
	if i := strings.Index(srcType, "<"); i >= 0 {
		return strings.TrimSpace(srcType[:i])
	}
	return srcType
}
