// # internal/engine/parser/parser_test.go
package parser

import (
	"testing"

	"shadowmap/internal/engine/mapping"
)

func newTestParser() *Parser {
	p := NewParser(NewGrammarLoader())
	p.RegisterExtractor("java", NewMixinExtractor(""))
	return p
}

func TestMixinExtraction_SingleTarget(t *testing.T) {
	p := newTestParser()

	code := `
package com.example.mixin;

import com.example.core.Foo;
import org.spongepowered.asm.mixin.Mixin;
import org.spongepowered.asm.mixin.Shadow;

@Mixin(Foo.class)
public class MixinFoo {
    @Shadow
    private int counter;

    @Shadow
    abstract String describe(int level, boolean verbose);
}
`
	file, err := p.ParseFile("MixinFoo.java", []byte(code))
	if err != nil {
		t.Fatal(err)
	}
	if file.Package != "com.example.mixin" {
		t.Errorf("package = %q", file.Package)
	}
	if len(file.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(file.Classes))
	}

	cls := file.Classes[0]
	if cls.Name != "com/example/mixin/MixinFoo" {
		t.Errorf("class name = %q", cls.Name)
	}
	if !cls.IsMixin {
		t.Fatal("class should be a mixin")
	}
	if len(cls.Targets) != 1 || cls.Targets[0] != "com/example/core/Foo" {
		t.Errorf("targets = %v", cls.Targets)
	}
	if !cls.Remap {
		t.Error("class remap should default to true")
	}

	if len(cls.Shadows) != 2 {
		t.Fatalf("expected 2 shadow members, got %d", len(cls.Shadows))
	}

	field := cls.Shadows[0]
	if field.Name != "counter" || field.Kind != mapping.KindField {
		t.Errorf("field shadow = %+v", field)
	}
	if field.Descriptor != "I" {
		t.Errorf("field descriptor = %q", field.Descriptor)
	}
	if !field.Remap {
		t.Error("field remap should default to true")
	}

	method := cls.Shadows[1]
	if method.Name != "describe" || method.Kind != mapping.KindMethod {
		t.Errorf("method shadow = %+v", method)
	}
	if method.Descriptor != "(IZ)Ljava/lang/String;" {
		t.Errorf("method descriptor = %q", method.Descriptor)
	}
}

func TestMixinExtraction_MultiTargetAndRemap(t *testing.T) {
	p := newTestParser()

	code := `
package com.example.mixin;

import com.example.core.Foo;
import com.example.core.Bar;
import org.spongepowered.asm.mixin.Mixin;
import org.spongepowered.asm.mixin.Shadow;

@Mixin(value = {Foo.class, Bar.class}, remap = false)
class MixinBoth {
    @Shadow(remap = true)
    private long seed;
}
`
	file, err := p.ParseFile("MixinBoth.java", []byte(code))
	if err != nil {
		t.Fatal(err)
	}

	cls := file.Classes[0]
	if len(cls.Targets) != 2 {
		t.Fatalf("targets = %v", cls.Targets)
	}
	if cls.Targets[0] != "com/example/core/Foo" || cls.Targets[1] != "com/example/core/Bar" {
		t.Errorf("targets = %v", cls.Targets)
	}
	if cls.Remap {
		t.Error("class remap = false expected")
	}

	// Effective remap is class && member: false && true = false.
	if cls.Shadows[0].Remap {
		t.Error("shadow should inherit class remap = false")
	}
}

func TestMixinExtraction_StringTargetsAndPrefix(t *testing.T) {
	p := newTestParser()

	code := `
package com.example.mixin;

import org.spongepowered.asm.mixin.Mixin;
import org.spongepowered.asm.mixin.Shadow;
import org.spongepowered.asm.mixin.Final;

@Mixin(targets = {"com.example.core.Hidden$Inner"})
public class MixinHidden {
    @Shadow
    @Final
    private String shadow$secret;

    @Shadow(prefix = "impl$")
    abstract void impl$tick();
}
`
	file, err := p.ParseFile("MixinHidden.java", []byte(code))
	if err != nil {
		t.Fatal(err)
	}

	cls := file.Classes[0]
	if len(cls.Targets) != 1 || cls.Targets[0] != "com/example/core/Hidden$Inner" {
		t.Errorf("targets = %v", cls.Targets)
	}

	if len(cls.Shadows) != 2 {
		t.Fatalf("shadows = %+v", cls.Shadows)
	}

	field := cls.Shadows[0]
	if field.Name != "secret" {
		t.Errorf("prefix should be stripped, got %q", field.Name)
	}
	if field.RawName != "shadow$secret" || field.Prefix != "shadow$" {
		t.Errorf("raw = %q prefix = %q", field.RawName, field.Prefix)
	}
	if !field.Final {
		t.Error("field should carry @Final")
	}

	method := cls.Shadows[1]
	if method.Name != "tick" || method.Prefix != "impl$" {
		t.Errorf("method = %+v", method)
	}
}

func TestMixinExtraction_NestedAndPlainClasses(t *testing.T) {
	p := newTestParser()

	code := `
package com.example.core;

public class Foo {
    private int counter;
    private Foo parent;

    public class Inner {
        int depth;
    }

    String describe(int level, boolean verbose) {
        return "";
    }
}
`
	file, err := p.ParseFile("Foo.java", []byte(code))
	if err != nil {
		t.Fatal(err)
	}

	if len(file.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(file.Classes))
	}

	var outer, inner *Class
	for i := range file.Classes {
		switch file.Classes[i].Name {
		case "com/example/core/Foo":
			outer = &file.Classes[i]
		case "com/example/core/Foo$Inner":
			inner = &file.Classes[i]
		}
	}
	if outer == nil || inner == nil {
		t.Fatalf("classes = %+v", file.Classes)
	}
	if outer.IsMixin {
		t.Error("plain class must not be a mixin")
	}
	if len(outer.Members) != 3 {
		t.Errorf("outer members = %+v", outer.Members)
	}
	if len(inner.Members) != 1 || inner.Members[0].Name != "depth" {
		t.Errorf("inner members = %+v", inner.Members)
	}
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	p := newTestParser()
	if _, err := p.ParseFile("notes.txt", []byte("hello")); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestClassIndex_ValidateMember(t *testing.T) {
	p := newTestParser()

	code := `
package com.example.core;

public class Foo {
    private int counter;

    String describe(int level) {
        return "";
    }
}
`
	file, err := p.ParseFile("Foo.java", []byte(code))
	if err != nil {
		t.Fatal(err)
	}

	idx := NewClassIndex()
	idx.AddFile(file)

	targets := []string{"com/example/core/Foo"}

	if !idx.ValidateMember("counter", "I", mapping.KindField, targets) {
		t.Error("counter should validate")
	}
	if !idx.ValidateMember("describe", "(I)Ljava/lang/String;", mapping.KindMethod, targets) {
		t.Error("describe should validate")
	}
	if idx.ValidateMember("missing", "I", mapping.KindField, targets) {
		t.Error("missing member on a known class must not validate")
	}
	if idx.ValidateMember("describe", "(J)V", mapping.KindMethod, targets) {
		t.Error("method with wrong descriptor must not validate")
	}

	// Unknown target classes cannot be disproven.
	if !idx.ValidateMember("anything", "I", mapping.KindField, []string{"net/minecraft/Unknown"}) {
		t.Error("unknown target must validate")
	}
}
