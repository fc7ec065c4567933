package langpreset

import "testing"

func TestLookupKnownLanguages(t *testing.T) {
	for _, name := range Names() {
		lang, ok := Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) not found", name)
			continue
		}
		if lang.Name != name {
			t.Errorf("Lookup(%q).Name = %q", name, lang.Name)
		}
		if lang.RunCmd == "" {
			t.Errorf("Lookup(%q).RunCmd is empty", name)
		}
	}
}

func TestLookupUnknownLanguage(t *testing.T) {
	if _, ok := Lookup("cobol"); ok {
		t.Error("expected cobol to be unsupported")
	}
}

func TestCompiledPresetsHaveCompileStep(t *testing.T) {
	for _, name := range []string{Cpp, Java} {
		lang, _ := Lookup(name)
		if !lang.HasCompileStep() {
			t.Errorf("%s preset should have a compile step", name)
		}
		if !lang.IsCompiled {
			t.Errorf("%s preset should be marked IsCompiled", name)
		}
	}
}

func TestInterpretedPresetsHaveNoCompileStep(t *testing.T) {
	for _, name := range []string{Python, JavaScript, SQL} {
		lang, _ := Lookup(name)
		if lang.HasCompileStep() {
			t.Errorf("%s preset should not have a compile step", name)
		}
	}
}
