// Package langpreset holds the fixed table of supported languages and
// their sandbox-facing compile/run commands.
package langpreset

import "github.com/BV-BRC/cwe-judge/internal/job"

// Names of the supported presets.
const (
	Python     = "python"
	Cpp        = "cpp"
	Java       = "java"
	JavaScript = "javascript"
	SQL        = "sql"
)

var presets = map[string]job.Language{
	Python: {
		Name:           Python,
		SourceFileName: "script.py",
		CompileCmd:     "",
		RunCmd:         "/usr/bin/python3 script.py",
		IsCompiled:     false,
	},
	Cpp: {
		Name:           Cpp,
		SourceFileName: "main.cpp",
		CompileCmd:     "/usr/bin/g++ -O2 -o main main.cpp",
		RunCmd:         "./main",
		IsCompiled:     true,
	},
	Java: {
		Name:           Java,
		SourceFileName: "Main.java",
		CompileCmd:     "/usr/bin/javac Main.java",
		RunCmd:         "/usr/bin/java Main",
		IsCompiled:     true,
	},
	JavaScript: {
		Name:           JavaScript,
		SourceFileName: "script.js",
		CompileCmd:     "",
		RunCmd:         "/usr/bin/node script.js",
		IsCompiled:     false,
	},
	SQL: {
		Name:           SQL,
		SourceFileName: "query.sql",
		CompileCmd:     "",
		RunCmd:         "/usr/bin/sqlite3 :memory: < query.sql",
		IsCompiled:     false,
	},
}

// Lookup resolves a language name to its preset. ok is false for an
// unknown name.
func Lookup(name string) (job.Language, bool) {
	l, ok := presets[name]
	return l, ok
}

// Names returns the supported language names, in the table's order.
func Names() []string {
	return []string{Python, Cpp, Java, JavaScript, SQL}
}
