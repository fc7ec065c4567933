package job

import "strings"

// Language is a fixed execution preset: how to write the source file,
// how to compile it (if at all), and how to run it. Compile/run
// commands are shell-level strings; the sandbox executor hands them to
// /usr/bin/sh -c inside the box rather than splitting them itself.
type Language struct {
	Name           string `json:"name"`
	SourceFileName string `json:"source_file_name"`
	CompileCmd     string `json:"compile_cmd,omitempty"`
	RunCmd         string `json:"run_cmd"`
	IsCompiled     bool   `json:"is_compiled"`
}

// HasCompileStep reports whether this preset requires a compile phase.
func (l Language) HasCompileStep() bool {
	return strings.TrimSpace(l.CompileCmd) != ""
}
