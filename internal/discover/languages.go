package discover

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// languageExtensions maps a language to the file extensions (or exact file
// names, for extension-less build files) considered source code.
var languageExtensions = map[string][]string{
	"python":     {".py", ".pyw", ".pyx", ".pyi"},
	"javascript": {".js", ".jsx", ".mjs", ".cjs"},
	"typescript": {".ts", ".tsx"},
	"java":       {".java"},
	"c":          {".c", ".h"},
	"cpp":        {".cpp", ".cc", ".cxx", ".hpp", ".hxx", ".h++", ".hh"},
	"csharp":     {".cs"},
	"go":         {".go"},
	"rust":       {".rs"},
	"ruby":       {".rb", ".rake"},
	"php":        {".php", ".phtml"},
	"swift":      {".swift"},
	"kotlin":     {".kt", ".kts"},
	"scala":      {".scala", ".sc"},
	"r":          {".r", ".R"},
	"perl":       {".pl", ".pm"},
	"shell":      {".sh", ".bash", ".zsh", ".fish"},
	"sql":        {".sql"},
	"html":       {".html", ".htm"},
	"css":        {".css", ".scss", ".sass", ".less"},
	"xml":        {".xml"},
	"yaml":       {".yaml", ".yml"},
	"json":       {".json"},
	"markdown":   {".md", ".markdown"},
	"lua":        {".lua"},
	"dart":       {".dart"},
	"elixir":     {".ex", ".exs"},
	"erlang":     {".erl", ".hrl"},
	"haskell":    {".hs", ".lhs"},
	"clojure":    {".clj", ".cljs", ".cljc", ".edn"},
	"ocaml":      {".ml", ".mli"},
	"fsharp":     {".fs", ".fsx", ".fsi"},
	"vim":        {".vim"},
	"powershell": {".ps1", ".psm1", ".psd1"},
	"matlab":     {".m"},
	"groovy":     {".groovy", ".gradle"},
	"terraform":  {".tf", ".tfvars"},
	"dockerfile": {"Dockerfile", ".dockerfile"},
	"makefile":   {"Makefile", "makefile", ".make"},
}

// Languages returns the supported language names, sorted.
func Languages() []string {
	out := make([]string, 0, len(languageExtensions))
	for l := range languageExtensions {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// AllExtensions returns every supported extension.
func AllExtensions() map[string]bool {
	out := map[string]bool{}
	for _, exts := range languageExtensions {
		for _, e := range exts {
			out[e] = true
		}
	}
	return out
}

// ExtensionsFor returns the extensions for the named languages
// (case-insensitive). An unknown language is an error.
func ExtensionsFor(languages []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, l := range languages {
		exts, ok := languageExtensions[strings.ToLower(strings.TrimSpace(l))]
		if !ok {
			return nil, fmt.Errorf("unsupported language %q (supported: %s)", l, strings.Join(Languages(), ", "))
		}
		for _, e := range exts {
			out[e] = true
		}
	}
	return out, nil
}

// LanguageFor returns the language of path, or "" when unsupported.
func LanguageFor(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	for _, l := range Languages() {
		for _, e := range languageExtensions[l] {
			if e == base || (ext != "" && e == ext) {
				return l
			}
		}
	}
	return ""
}

func supported(path string, exts map[string]bool) bool {
	base := filepath.Base(path)
	if exts[base] {
		return true
	}
	ext := filepath.Ext(base)
	return ext != "" && exts[ext]
}
