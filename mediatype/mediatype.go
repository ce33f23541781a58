package mediatype

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// MediaType is the declared content kind of a source file.
type MediaType int

const (
	Unknown MediaType = iota
	JavaScript
	Jsx
	Mjs
	Cjs
	TypeScript
	Mts
	Cts
	Dts
	Dmts
	Dcts
	Tsx
	Json
	Wasm
	TsBuildInfo
	SourceMap
)

var names = map[MediaType]string{
	Unknown:     "Unknown",
	JavaScript:  "JavaScript",
	Jsx:         "JSX",
	Mjs:         "Mjs",
	Cjs:         "Cjs",
	TypeScript:  "TypeScript",
	Mts:         "Mts",
	Cts:         "Cts",
	Dts:         "Dts",
	Dmts:        "Dmts",
	Dcts:        "Dcts",
	Tsx:         "TSX",
	Json:        "Json",
	Wasm:        "Wasm",
	TsBuildInfo: "TsBuildInfo",
	SourceMap:   "SourceMap",
}

func (m MediaType) String() string {
	if name, ok := names[m]; ok {
		return name
	}
	return fmt.Sprintf("MediaType(%d)", int(m))
}

func (m MediaType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MediaType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Parse accepts either a name as printed by String or a file extension
// such as ".tsx".
func Parse(s string) (MediaType, error) {
	for mt, name := range names {
		if strings.EqualFold(name, s) {
			return mt, nil
		}
	}
	if strings.HasPrefix(s, ".") {
		if mt := FromPath("file" + s); mt != Unknown {
			return mt, nil
		}
	}
	return Unknown, fmt.Errorf("unknown media type %q", s)
}

// IsTypeScript reports whether files of this kind are parsed with a
// TypeScript grammar.
func (m MediaType) IsTypeScript() bool {
	switch m {
	case TypeScript, Mts, Cts, Dts, Dmts, Dcts, Tsx:
		return true
	}
	return false
}

// IsDeclaration reports whether the kind only holds ambient declarations.
func (m MediaType) IsDeclaration() bool {
	return m == Dts || m == Dmts || m == Dcts
}

// IsParseable reports whether the kind holds JavaScript or TypeScript text.
func (m MediaType) IsParseable() bool {
	switch m {
	case JavaScript, Jsx, Mjs, Cjs:
		return true
	}
	return m.IsTypeScript()
}

// Extension returns the canonical file extension, including the dot.
func (m MediaType) Extension() string {
	switch m {
	case JavaScript:
		return ".js"
	case Jsx:
		return ".jsx"
	case Mjs:
		return ".mjs"
	case Cjs:
		return ".cjs"
	case TypeScript:
		return ".ts"
	case Mts:
		return ".mts"
	case Cts:
		return ".cts"
	case Dts:
		return ".d.ts"
	case Dmts:
		return ".d.mts"
	case Dcts:
		return ".d.cts"
	case Tsx:
		return ".tsx"
	case Json:
		return ".json"
	case Wasm:
		return ".wasm"
	case TsBuildInfo:
		return ".tsbuildinfo"
	case SourceMap:
		return ".js.map"
	}
	return ""
}

// FromPath detects the media type from a file name.
func FromPath(filePath string) MediaType {
	base := strings.ToLower(filepath.Base(filePath))
	ext := filepath.Ext(base)

	switch ext {
	case ".ts":
		if isDeclarationName(base, ".ts") {
			return Dts
		}
		return TypeScript
	case ".mts":
		if isDeclarationName(base, ".mts") {
			return Dmts
		}
		return Mts
	case ".cts":
		if isDeclarationName(base, ".cts") {
			return Dcts
		}
		return Cts
	case ".tsx":
		return Tsx
	case ".js":
		return JavaScript
	case ".jsx":
		return Jsx
	case ".mjs":
		return Mjs
	case ".cjs":
		return Cjs
	case ".json", ".jsonc":
		return Json
	case ".wasm":
		return Wasm
	case ".tsbuildinfo":
		return TsBuildInfo
	case ".map":
		return SourceMap
	default:
		return Unknown
	}
}

// isDeclarationName matches "x.d.ts" as well as "x.d.json.ts" style names.
func isDeclarationName(base, ext string) bool {
	stem := strings.TrimSuffix(base, ext)
	if strings.HasSuffix(stem, ".d") {
		return true
	}
	dot := strings.LastIndex(stem, ".")
	if dot < 0 {
		return false
	}
	return strings.HasSuffix(stem[:dot], ".d")
}

// FromSpecifier detects the media type from a path or URL specifier,
// ignoring any query string or fragment.
func FromSpecifier(specifier string) MediaType {
	u, err := url.Parse(specifier)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		if i := strings.IndexAny(specifier, "?#"); i >= 0 {
			specifier = specifier[:i]
		}
		return FromPath(specifier)
	}
	if u.Scheme == "data" {
		return Unknown
	}
	return FromPath(path.Base(u.Path))
}
