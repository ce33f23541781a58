package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want MediaType
	}{
		{"src/app.ts", TypeScript},
		{"src/app.mts", Mts},
		{"src/app.cts", Cts},
		{"types/lib.d.ts", Dts},
		{"types/lib.d.mts", Dmts},
		{"types/lib.d.cts", Dcts},
		{"types/data.d.json.ts", Dts},
		{"ui/App.tsx", Tsx},
		{"ui/App.jsx", Jsx},
		{"index.js", JavaScript},
		{"index.MJS", Mjs},
		{"index.cjs", Cjs},
		{"package.json", Json},
		{"mod.wasm", Wasm},
		{"tsconfig.tsbuildinfo", TsBuildInfo},
		{"bundle.js.map", SourceMap},
		{"README.md", Unknown},
		{"Makefile", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FromPath(tt.path))
		})
	}
}

func TestFromSpecifier(t *testing.T) {
	assert.Equal(t, TypeScript, FromSpecifier("https://deno.land/x/mod.ts?v=1"))
	assert.Equal(t, Dts, FromSpecifier("https://example.com/types/index.d.ts#frag"))
	assert.Equal(t, Jsx, FromSpecifier("file:///home/user/App.jsx"))
	assert.Equal(t, Mjs, FromSpecifier("./lib/util.mjs?raw"))
	assert.Equal(t, TypeScript, FromSpecifier(`C:\work\main.ts`))
	assert.Equal(t, Unknown, FromSpecifier("data:text/javascript,console.log(1)"))
}

func TestPredicates(t *testing.T) {
	assert.True(t, Tsx.IsTypeScript())
	assert.False(t, Jsx.IsTypeScript())
	assert.True(t, Dmts.IsDeclaration())
	assert.False(t, Mts.IsDeclaration())
	assert.True(t, Cjs.IsParseable())
	assert.False(t, Json.IsParseable())
	assert.Equal(t, ".d.mts", Dmts.Extension())
}

func TestTextRoundTrip(t *testing.T) {
	for mt := range names {
		text, err := mt.MarshalText()
		require.NoError(t, err)

		var back MediaType
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, mt, back)
	}

	parsed, err := Parse(".tsx")
	require.NoError(t, err)
	assert.Equal(t, Tsx, parsed)

	_, err = Parse("cobol")
	assert.Error(t, err)
}
