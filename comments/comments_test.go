package comments

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/jsparse/ast"
)

func TestFromSource(t *testing.T) {
	line := FromSource("// 1", ast.Span{Lo: 0, Hi: 4})
	assert.Equal(t, Line, line.Kind)
	assert.Equal(t, " 1", line.Text)

	block := FromSource("/** doc */", ast.Span{Lo: 5, Hi: 15})
	assert.Equal(t, Block, block.Kind)
	assert.Equal(t, "* doc ", block.Text)

	html := FromSource("<!-- legacy", ast.Span{})
	assert.Equal(t, " legacy", html.Text)
}

func TestFreezeOrdersComments(t *testing.T) {
	b := NewBuilder()
	b.AddTrailing(12, FromSource("// 2", ast.Span{Lo: 13, Hi: 17}))
	b.AddLeading(5, FromSource("// 1", ast.Span{Lo: 0, Hi: 4}))
	require.Equal(t, 2, b.Len())

	c := b.Freeze()
	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, " 1", all[0].Text)
	assert.Equal(t, " 2", all[1].Text)

	assert.True(t, c.HasLeading(5))
	assert.False(t, c.HasLeading(12))
	assert.Len(t, c.Trailing(12), 1)
	assert.Empty(t, c.Leading(0))
}

func TestFrozenIndexIsSharedReadOnly(t *testing.T) {
	b := NewBuilder()
	for i := uint32(0); i < 50; i++ {
		b.AddLeading(i*10, FromSource("/* x */", ast.Span{Lo: i * 10, Hi: i*10 + 7}))
	}
	c := b.Freeze()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := uint32(0); i < 50; i++ {
				got := c.Leading(i * 10)
				got[0].Text = "mutated"
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, " x ", c.Leading(0)[0].Text)
	assert.Equal(t, 50, c.Len())
}
