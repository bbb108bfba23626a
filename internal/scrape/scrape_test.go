package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const page = `<html><head>
<meta property="og:title" content="해리포터와 마법사의 돌 1"/>
<meta property="og:image" content="http://image.yes24.com/goods/72289/M"/>
</head><body>
<h1><a>해리포터와 마법사의 돌 1</a></h1>
<div id="title"><p>조앤.K.롤링 저 | 김혜원 역 | 문학수첩</p></div>
<dd class="isbn10"><p>8983920688</p></dd>
</body></html>`

func TestFirstText_Element(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(page)
	require.NoError(t, err)
	require.Equal(t, "해리포터와 마법사의 돌 1", FirstText(doc, `//h1/a`))
	require.Equal(t, "8983920688", FirstText(doc, `//dd[@class="isbn10"]/p`))
}

func TestFirstText_AttributeSelection(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(page)
	require.NoError(t, err)
	got := FirstText(doc, `//meta[@property="og:image"]/@content`)
	require.Equal(t, "http://image.yes24.com/goods/72289/M", got)
}

func TestFirstText_Missing(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(page)
	require.NoError(t, err)
	require.Equal(t, "", FirstText(doc, `//span[@class="series"]/a`))
	require.Equal(t, "", FirstText(doc, `//totally(bogus`))
}

func TestCleanControlChars(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ab\ncd", CleanControlChars("a\x00b\ncd\x1b"))
}

func TestSanitizeComments(t *testing.T) {
	t.Parallel()

	in := `<p onclick="x()">책소개 <b>굿</b></p><script>evil()</script><a href="javascript:x()">link</a>`
	out := SanitizeComments(in)
	require.NotContains(t, out, "script")
	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "javascript:")
	require.Contains(t, out, "<b>굿</b>")
	require.Contains(t, out, "<a>link</a>")
}
