package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Here is your scene:
<scene>
{"action":"addObject","object":{"id":"a","geometry":{"type":"sphere"}}}
{"action":"setCamera","camera":{"fov":50}}
</scene>
Anything else?`

func actions(t *testing.T, raws []json.RawMessage) []string {
	t.Helper()
	var out []string
	for _, raw := range raws {
		var v struct {
			Action string `json:"action"`
		}
		require.NoError(t, json.Unmarshal(raw, &v))
		out = append(out, v.Action)
	}
	return out
}

func TestSingleChunk(t *testing.T) {
	ex := New()
	got := ex.AddChunk(sample)
	assert.Equal(t, []string{"addObject", "setCamera"}, actions(t, got))
	assert.False(t, ex.InBlock())
}

func TestEverySplitPoint(t *testing.T) {
	// Splitting the stream at every single byte boundary must yield the
	// same commands as feeding it whole.
	want := actions(t, New().AddChunk(sample))
	for i := 1; i < len(sample); i++ {
		ex := New()
		var got []json.RawMessage
		got = append(got, ex.AddChunk(sample[:i])...)
		got = append(got, ex.AddChunk(sample[i:])...)
		assert.Equalf(t, want, actions(t, got), "split at byte %d", i)
	}
}

func TestByteAtATime(t *testing.T) {
	ex := New()
	var got []json.RawMessage
	for i := 0; i < len(sample); i++ {
		got = append(got, ex.AddChunk(sample[i:i+1])...)
	}
	assert.Equal(t, []string{"addObject", "setCamera"}, actions(t, got))
}

func TestSplitTags(t *testing.T) {
	for i := 1; i < len(OpenTag); i++ {
		ex := New()
		var got []json.RawMessage
		got = append(got, ex.AddChunk("text "+OpenTag[:i])...)
		got = append(got, ex.AddChunk(OpenTag[i:]+`{"action":"clearScene"}`+CloseTag)...)
		assert.Equalf(t, []string{"clearScene"}, actions(t, got), "open tag split at %d", i)
	}
	for i := 1; i < len(CloseTag); i++ {
		ex := New()
		var got []json.RawMessage
		got = append(got, ex.AddChunk(OpenTag+`{"action":"clearScene"}`+CloseTag[:i])...)
		got = append(got, ex.AddChunk(CloseTag[i:]+" trailing")...)
		assert.Equalf(t, []string{"clearScene"}, actions(t, got), "close tag split at %d", i)
		assert.False(t, ex.InBlock())
	}
}

func TestMalformedObjectIsolated(t *testing.T) {
	ex := New()
	got := ex.AddChunk(OpenTag + `{"action": bogus,,} {"action":"resetScene"}` + CloseTag)
	assert.Equal(t, []string{"resetScene"}, actions(t, got))
}

func TestMultipleBlocks(t *testing.T) {
	ex := New()
	text := "a " + OpenTag + `{"action":"clearScene"}` + CloseTag +
		" b " + OpenTag + `{"action":"resetScene"}` + CloseTag + " c"
	got := ex.AddChunk(text)
	assert.Equal(t, []string{"clearScene", "resetScene"}, actions(t, got))
}

func TestArrayBracketsInert(t *testing.T) {
	// Streaming mode does not parse an enclosing array; the brackets are
	// scanned and discarded, each object extracted independently.
	ex := New()
	got := ex.AddChunk(OpenTag + `[{"action":"clearScene"},{"action":"resetScene"}]` + CloseTag)
	assert.Equal(t, []string{"clearScene", "resetScene"}, actions(t, got))
}

func TestBracesInsideStrings(t *testing.T) {
	ex := New()
	got := ex.AddChunk(OpenTag + `{"action":"addObject","object":{"id":"a","name":"curly } brace { name"}}` + CloseTag)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"addObject"}, actions(t, got))
}

func TestBracesInsideTopLevelStrings(t *testing.T) {
	// A string between objects may hold braces too; they must not open a
	// phantom capture that swallows the next command.
	text := OpenTag + `["{", {"action":"clearScene"}]` + CloseTag
	got := New().AddChunk(text)
	assert.Equal(t, []string{"clearScene"}, actions(t, got))

	for i := 1; i < len(text); i++ {
		ex := New()
		var split []json.RawMessage
		split = append(split, ex.AddChunk(text[:i])...)
		split = append(split, ex.AddChunk(text[i:])...)
		assert.Equalf(t, []string{"clearScene"}, actions(t, split), "split at byte %d", i)
	}
}

func TestEscapedQuoteInsideString(t *testing.T) {
	ex := New()
	got := ex.AddChunk(OpenTag + `{"action":"addObject","object":{"id":"a","name":"say \"}\" loud"}}` + CloseTag)
	assert.Equal(t, []string{"addObject"}, actions(t, got))
}

func TestStrayClosingBrace(t *testing.T) {
	ex := New()
	got := ex.AddChunk(OpenTag + `}}} {"action":"clearScene"}` + CloseTag)
	assert.Equal(t, []string{"clearScene"}, actions(t, got))
}

func TestCloseTagMidObject(t *testing.T) {
	// A close tag terminates the block even inside an unfinished object;
	// the partial object is discarded.
	ex := New()
	got := ex.AddChunk(OpenTag + `{"action":"addObj` + CloseTag + " done")
	assert.Empty(t, got)
	assert.False(t, ex.InBlock())

	// And the extractor keeps working for the next block.
	got = ex.AddChunk(OpenTag + `{"action":"clearScene"}` + CloseTag)
	assert.Equal(t, []string{"clearScene"}, actions(t, got))
}

func TestEmitsBeforeBlockCloses(t *testing.T) {
	ex := New()
	got := ex.AddChunk(OpenTag + `{"action":"clearScene"}`)
	assert.Equal(t, []string{"clearScene"}, actions(t, got))
	assert.True(t, ex.InBlock())
}

func TestGarbageOnly(t *testing.T) {
	ex := New()
	assert.Empty(t, ex.AddChunk("no tags here at all {not json} }{"))
	assert.Empty(t, ex.AddChunk(""))
}

func TestExtractAllObject(t *testing.T) {
	got := ExtractAll("x " + OpenTag + ` {"action":"clearScene"} ` + CloseTag + " y")
	assert.Equal(t, []string{"clearScene"}, actions(t, got))
}

func TestExtractAllArray(t *testing.T) {
	got := ExtractAll(OpenTag + `[{"action":"clearScene"},{"action":"resetScene"}]` + CloseTag)
	assert.Equal(t, []string{"clearScene", "resetScene"}, actions(t, got))
}

func TestExtractAllAdjacentObjects(t *testing.T) {
	got := ExtractAll(OpenTag + `{"action":"clearScene"} {"action":"resetScene"}` + CloseTag)
	assert.Equal(t, []string{"clearScene", "resetScene"}, actions(t, got))
}

func TestExtractAllUnterminatedBlock(t *testing.T) {
	got := ExtractAll(OpenTag + `{"action":"clearScene"}`)
	assert.Equal(t, []string{"clearScene"}, actions(t, got))
}

func TestStreamingMatchesFullBlock(t *testing.T) {
	full := actions(t, ExtractAll(sample))
	stream := actions(t, New().AddChunk(sample))
	assert.Equal(t, full, stream)
}
