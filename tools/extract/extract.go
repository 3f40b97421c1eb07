// Package extract pulls well-formed JSON objects out of a tag-delimited
// region of streaming text. It is built for language-model output: fragments
// arrive with arbitrary boundaries, tags and objects may be split anywhere,
// and malformed content must never stop the stream.
package extract

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Default tags marking the command region in model output.
const (
	OpenTag  = "<scene>"
	CloseTag = "</scene>"
)

// Extractor incrementally scans fragments for tag-delimited JSON objects.
// Feed fragments in arrival order via AddChunk; each fully-closed top-level
// object inside the tagged region is emitted as soon as its closing brace is
// seen. State persists across calls, so tags and objects may be split at any
// byte boundary. The zero value is not usable; call New.
type Extractor struct {
	openTag  string
	closeTag string

	buf      []byte
	pos      int  // scan cursor; bytes before pos are never re-scanned
	inBlock  bool // inside openTag..closeTag
	depth    int  // nested-brace depth, counted outside strings only
	inString bool
	escaped  bool
	objStart int // buf index where the current top-level object began, -1 if none
}

// New returns an Extractor using the default scene tags.
func New() *Extractor {
	return NewTagged(OpenTag, CloseTag)
}

// NewTagged returns an Extractor with custom delimiter tags.
func NewTagged(openTag, closeTag string) *Extractor {
	return &Extractor{
		openTag:  openTag,
		closeTag: closeTag,
		objStart: -1,
	}
}

// AddChunk consumes one text fragment and returns the JSON objects whose
// closing brace was reached inside this fragment, in scan order. Objects
// that do not parse as valid JSON are dropped silently. Never panics on any
// input.
func (e *Extractor) AddChunk(chunk string) []json.RawMessage {
	e.buf = append(e.buf, chunk...)

	var out []json.RawMessage

	for e.pos < len(e.buf) {
		if !e.inBlock {
			idx := bytes.Index(e.buf[e.pos:], []byte(e.openTag))
			if idx < 0 {
				// Keep only a tail that could still be the start of the
				// open tag; everything before it is discarded.
				e.pos = len(e.buf) - partialTagLen(e.buf[e.pos:], e.openTag)
				break
			}
			e.pos += idx + len(e.openTag)
			e.enterBlock()
			continue
		}

		rest := e.buf[e.pos:]

		// The close tag wins at any position, even mid-object or mid-string:
		// a closing delimiter early-terminates extraction for the block.
		if len(rest) >= len(e.closeTag) {
			if string(rest[:len(e.closeTag)]) == e.closeTag {
				e.pos += len(e.closeTag)
				e.inBlock = false
				e.objStart = -1
				continue
			}
		} else if strings.HasPrefix(e.closeTag, string(rest)) {
			// Possible split close tag at the buffer tail; wait for more.
			break
		}

		c := e.buf[e.pos]

		if e.inString {
			switch {
			case e.escaped:
				e.escaped = false
			case c == '\\':
				e.escaped = true
			case c == '"':
				e.inString = false
			}
			e.pos++
			continue
		}

		switch c {
		case '"':
			// String mode toggles at any depth: a depth-0 string may hold
			// braces that must not start or end a capture.
			e.inString = true
		case '{':
			if e.depth == 0 {
				// A fresh top-level object; any partial garbage captured
				// before it is abandoned.
				e.objStart = e.pos
			}
			e.depth++
		case '}':
			// A brace at depth 0 has nothing to close; ignore rather than
			// letting the depth go negative.
			if e.depth > 0 {
				e.depth--
				if e.depth == 0 && e.objStart >= 0 {
					raw := e.buf[e.objStart : e.pos+1]
					if json.Valid(raw) {
						cp := make(json.RawMessage, len(raw))
						copy(cp, raw)
						out = append(out, cp)
					}
					e.objStart = -1
				}
			}
		}
		e.pos++
	}

	e.compact()
	return out
}

// InBlock reports whether the scanner is currently inside a command block.
func (e *Extractor) InBlock() bool { return e.inBlock }

func (e *Extractor) enterBlock() {
	e.inBlock = true
	e.depth = 0
	e.inString = false
	e.escaped = false
	e.objStart = -1
}

// compact drops consumed buffer prefix. Bytes still needed — an open object
// capture or a possible partial tag at the tail — are retained.
func (e *Extractor) compact() {
	cut := e.pos
	if e.objStart >= 0 && e.objStart < cut {
		cut = e.objStart
	}
	if cut == 0 {
		return
	}
	e.buf = append(e.buf[:0], e.buf[cut:]...)
	e.pos -= cut
	if e.objStart >= 0 {
		e.objStart -= cut
	}
}

// partialTagLen returns the length of the longest proper prefix of tag that
// is a suffix of s. Used to defer scanning when a tag may be split across
// fragment boundaries.
func partialTagLen(s []byte, tag string) int {
	max := len(tag) - 1
	if max > len(s) {
		max = len(s)
	}
	for k := max; k > 0; k-- {
		if string(s[len(s)-k:]) == tag[:k] {
			return k
		}
	}
	return 0
}

// ExtractAll parses completed (non-streaming) text: every tagged block is
// decoded as one JSON value, which may be a single object or an array of
// objects — arrays are unwrapped here, unlike in streaming mode. A block
// whose close tag never arrives extends to the end of the text. Blocks that
// fail to parse as a single value fall back to the incremental scanner, so a
// sequence of adjacent objects is still honored.
func ExtractAll(text string) []json.RawMessage {
	return ExtractAllTagged(text, OpenTag, CloseTag)
}

// ExtractAllTagged is ExtractAll with custom delimiter tags.
func ExtractAllTagged(text, openTag, closeTag string) []json.RawMessage {
	var out []json.RawMessage

	for {
		start := strings.Index(text, openTag)
		if start < 0 {
			return out
		}
		body := text[start+len(openTag):]
		end := strings.Index(body, closeTag)
		if end >= 0 {
			text = body[end+len(closeTag):]
			body = body[:end]
		} else {
			text = ""
		}

		out = append(out, parseBlock(body, openTag, closeTag)...)

		if text == "" {
			return out
		}
	}
}

func parseBlock(body, openTag, closeTag string) []json.RawMessage {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	var value json.RawMessage
	if err := json.Unmarshal([]byte(body), &value); err == nil {
		switch value[0] {
		case '[':
			var items []json.RawMessage
			if err := json.Unmarshal(value, &items); err == nil {
				var objs []json.RawMessage
				for _, it := range items {
					if len(it) > 0 && it[0] == '{' {
						objs = append(objs, it)
					}
				}
				return objs
			}
		case '{':
			return []json.RawMessage{value}
		}
		return nil
	}

	// Not one clean JSON value; scan it the way the streaming path would.
	ex := NewTagged(openTag, closeTag)
	return ex.AddChunk(openTag + body + closeTag)
}
