package asset

import (
	"bytes"
	"strings"
)

type contentKind int

const (
	contentEmpty contentKind = iota
	contentBytes
	contentText
	contentStream
)

// Content is an asset's materialized content: nothing, a byte buffer, a
// string, or a single-read stream. The zero value is empty.
type Content struct {
	kind   contentKind
	bytes  []byte
	text   string
	stream *Stream
}

func BytesContent(data []byte) Content {
	return Content{kind: contentBytes, bytes: data}
}

func TextContent(text string) Content {
	return Content{kind: contentText, text: text}
}

func StreamContent(stream *Stream) Content {
	return Content{kind: contentStream, stream: stream}
}

// IsEmpty reports whether no representation is resident.
func (c Content) IsEmpty() bool {
	return c.kind == contentEmpty
}

// IsStream reports whether the content is a stream.
func (c Content) IsStream() bool {
	return c.kind == contentStream
}

// open wraps the buffered representations in a fresh stream without
// touching c. A stream representation is returned as is.
func (c Content) open() *Stream {
	switch c.kind {
	case contentBytes:
		return NewStream(bytes.NewReader(c.bytes))
	case contentText:
		return NewStream(strings.NewReader(c.text))
	case contentStream:
		return c.stream
	default:
		return NewStream(bytes.NewReader(nil))
	}
}
