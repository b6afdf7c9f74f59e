package dbf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// rejectFF passes bytes through and fails on 0xFF instead of emitting U+FFFD.
type rejectFF struct{ transform.NopResetter }

func (rejectFF) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if src[nSrc] == 0xFF {
			return nDst, nSrc, errors.New("invalid byte 0xff")
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = src[nSrc]
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

type rejectFFEncoding struct{}

func (rejectFFEncoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: rejectFF{}}
}

func (rejectFFEncoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: transform.Nop}
}

func TestCodecDecode_DecoderErrorHonoursMode(t *testing.T) {
	raw := []byte{'a', 0xFF, 'b'}

	c := &codec{name: "reject-ff", enc: rejectFFEncoding{}, mode: Replace}
	s, _, ok := c.decode(raw)
	assert.True(t, ok)
	assert.Equal(t, "a\uFFFDb", s)

	c.mode = Ignore
	s, _, ok = c.decode(raw)
	assert.True(t, ok)
	assert.Equal(t, "ab", s)

	c.mode = Strict
	_, pos, ok := c.decode(raw)
	assert.False(t, ok)
	assert.Equal(t, 1, pos)
}
