package lsperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNilCauseReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(KindServerFault, "boom", nil))
}

func TestKindOfUnwraps(t *testing.T) {
	base := errors.New("boom")
	wrapped := Wrap(KindServerFault, "server crashed", base)

	k, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindServerFault, k)
	assert.ErrorIs(t, wrapped, base)
}

func TestIs(t *testing.T) {
	err := New(KindParseError, "bad locate string")
	assert.True(t, Is(err, KindParseError))
	assert.False(t, Is(err, KindServerFault))
	assert.False(t, Is(errors.New("plain"), KindParseError))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnsupportedPath:       404,
		KindCapabilityUnsupported: 422,
		KindNotReady:              503,
		KindParseError:            400,
		KindProtocolError:         502,
		KindServerFault:           500,
		KindBrokerUnreachable:     503,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), "kind %s", kind)
	}
}
