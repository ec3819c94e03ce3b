package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lspcli/internal/lsperr"
)

func TestParseFileOnly(t *testing.T) {
	l, err := Parse("foo.py", DefaultMarker)
	require.NoError(t, err)
	assert.Equal(t, "foo.py", l.File)
	assert.Equal(t, ScopeNone, l.Scope.Kind)
	assert.False(t, l.Find.Present)
}

func TestParseLineScope(t *testing.T) {
	l, err := Parse("foo.py:42", DefaultMarker)
	require.NoError(t, err)
	assert.Equal(t, "foo.py", l.File)
	assert.Equal(t, ScopeLine, l.Scope.Kind)
	assert.Equal(t, 42, l.Scope.Line)
}

func TestParseLineRangeComma(t *testing.T) {
	l, err := Parse("foo.py:10,20", DefaultMarker)
	require.NoError(t, err)
	assert.Equal(t, ScopeLineRange, l.Scope.Kind)
	assert.Equal(t, 10, l.Scope.Start)
	assert.Equal(t, 20, l.Scope.End)
}

func TestParseLineRangeHyphen(t *testing.T) {
	l, err := Parse("foo.py:10-20", DefaultMarker)
	require.NoError(t, err)
	assert.Equal(t, ScopeLineRange, l.Scope.Kind)
	assert.Equal(t, 10, l.Scope.Start)
	assert.Equal(t, 20, l.Scope.End)
}

func TestParseSymbolScope(t *testing.T) {
	l, err := Parse("foo.py:MyClass.method", DefaultMarker)
	require.NoError(t, err)
	assert.Equal(t, ScopeSymbol, l.Scope.Kind)
	assert.Equal(t, "MyClass.method", l.Scope.Symbol)
}

func TestParseFindWithMarker(t *testing.T) {
	l, err := Parse("foo.py@self.<|>bar", DefaultMarker)
	require.NoError(t, err)
	require.True(t, l.Find.Present)
	assert.True(t, l.Find.HasMarker)
	assert.Equal(t, "self.", l.Find.Before)
	assert.Equal(t, "bar", l.Find.After)
}

func TestParseFindNoMarkerIsFirstOccurrence(t *testing.T) {
	l, err := Parse("foo.py@bar", DefaultMarker)
	require.NoError(t, err)
	require.True(t, l.Find.Present)
	assert.False(t, l.Find.HasMarker)
	assert.Equal(t, "bar", l.Find.Text)
}

func TestParseSymbolScopeAndFind(t *testing.T) {
	l, err := Parse("foo.py:MyClass.m@self.<|>old", DefaultMarker)
	require.NoError(t, err)
	assert.Equal(t, ScopeSymbol, l.Scope.Kind)
	assert.Equal(t, "MyClass.m", l.Scope.Symbol)
	assert.True(t, l.Find.HasMarker)
}

func TestParseCustomMarker(t *testing.T) {
	l, err := Parse("foo.py@self.<HERE>bar", "<HERE>")
	require.NoError(t, err)
	assert.True(t, l.Find.HasMarker)
	assert.Equal(t, "self.", l.Find.Before)
}

func TestParseEmptyIsParseError(t *testing.T) {
	_, err := Parse("", DefaultMarker)
	require.Error(t, err)
	assert.True(t, lsperr.Is(err, lsperr.KindParseError))
}

func TestParseWindowsDriveLetterIsNotAScope(t *testing.T) {
	l, err := Parse(`C:\work\foo.py`, DefaultMarker)
	require.NoError(t, err)
	assert.Equal(t, `C:\work\foo.py`, l.File)
	assert.Equal(t, ScopeNone, l.Scope.Kind)
}
