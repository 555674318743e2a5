package logparse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLine = `/src/Foo.cs(12,3): warning CS1591: Missing XML comment for publicly visible type or member 'Foo.Bar()' [proj]`

func TestParseSingleWarning(t *testing.T) {
	f := Parse(sampleLine)

	require.Equal(t, 1, f.Len())
	assert.Equal(t, []string{"/src/Foo.cs"}, f.Paths())
	assert.Equal(t, []string{"Foo.Bar()"}, f.Symbols("/src/Foo.cs"))
	assert.Zero(t, f.Skipped())
}

func TestParseIgnoresUnrelatedLines(t *testing.T) {
	log := "Build started.\n" +
		"  Determining projects to restore...\n" +
		sampleLine + "\n" +
		`/src/Foo.cs(20,9): warning CS0168: The variable 'ex' is declared but never used [proj]` + "\n" +
		"Build succeeded.\n"

	f := Parse(log)

	require.Equal(t, 1, f.Len())
	assert.Equal(t, []string{"Foo.Bar()"}, f.Symbols("/src/Foo.cs"))
}

func TestParseAccumulatesSymbolsPerPath(t *testing.T) {
	log := `/src/Foo.cs(12,3): warning CS1591: Missing XML comment for publicly visible type or member 'Foo.Bar()' [proj]
/src/Foo.cs(30,3): warning CS1591: Missing XML comment for publicly visible type or member 'Foo.Baz' [proj]
/src/Qux.cs(1,1): warning CS1591: Missing XML comment for publicly visible type or member 'Qux' [proj]`

	f := Parse(log)

	require.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"/src/Foo.cs", "/src/Qux.cs"}, f.Paths())
	assert.Equal(t, []string{"Foo.Bar()", "Foo.Baz"}, f.Symbols("/src/Foo.cs"))
	assert.Equal(t, []string{"Qux"}, f.Symbols("/src/Qux.cs"))
}

func TestParseCollapsesDuplicateWarnings(t *testing.T) {
	log := sampleLine + "\n" + sampleLine

	f := Parse(log)

	assert.Equal(t, []string{"Foo.Bar()"}, f.Symbols("/src/Foo.cs"))
}

func TestParseSkipsMalformedMarkerLines(t *testing.T) {
	log := `warning CS1591 but nothing else matches
/src/Foo.cs(5,1): warning CS1591: Missing XML comment for publicly visible type or member 'Foo' [proj]
/src/Bad.cs(7,1): warning CS1591: Missing XML comment with no member token [proj]`

	f := Parse(log)

	require.Equal(t, 1, f.Len())
	assert.Equal(t, []string{"Foo"}, f.Symbols("/src/Foo.cs"))
	assert.Equal(t, 2, f.Skipped())
}

func TestParseLineMissingLocation(t *testing.T) {
	_, _, err := ParseLine("warning CS1591: Missing XML comment for member 'Foo' [proj]")

	var malformed *MalformedLineError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "no location marker", malformed.Reason)
}

func TestParseLineUnterminatedMember(t *testing.T) {
	_, _, err := ParseLine(`/src/A.cs(1,1): warning CS1591: member 'Foo with no close`)

	var malformed *MalformedLineError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "unterminated member token", malformed.Reason)
}

func TestParseLineTrimsPathWhitespace(t *testing.T) {
	path, symbol, err := ParseLine("  /src/Spaced.cs(3,4): warning CS1591: Missing XML comment for publicly visible type or member 'S' [p]")

	require.NoError(t, err)
	assert.Equal(t, "/src/Spaced.cs", path)
	assert.Equal(t, "S", symbol)
}

func TestParseWindowsStylePath(t *testing.T) {
	f := Parse(`C:\work\App\Svc.cs(8,2): warning CS1591: Missing XML comment for publicly visible type or member 'Svc.Run(int)' [App]`)

	require.Equal(t, 1, f.Len())
	assert.Equal(t, []string{`Svc.Run(int)`}, f.Symbols(`C:\work\App\Svc.cs`))
}

func TestParseEmptyInput(t *testing.T) {
	f := Parse("")

	assert.Zero(t, f.Len())
	assert.Zero(t, f.Skipped())
}

func TestFindingsJSONShape(t *testing.T) {
	f := Parse(sampleLine)

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"/src/Foo.cs":["Foo.Bar()"]}`, string(raw))
}
