package golden

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdataDir = "../../testdata"

func TestLoad_FindsEveryFixturePair(t *testing.T) {
	cases, err := Load(testdataDir)
	require.NoError(t, err)
	assert.True(t, len(cases) >= 6, "expected at least the six end-to-end fixtures")
}

func TestRun_AllFixturesPass(t *testing.T) {
	cases, err := Load(testdataDir)
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	for _, c := range cases {
		r := Run(c)
		assert.True(t, r.Passed(), "fixture %q: want %q, got %q", c.Name, c.Expected, r.Stdout)
		assert.Equal(t, 0, r.ExitCode, "fixture %q should exit 0", c.Name)
	}
}

func TestExecute_StaticFaultExitsSixtyFour(t *testing.T) {
	var out bytes.Buffer
	code := Execute("return 1;", &out)
	assert.Equal(t, 64, code)
}

func TestExecute_RuntimeFaultExitsSeventy(t *testing.T) {
	var out bytes.Buffer
	code := Execute(`print "x" + 1;`, &out)
	assert.Equal(t, 70, code)
}

func TestExecute_SuccessExitsZero(t *testing.T) {
	var out bytes.Buffer
	code := Execute("print 1;", &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "1\n", out.String())
}
