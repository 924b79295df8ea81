package hcl_adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSemverFunc(t *testing.T) {
	tests := map[string]string{
		"4.9.3":      "4.9.3",
		"v4.9.3":     "4.9.3",
		"4.9":        "4.9.0",
		"5.0.0-rc.1": "5.0.0-rc.1",
	}
	for in, want := range tests {
		got, err := SemverFunc.Call([]cty.Value{cty.StringVal(in)})
		require.NoError(t, err, in)
		assert.Equal(t, want, got.AsString(), in)
	}

	_, err := SemverFunc.Call([]cty.Value{cty.StringVal("not-a-version")})
	assert.ErrorContains(t, err, "invalid semantic version")
}

func TestFunctions(t *testing.T) {
	fns := functions()
	for _, name := range []string{"format", "join", "lower", "upper", "replace", "trimprefix", "trimsuffix", "semver"} {
		assert.Contains(t, fns, name)
	}

	got, err := fns["trimprefix"].Call([]cty.Value{cty.StringVal("openzeppelin-contracts-4.9.3"), cty.StringVal("openzeppelin-")})
	require.NoError(t, err)
	assert.Equal(t, "contracts-4.9.3", got.AsString())
}
