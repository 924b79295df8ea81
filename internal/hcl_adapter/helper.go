package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional expression fields with
// zero-width placeholder expressions, so a nil check is insufficient.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// evalString evaluates an optional expression to a string. An omitted
// expression yields "".
func evalString(expr hcl.Expression, evalCtx *hcl.EvalContext, attr string) (string, error) {
	if !isExprDefined(expr) {
		return "", nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", nil
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: %s must be a string: %w", expr.Range(), attr, err)
	}
	if !str.IsKnown() {
		return "", fmt.Errorf("%s: %s is not known at load time", expr.Range(), attr)
	}
	return str.AsString(), nil
}
