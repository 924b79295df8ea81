package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/bindforge/internal/ctxlog"
)

// ValidateRegistry checks that every action kind can be decoded: its input
// is a pointer to a struct whose exported fields all carry an `hcl` tag.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range r.Kinds() {
		action := r.actions[kind]
		if action.Build == nil {
			errs = append(errs, fmt.Sprintf("action '%s': no Build function", kind))
		}
		if action.NewInput == nil {
			errs = append(errs, fmt.Sprintf("action '%s': no NewInput function", kind))
			continue
		}

		input := reflect.TypeOf(action.NewInput())
		if input == nil || input.Kind() != reflect.Pointer || input.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("action '%s': NewInput must return a pointer to a struct, got %v", kind, input))
			continue
		}

		st := input.Elem()
		for i := 0; i < st.NumField(); i++ {
			field := st.Field(i)
			if !field.IsExported() {
				continue
			}
			tag := strings.Split(field.Tag.Get("hcl"), ",")[0]
			if tag == "" {
				errs = append(errs, fmt.Sprintf("action '%s': field '%s' has no hcl tag", kind, field.Name))
			}
		}
		logger.Debug("Validated action kind.", "kind", kind, "fields", st.NumField())
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
