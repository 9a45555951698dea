package scripts

import (
	"fmt"

	"github.com/reusee/bridges/states"
	"go.starlark.net/starlark"
)

// stateBuiltins binds set, get, get_all and fields to store.
func stateBuiltins(store *states.Store) starlark.StringDict {
	return starlark.StringDict{

		"set": starlark.NewBuiltin("set", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name string
			var value starlark.Value
			if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "field", &name, "value", &value); err != nil {
				return nil, err
			}
			f, err := number(fn.Name(), "value", value)
			if err != nil {
				return nil, err
			}
			field, err := states.ParseField(name)
			if err != nil {
				return nil, err
			}
			return starlark.Float(store.SetField(field, f)), nil
		}),

		"get": starlark.NewBuiltin("get", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name string
			if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "field", &name); err != nil {
				return nil, err
			}
			v, err := store.Get(name)
			if err != nil {
				return nil, err
			}
			return starlark.Float(v), nil
		}),

		"get_all": starlark.NewBuiltin("get_all", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
				return nil, err
			}
			return toStarlarkValue(store.GetAll()), nil
		}),

		"fields": toStarlarkValue(states.FieldNames()),
	}
}

// number accepts int or float arguments.
func number(fnName, param string, v starlark.Value) (float64, error) {
	f, ok := starlark.AsFloat(v)
	if !ok {
		return 0, fmt.Errorf("%s: for parameter %s: got %s, want float or int", fnName, param, v.Type())
	}
	return f, nil
}
