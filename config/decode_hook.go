package config

import (
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// decodeOctalHook teaches mapstructure to parse strings destined for an
// Octal field as base 8, the way decode_hook.go in the pack's gcsfuse
// config teaches it to parse its own Octal file-mode type.
func decodeOctalHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(Octal(0)) {
			return data, nil
		}
		s := data.(string)
		v, err := strconv.ParseUint(s, 8, 32)
		if err != nil {
			return nil, err
		}
		return Octal(v), nil
	}
}
