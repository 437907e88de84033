package registry

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var (
	addressType  = reflect.TypeOf(domain.Address(""))
	stateType    = reflect.TypeOf(domain.CommodityState(0))
	ledgerType   = reflect.TypeOf(domain.Ledger(""))
	roleType     = reflect.TypeOf(domain.Role(""))
	registryType = reflect.TypeOf(domain.Registry(""))
)

// Decode fills out from loosely typed args. Addresses are normalized and the domain
// enums accept their names. Unknown keys are rejected.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  domainHook,
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

func domainHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()

	switch to {
	case addressType:
		return domain.Address(s).Normalize(), nil
	case stateType:
		st, ok := domain.ParseState(strings.TrimSpace(s))
		if !ok {
			return nil, fmt.Errorf("unknown state %q", s)
		}
		return st, nil
	case ledgerType:
		l, ok := domain.ParseLedger(s)
		if !ok {
			return nil, fmt.Errorf("unknown ledger %q", s)
		}
		return l, nil
	case roleType:
		r, ok := domain.ParseRole(s)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", s)
		}
		return r, nil
	case registryType:
		r, ok := domain.ParseRegistry(s)
		if !ok {
			return nil, fmt.Errorf("unknown registry %q", s)
		}
		return r, nil
	}
	return data, nil
}

// paramsOf describes the fields of an argument struct. Fields tagged
// `optional:"true"` are not required; `desc` holds the description.
func paramsOf(args any) []Param {
	t := reflect.TypeOf(args)
	var out []Param
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			continue
		}
		out = append(out, Param{
			Name:        name,
			Type:        paramType(f.Type),
			Description: f.Tag.Get("desc"),
			Required:    f.Tag.Get("optional") != "true",
		})
	}
	return out
}

func paramType(t reflect.Type) string {
	if t == stateType {
		return "string"
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	}
	return "string"
}
