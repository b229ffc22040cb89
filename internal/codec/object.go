package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Opaque objects are stored as deterministic CBOR. Nothing guarantees a
// value written by one version of a type can be read by another.
var (
	objectEncMode cbor.EncMode
	objectDecMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	objectEncMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	objectDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

func EncodeObject(v any) ([]byte, error) {
	out, err := objectEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode object: %w", err)
	}
	return out, nil
}

func DecodeObject(data []byte, v any) error {
	if err := objectDecMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	return nil
}
