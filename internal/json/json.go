// Package json wraps the sonic JSON implementation behind the familiar
// Marshal surface so the rest of the module never imports the codec
// directly. Response decoding goes through gjson and needs no counterpart
// here.
package json

import "github.com/bytedance/sonic"

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}
