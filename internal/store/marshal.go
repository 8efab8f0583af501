package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/valsem/internal/ir"
)

// marshalOperands converts operand names to canonical JSON TEXT for storage.
func marshalOperands(operands []string) (string, error) {
	arr := make(ir.Array, len(operands))
	for i, op := range operands {
		arr[i] = ir.String(op)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal operands: %w", err)
	}
	return string(data), nil
}

// unmarshalOperands parses canonical JSON TEXT to operand names.
func unmarshalOperands(data string) ([]string, error) {
	operands := []string{}
	if data == "" || data == "[]" {
		return operands, nil
	}
	if err := json.Unmarshal([]byte(data), &operands); err != nil {
		return nil, fmt.Errorf("unmarshal operands: %w", err)
	}
	return operands, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
