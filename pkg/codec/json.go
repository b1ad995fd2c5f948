package codec

import (
	"encoding/json"
	"fmt"
)

// JSON is the default codec. It stores values as compact JSON, which keeps
// cache entries inspectable with redis-cli at the cost of some size.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string {
	return "json"
}
