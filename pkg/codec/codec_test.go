package codec

import (
	"testing"
)

type testValue struct {
	ID     int               `json:"id" msgpack:"id"`
	Name   string            `json:"name" msgpack:"name"`
	Tags   []string          `json:"tags" msgpack:"tags"`
	Labels map[string]string `json:"labels" msgpack:"labels"`
}

func TestCodecRoundTrip(t *testing.T) {
	value := testValue{
		ID:     42,
		Name:   "widget",
		Tags:   []string{"a", "b"},
		Labels: map[string]string{"env": "test"},
	}

	for _, c := range []Codec{JSON, Msgpack} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(value)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if len(data) == 0 {
				t.Fatal("Marshal returned empty data")
			}

			var decoded testValue
			if err := c.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			if decoded.ID != value.ID {
				t.Errorf("ID = %d, want %d", decoded.ID, value.ID)
			}
			if decoded.Name != value.Name {
				t.Errorf("Name = %s, want %s", decoded.Name, value.Name)
			}
			if len(decoded.Tags) != 2 || decoded.Tags[0] != "a" {
				t.Errorf("Tags = %v, want %v", decoded.Tags, value.Tags)
			}
			if decoded.Labels["env"] != "test" {
				t.Errorf("Labels = %v, want %v", decoded.Labels, value.Labels)
			}
		})
	}
}

func TestCodecMarshalUnsupportedType(t *testing.T) {
	// Channels cannot be serialized by either codec
	for _, c := range []Codec{JSON, Msgpack} {
		t.Run(c.Name(), func(t *testing.T) {
			if _, err := c.Marshal(make(chan int)); err == nil {
				t.Error("Expected error marshaling a channel, got nil")
			}
		})
	}
}

func TestCodecUnmarshalCorruptData(t *testing.T) {
	for _, c := range []Codec{JSON, Msgpack} {
		t.Run(c.Name(), func(t *testing.T) {
			var out testValue
			if err := c.Unmarshal([]byte("\x00not-valid"), &out); err == nil {
				t.Error("Expected error unmarshaling corrupt data, got nil")
			}
		})
	}
}

func TestCodecNames(t *testing.T) {
	if JSON.Name() != "json" {
		t.Errorf("JSON.Name() = %s, want json", JSON.Name())
	}
	if Msgpack.Name() != "msgpack" {
		t.Errorf("Msgpack.Name() = %s, want msgpack", Msgpack.Name())
	}
}
