package store

import "testing"

func TestKeys(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		item   string
		index  string
		seq    string
	}{
		{name: "default", prefix: "", item: "items:item:42", index: "items:ids", seq: "items:seq"},
		{name: "custom", prefix: "test", item: "test:item:42", index: "test:ids", seq: "test:seq"},
		{name: "trimmed", prefix: ":test:", item: "test:item:42", index: "test:ids", seq: "test:seq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := newKeys(tt.prefix)
			if got := k.item(42); got != tt.item {
				t.Errorf("item() = %s, want %s", got, tt.item)
			}
			if got := k.index(); got != tt.index {
				t.Errorf("index() = %s, want %s", got, tt.index)
			}
			if got := k.sequence(); got != tt.seq {
				t.Errorf("sequence() = %s, want %s", got, tt.seq)
			}
		})
	}
}
