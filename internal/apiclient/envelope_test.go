package apiclient

import (
	"encoding/json"
	"net/http"
	"testing"
)

func decodeJSONBody(t *testing.T, r *http.Request, out any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
}

func TestUnwrapList(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain array", `[1,2,3]`, `[1,2,3]`, false},
		{"values envelope", `{"$values":[1,2]}`, `[1,2]`, false},
		{"empty input", ``, ``, false},
		{"object without values", `{"items":[1]}`, ``, true},
		{"not json", `garbage`, ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unwrapList([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unwrapList failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("unwrapList = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeListIntoSlice(t *testing.T) {
	var ints []int
	if err := decodeList([]byte(`{"$values":[5,6]}`), &ints); err != nil {
		t.Fatalf("decodeList failed: %v", err)
	}
	if len(ints) != 2 || ints[0] != 5 {
		t.Errorf("unexpected decode result: %v", ints)
	}

	var empty []int
	if err := decodeList([]byte(``), &empty); err != nil {
		t.Fatalf("decodeList on empty failed: %v", err)
	}
	if empty != nil {
		t.Errorf("expected nil slice for empty body, got %v", empty)
	}
}
