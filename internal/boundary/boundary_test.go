package boundary

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigParsing(t *testing.T) {
	cfg := Config{
		"tolerance":  "0.01",
		"iterations": "4",
		"weld":       "true",
		"bad_float":  "abc",
		"bad_int":    "1.5",
		"bad_bool":   "maybe",
	}

	tests := []struct {
		name    string
		run     func() error
		wantKey string
	}{
		{
			name: "float ok",
			run: func() error {
				f, err := cfg.MandatoryFloat("tolerance")
				if err == nil && f != 0.01 {
					t.Errorf("tolerance = %v, want 0.01", f)
				}
				return err
			},
		},
		{
			name: "int ok",
			run: func() error {
				n, err := cfg.MandatoryInt("iterations")
				if err == nil && n != 4 {
					t.Errorf("iterations = %v, want 4", n)
				}
				return err
			},
		},
		{
			name: "bool ok",
			run: func() error {
				b, err := cfg.Bool("weld", false)
				if err == nil && !b {
					t.Error("weld = false, want true")
				}
				return err
			},
		},
		{
			name: "bool default",
			run: func() error {
				b, err := cfg.Bool("absent", true)
				if err == nil && !b {
					t.Error("absent bool = false, want default true")
				}
				return err
			},
		},
		{name: "malformed float", run: func() error { _, err := cfg.MandatoryFloat("bad_float"); return err }, wantKey: "bad_float"},
		{name: "malformed int", run: func() error { _, err := cfg.MandatoryInt("bad_int"); return err }, wantKey: "bad_int"},
		{name: "malformed bool", run: func() error { _, err := cfg.Bool("bad_bool", false); return err }, wantKey: "bad_bool"},
		{name: "missing mandatory", run: func() error { _, err := cfg.Mandatory("absent"); return err }, wantKey: "absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var be *Error
			if !errors.As(err, &be) {
				t.Fatalf("error %v is not a boundary error", err)
			}
			if be.Kind != KindValidation {
				t.Errorf("kind = %v, want validation", be.Kind)
			}
			if be.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", be.Key, tt.wantKey)
			}
			if !strings.Contains(be.Msg, tt.wantKey) {
				t.Errorf("message %q does not name key %q", be.Msg, tt.wantKey)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(Decodef("x")); got != KindDecode {
		t.Errorf("KindOf(decode) = %v", got)
	}
	if got := KindOf(errors.New("plain")); got != KindExecution {
		t.Errorf("KindOf(plain) = %v, want execution", got)
	}
}
