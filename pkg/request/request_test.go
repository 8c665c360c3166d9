package request_test

import (
	"errors"
	"math/rand"
	"testing"

	"lbsim/pkg/protocol"
	"lbsim/pkg/request"
)

func TestValidateIP(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"192.168.1.100", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"a.b.c.d", false},
		{"1..2.3", false},
		{"-1.2.3.4", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := request.ValidateIP(tt.in)
			if tt.valid && err != nil {
				t.Errorf("ValidateIP(%q) = %v, want nil", tt.in, err)
			}
			if !tt.valid {
				var addrErr *protocol.InvalidAddressError
				if !errors.As(err, &addrErr) {
					t.Errorf("ValidateIP(%q) = %v, want *InvalidAddressError", tt.in, err)
				}
			}
		})
	}
}

func TestNew(t *testing.T) {
	r, err := request.New("10.0.0.1", "10.0.0.2", 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Source != "10.0.0.1" || r.Destination != "10.0.0.2" || r.Duration != 3 {
		t.Errorf("unexpected request %+v", r)
	}

	if _, err := request.New("10.0.0.1", "10.0.0.2", 0); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := request.New("bogus", "10.0.0.2", 1); err == nil {
		t.Error("expected error for malformed source")
	}
}

func TestGeneratorNext_WithinContract(t *testing.T) {
	g := request.NewGenerator(rand.New(rand.NewSource(7)))

	for i := 0; i < 1000; i++ {
		r := g.Next()
		if err := request.ValidateIP(r.Source); err != nil {
			t.Fatalf("source %q: %v", r.Source, err)
		}
		if err := request.ValidateIP(r.Destination); err != nil {
			t.Fatalf("destination %q: %v", r.Destination, err)
		}
		if r.Duration < protocol.MinDuration || r.Duration > protocol.MaxDuration {
			t.Fatalf("duration %d outside [%d,%d]", r.Duration, protocol.MinDuration, protocol.MaxDuration)
		}
	}
}

func TestGeneratorNext_Deterministic(t *testing.T) {
	a := request.NewGenerator(rand.New(rand.NewSource(42)))
	b := request.NewGenerator(rand.New(rand.NewSource(42)))

	for i := 0; i < 50; i++ {
		ra, rb := a.Next(), b.Next()
		if ra != rb {
			t.Fatalf("request %d differs: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestGeneratorDurationRange(t *testing.T) {
	g := request.NewGenerator(rand.New(rand.NewSource(1)), request.WithDurationRange(4, 4))
	for i := 0; i < 20; i++ {
		if d := g.Next().Duration; d != 4 {
			t.Fatalf("duration = %d, want 4", d)
		}
	}

	// Inverted range keeps defaults.
	g = request.NewGenerator(rand.New(rand.NewSource(1)), request.WithDurationRange(9, 2))
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		seen[g.Next().Duration] = true
	}
	if len(seen) != protocol.MaxDuration-protocol.MinDuration+1 {
		t.Errorf("expected all %d durations, saw %d", protocol.MaxDuration-protocol.MinDuration+1, len(seen))
	}
}
