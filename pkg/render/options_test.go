package render

import "testing"

// TestParseCullMode verifies cull mode names round-trip and unknown
// names are rejected.
func TestParseCullMode(t *testing.T) {
	tests := []struct {
		name    string
		want    CullMode
		wantErr bool
	}{
		{"", CullBack, false},
		{"back", CullBack, false},
		{"front", CullFront, false},
		{"none", CullNone, false},
		{"sideways", CullNone, true},
	}

	for _, tt := range tests {
		got, err := ParseCullMode(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCullMode(%q) should fail", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCullMode(%q) failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCullMode(%q) = %v, want %v", tt.name, got, tt.want)
		}
		if tt.name != "" && got.String() != tt.name {
			t.Errorf("CullMode(%v).String() = %q, want %q", got, got.String(), tt.name)
		}
	}
}

// TestParseWinding verifies winding names round-trip and unknown names
// are rejected.
func TestParseWinding(t *testing.T) {
	tests := []struct {
		name    string
		want    Winding
		wantErr bool
	}{
		{"", WindingCounterClockwise, false},
		{"ccw", WindingCounterClockwise, false},
		{"cw", WindingClockwise, false},
		{"widdershins", WindingCounterClockwise, true},
	}

	for _, tt := range tests {
		got, err := ParseWinding(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseWinding(%q) should fail", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWinding(%q) failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWinding(%q) = %v, want %v", tt.name, got, tt.want)
		}
		if tt.name != "" && got.String() != tt.name {
			t.Errorf("Winding(%v).String() = %q, want %q", got, got.String(), tt.name)
		}
	}
}

// TestDefaultOptions verifies the starting configuration uses the full
// deferred pipeline.
func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Rasterization || !opts.Lighting || !opts.DeferredLighting {
		t.Errorf("Default options should enable the full shading path: %+v", opts)
	}
	if opts.Wireframe {
		t.Errorf("Wireframe should start disabled")
	}
	if opts.Cull != CullBack {
		t.Errorf("Expected back-face culling by default, got %v", opts.Cull)
	}
	if opts.Winding != WindingCounterClockwise {
		t.Errorf("Expected counter-clockwise winding by default, got %v", opts.Winding)
	}
	if opts.BloomRadius <= 0 {
		t.Errorf("Expected positive bloom radius, got %d", opts.BloomRadius)
	}
	if opts.Exposure <= 0 {
		t.Errorf("Expected positive exposure, got %f", opts.Exposure)
	}
}
