package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRadiusBands_Ascending(t *testing.T) {
	bands := RadiusBands()
	if len(bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(bands))
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Meters() <= bands[i-1].Meters() {
			t.Errorf("band %s not above %s", bands[i], bands[i-1])
		}
	}
	if MaxRadiusBand() != Radius7Km {
		t.Errorf("expected 7 km max, got %s", MaxRadiusBand())
	}
}

func TestRadiusBands_ReturnsCopy(t *testing.T) {
	bands := RadiusBands()
	bands[0] = Radius7Km
	if RadiusBands()[0] != Radius1Km {
		t.Fatal("mutating the returned slice changed the band set")
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		name   string
		meters float64
		want   RadiusBand
		wantOK bool
	}{
		{"zero", 0, Radius1Km, true},
		{"inside first", 500, Radius1Km, true},
		{"first boundary", 1000, Radius1Km, true},
		{"just past first", 1000.5, Radius3Km, true},
		{"third boundary", 5000, Radius5Km, true},
		{"last boundary", 7000, Radius7Km, true},
		{"beyond last", 7000.1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BandFor(tt.meters)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("BandFor(%v) = %v, %v; want %v, %v", tt.meters, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseRadiusBand(t *testing.T) {
	tests := []struct {
		in      string
		want    RadiusBand
		wantErr bool
	}{
		{"1 km", Radius1Km, false},
		{"3km", Radius3Km, false},
		{" 5 KM ", Radius5Km, false},
		{"7000", Radius7Km, false},
		{"3000m", Radius3Km, false},
		{"2 km", 0, true},
		{"", 0, true},
		{"far", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRadiusBand(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRadiusBand(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRadius) {
				t.Errorf("expected ErrInvalidRadius, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRadiusBand_Label(t *testing.T) {
	if Radius3Km.Label() != "3 km" {
		t.Errorf("expected \"3 km\", got %q", Radius3Km.Label())
	}
	if RadiusBand(0).Label() != "" {
		t.Errorf("expected empty label for invalid band, got %q", RadiusBand(0).Label())
	}
}

func TestRadiusBand_JSON(t *testing.T) {
	body, err := json.Marshal(RadiusGroup{Band: Radius5Km, Merchants: []Merchant{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"radius":"5 km","merchants":[]}` {
		t.Errorf("unexpected json: %s", body)
	}

	var req struct {
		Radius RadiusBand `json:"radius"`
	}
	if err := json.Unmarshal([]byte(`{"radius":"1km"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Radius != Radius1Km {
		t.Errorf("expected 1 km, got %v", req.Radius)
	}

	if err := json.Unmarshal([]byte(`{"radius":"4 km"}`), &req); err == nil {
		t.Error("expected error for unknown band")
	}
}
