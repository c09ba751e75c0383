package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestInputParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        Input
		want      Fields
		wantField string
	}{
		{
			name: "valid",
			in:   Input{Name: " Ada ", Speed: "12", Color: "Blue"},
			want: Fields{Name: "Ada", Speed: 12, Color: ColorBlue},
		},
		{
			name: "color case-insensitive",
			in:   Input{Name: "Ada", Speed: "1.5", Color: "rainbow"},
			want: Fields{Name: "Ada", Speed: 1.5, Color: ColorRainbow},
		},
		{name: "empty color", in: Input{Name: "Ada", Speed: "12"}, wantField: "color"},
		{name: "unknown color", in: Input{Name: "Ada", Speed: "12", Color: "Teal"}, wantField: "color"},
		{name: "empty name", in: Input{Name: "  ", Speed: "12", Color: "Red"}, wantField: "name"},
		{name: "empty speed", in: Input{Name: "Ada", Color: "Red"}, wantField: "speed"},
		{name: "non numeric speed", in: Input{Name: "Ada", Speed: "fast", Color: "Red"}, wantField: "speed"},
		{name: "NaN speed", in: Input{Name: "Ada", Speed: "NaN", Color: "Red"}, wantField: "speed"},
		{name: "infinite speed", in: Input{Name: "Ada", Speed: "Inf", Color: "Red"}, wantField: "speed"},
		{name: "negative infinite speed", in: Input{Name: "Ada", Speed: "-inf", Color: "Red"}, wantField: "speed"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.in.Parse()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Fatalf("got %+v, want %+v", got, tt.want)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, ve.Field)
			}
		})
	}
}

func TestFieldsValidate(t *testing.T) {
	t.Parallel()

	if err := (Fields{Name: "Ada", Color: ColorPink}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Fields{Name: "Ada"}).Validate(); err == nil {
		t.Fatalf("expected error for empty color")
	}
	if err := (Fields{Name: "Ada", Color: "Teal"}).Validate(); err == nil {
		t.Fatalf("expected error for color outside palette")
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		var ve *ValidationError
		err := (Fields{Name: "Ada", Speed: v, Color: ColorPink}).Validate()
		if !errors.As(err, &ve) || ve.Field != "speed" {
			t.Fatalf("expected speed ValidationError for %v, got %v", v, err)
		}
	}
}

func TestStampedUsesUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", 3600)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, loc)
	f := Fields{Name: "Ada"}.Stamped(now)
	if f.CreatedAt.Location() != time.UTC || !f.CreatedAt.Equal(now) {
		t.Fatalf("unexpected stamp: %v", f.CreatedAt)
	}
}

func TestFormatSpeed(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{12: "12", 1200: "1200", 1.25: "1.25", 0: "0"}
	for in, want := range cases {
		if got := FormatSpeed(in); got != want {
			t.Fatalf("FormatSpeed(%v) = %q, want %q", in, got, want)
		}
	}
}
