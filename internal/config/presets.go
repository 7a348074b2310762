package config

import (
	"math"
	"sort"

	"github.com/san-kum/orbitsim/internal/physics"
)

func au(x, y float64) *Vec { return &Vec{x, y} }

func sun() BodyConfig {
	return BodyConfig{Name: "sun", PositionAU: au(0, 0), Mass: physics.SunMass, Radius: 30, Color: "yellow", Anchor: true}
}

func mercury() BodyConfig {
	return BodyConfig{Name: "mercury", PositionAU: au(0.387, 0), Velocity: Vec{0, -47.4e3}, Mass: 3.30e23, Radius: 8, Color: "dark_grey"}
}

func venus() BodyConfig {
	return BodyConfig{Name: "venus", PositionAU: au(0.723, 0), Velocity: Vec{0, -35.02e3}, Mass: 4.8685e24, Radius: 14, Color: "white"}
}

func earth() BodyConfig {
	return BodyConfig{Name: "earth", PositionAU: au(-1, 0), Velocity: Vec{0, 29.783e3}, Mass: 5.9742e24, Radius: 16, Color: "blue"}
}

func mars() BodyConfig {
	return BodyConfig{Name: "mars", PositionAU: au(-1.524, 0), Velocity: Vec{0, 24.077e3}, Mass: 6.39e23, Radius: 12, Color: "red"}
}

func jupiter() BodyConfig {
	return BodyConfig{Name: "jupiter", PositionAU: au(5.203, 0), Velocity: Vec{0, -13.07e3}, Mass: 1.8982e27, Radius: 22, Color: "orange"}
}

func binary() []BodyConfig {
	// equal stars one AU apart, each circling the barycentre
	v := math.Sqrt(physics.G * physics.SunMass / (2 * physics.AU))
	vp := math.Sqrt(physics.G * 2 * physics.SunMass / (3 * physics.AU))
	return []BodyConfig{
		{Name: "alpha", PositionAU: au(-0.5, 0), Velocity: Vec{0, -v}, Mass: physics.SunMass, Radius: 24, Color: "yellow", Anchor: true},
		{Name: "beta", PositionAU: au(0.5, 0), Velocity: Vec{0, v}, Mass: physics.SunMass, Radius: 20, Color: "#ff8c42"},
		{Name: "wanderer", PositionAU: au(0, 3), Velocity: Vec{vp, 0}, Mass: 5.9742e24, Radius: 8, Color: "cyan"},
	}
}

func preset(name string, view ViewConfig, bodies ...BodyConfig) *Config {
	return &Config{Name: name, Physics: DefaultPhysics(), View: view, Bodies: bodies}
}

func wideView(pixelsPerAU float64) ViewConfig {
	v := DefaultView()
	v.PixelsPerAU = pixelsPerAU
	return v
}

var Presets = map[string]*Config{
	"inner":  preset("inner", DefaultView(), sun(), earth(), mars(), mercury(), venus()),
	"earth":  preset("earth", DefaultView(), sun(), earth()),
	"solar":  preset("solar", wideView(70), sun(), earth(), mars(), mercury(), venus(), jupiter()),
	"binary": preset("binary", wideView(100), binary()...),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
