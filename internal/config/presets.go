package config

import "sort"

// Presets are named run windows. "standard" matches the scan window.
var Presets = map[string]*Config{
	"quick":    {Method: "rk4", TimeEnd: 10.0, TimeStep: 0.1},
	"standard": {Method: "rk4", TimeEnd: 100.0, TimeStep: 0.1},
	"fine":     {Method: "rk4", TimeEnd: 100.0, TimeStep: 0.01},
	"long":     {Method: "rk4", TimeEnd: 1000.0, TimeStep: 0.1},
	"euler":    {Method: "euler", TimeEnd: 100.0, TimeStep: 0.01},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithPreset copies the window of the named preset onto c.
func (c *Config) WithPreset(name string) bool {
	p := GetPreset(name)
	if p == nil {
		return false
	}
	c.Method = p.Method
	c.TimeEnd = p.TimeEnd
	c.TimeStep = p.TimeStep
	return true
}
