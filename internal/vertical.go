package internal

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Vertical names
const (
	VerticalSalud  = "salud"
	VerticalComida = "comida"
)

// VerticalConfig holds the constants the pipeline needs for one business vertical.
// The aggregator owns a copy; nothing in the pipeline reads package-level state.
type VerticalConfig struct {
	Name               string   `yaml:"name"`
	Intents            []string `yaml:"intents"`
	Palette            []string `yaml:"palette"`
	EscalationKeywords []string `yaml:"escalation_keywords"`
	NoIntent           string   `yaml:"no_intent"`
	Greeting           string   `yaml:"greeting"`
	TopQueries         int      `yaml:"top_queries"`
	TopFlows           int      `yaml:"top_flows"`
	FlowSteps          int      `yaml:"flow_steps"`
	TopProducts        int      `yaml:"top_products"`
	// Upper bounds (exclusive) for averaged timings, in seconds.
	MaxResponseSeconds float64  `yaml:"max_response_seconds"`
	MaxDurationSeconds float64  `yaml:"max_duration_seconds"`
	DayLabelLayout     string   `yaml:"day_label_layout"`
	DateLayouts        []string `yaml:"date_layouts"`
	TimeZone           string   `yaml:"time_zone"`

	location *time.Location
}

var defaultPalette = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff8042", "#0088fe", "#00c49f", "#ffbb28"}

// Day/month first, then the US locale string the dashboard produced.
var defaultDateLayouts = []string{
	"2/1/2006 15:04:05",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"2/1/2006 15:04",
	"2/1/2006",
}

// DefaultVerticalConfig returns the built-in configuration for a vertical.
func DefaultVerticalConfig(name string) (*VerticalConfig, error) {
	cfg := &VerticalConfig{
		Name:               name,
		Palette:            append([]string(nil), defaultPalette...),
		NoIntent:           "SIN_INTENCION",
		Greeting:           "SALUDO",
		TopQueries:         15,
		TopFlows:           3,
		FlowSteps:          3,
		TopProducts:        10,
		MaxResponseSeconds: 300,
		MaxDurationSeconds: 7200,
		DayLabelLayout:     "02/01/2006",
		DateLayouts:        append([]string(nil), defaultDateLayouts...),
		TimeZone:           "UTC",
		location:           time.UTC,
	}

	switch name {
	case VerticalSalud:
		cfg.Intents = []string{
			"AGENDAR_CITA",
			"CANCELAR_CITA",
			"REPROGRAMAR_CITA",
			"CONSULTAR_DISPONIBILIDAD",
			"CONSULTAR_PRECIOS",
			"INFORMACION_SERVICIOS",
			"UBICACION",
			"HABLAR_CON_HUMANO",
		}
		cfg.EscalationKeywords = []string{"humano", "agente", "persona"}
	case VerticalComida:
		cfg.Intents = []string{
			"HACER_PEDIDO",
			"CONSULTAR_MENU",
			"ESTADO_PEDIDO",
			"CONSULTAR_PRECIOS",
			"SERVICIO_DOMICILIO",
			"HORARIOS",
			"UBICACION",
			"QUEJA",
		}
		cfg.EscalationKeywords = []string{"humano", "asesor"}
	default:
		return nil, fmt.Errorf("unknown vertical: %s (supported: %s, %s)", name, VerticalSalud, VerticalComida)
	}

	return cfg, nil
}

// Location returns the time zone used for day grouping and hour-of-day buckets
func (c *VerticalConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// SetTimeZone resolves and stores the named time zone
func (c *VerticalConfig) SetTimeZone(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	c.TimeZone = name
	c.location = loc
	return nil
}

// Clone returns a deep copy so callers can tweak settings without sharing slices
func (c *VerticalConfig) Clone() *VerticalConfig {
	cp := *c
	cp.Intents = append([]string(nil), c.Intents...)
	cp.Palette = append([]string(nil), c.Palette...)
	cp.EscalationKeywords = append([]string(nil), c.EscalationKeywords...)
	cp.DateLayouts = append([]string(nil), c.DateLayouts...)
	return &cp
}

// Validate checks that the configuration can drive the pipeline
func (c *VerticalConfig) Validate() error {
	switch {
	case len(c.Palette) == 0:
		return fmt.Errorf("vertical %s: palette must not be empty", c.Name)
	case c.TopQueries <= 0 || c.TopFlows <= 0 || c.FlowSteps <= 0:
		return fmt.Errorf("vertical %s: top_queries, top_flows and flow_steps must be positive", c.Name)
	case c.MaxResponseSeconds <= 0 || c.MaxDurationSeconds <= 0:
		return fmt.Errorf("vertical %s: timing ceilings must be positive", c.Name)
	case c.DayLabelLayout == "":
		return fmt.Errorf("vertical %s: day_label_layout is required", c.Name)
	}
	return nil
}

// verticalOverrides is the on-disk YAML layout: a map keyed by vertical name
type verticalOverrides struct {
	Verticals map[string]yaml.Node `yaml:"verticals"`
}

// LoadVerticalConfigs returns the built-in configs, overlaid with the YAML file at path
// when path is non-empty. Fields absent from the file keep their defaults.
func LoadVerticalConfigs(path, timeZone string) (map[string]*VerticalConfig, error) {
	configs := make(map[string]*VerticalConfig)
	for _, name := range []string{VerticalSalud, VerticalComida} {
		cfg, err := DefaultVerticalConfig(name)
		if err != nil {
			return nil, err
		}
		configs[name] = cfg
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &StorageError{Path: path, Op: "read", Err: err}
		}
		var overrides verticalOverrides
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("failed to parse vertical config %s: %w", path, err)
		}

		names := make([]string, 0, len(overrides.Verticals))
		for name := range overrides.Verticals {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			cfg, ok := configs[name]
			if !ok {
				return nil, fmt.Errorf("vertical config %s: unknown vertical %q", path, name)
			}
			node := overrides.Verticals[name]
			if err := node.Decode(cfg); err != nil {
				return nil, fmt.Errorf("vertical config %s: %s: %w", path, name, err)
			}
			cfg.Name = name
		}
	}

	for _, cfg := range configs {
		zone := cfg.TimeZone
		if timeZone != "" {
			zone = timeZone
		}
		if err := cfg.SetTimeZone(zone); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return configs, nil
}
