package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global pipeline configuration
var Config PipelineConfig

// Defaults for settings the file leaves out.
const (
	DefaultHourMin               = 6
	DefaultHourMax               = 9
	DefaultDirection             = 1
	DefaultSequenceJumpThreshold = 5
	DefaultServiceDayPattern     = `^([^_%]+)`
	DefaultRoutePattern          = `系統(.*)$`
)

// LoadPipelineConfig loads and validates the pipeline configuration. When
// path is empty a list of conventional locations is tried.
func LoadPipelineConfig(path string) error {
	paths := []string{path}
	if path == "" {
		paths = []string{"config.yml", "config/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	Config = cfg
	return nil
}

// defaultConfig seeds the configuration before the file is decoded on top
// of it. Only keys present in the file override, so an explicit zero (for
// example hourMin: 0 or direction: 0) is kept as configured.
func defaultConfig() PipelineConfig {
	return PipelineConfig{
		Static: StaticConfig{
			ServiceDayPattern: DefaultServiceDayPattern,
			RoutePattern:      DefaultRoutePattern,
		},
		Window: WindowConfig{
			HourMin: DefaultHourMin,
			HourMax: DefaultHourMax,
		},
		Selection: SelectionConfig{
			Direction: DefaultDirection,
		},
		Segmentation: SegmentationConfig{
			SequenceJumpThreshold: DefaultSequenceJumpThreshold,
		},
		Output: OutputConfig{
			TimetableCSV: "timetable.csv",
			HeadwayCSV:   "headway_stats.csv",
		},
	}
}
