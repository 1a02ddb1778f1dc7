// Package config handles pipeline configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Route, vehicle and station selections live here rather than in code so a
// run can be re-pointed at another day or corridor without edits.
package config
