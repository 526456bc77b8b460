// Package config defines the tool options of thinkscript-sync and provides
// helpers to load, validate and save them in YAML format.
//
// The options only describe how the tool runs (which settings files to read,
// where to download scripts, logging). The trading application settings
// themselves live in key=value files handled by the settings package.
package config
