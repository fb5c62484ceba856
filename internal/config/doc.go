// Package config loads the optional HCL settings file. Every setting is
// optional; a nil field means the file did not set it and the caller keeps
// its own default or flag value.
//
// Expressions in the file can read environment variables through the
// `env` object, e.g. `decimal_places = env.URSHEET_DP`.
package config
