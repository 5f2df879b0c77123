// Package config provides configuration structures and utilities for verscan.
// It defines the main configuration options for release enumeration, asset
// probing, and report generation preferences.
package config
