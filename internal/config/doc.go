// Package config provides configuration management for image-downloader.
//
// This package handles:
//   - Loading settings from yaml/json/toml files and IMGDL_* environment variables
//   - Default configuration values
//   - Validation and conversion to the proxy model
//   - Building the zerolog logger
//
// # Default Settings
//
// Use DefaultSettings() to get the defaults:
//
//	settings := config.DefaultSettings()
//	// 50 concurrent downloads, 20s per request, 90s per batch
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/imgdl.yaml")
//
// A minimal file:
//
//	output_dir: ./images
//	concurrency: 20
//	timeout: 15s
//	proxy_type: socks5
//	proxy_address: 127.0.0.1:1080
//
// # Logging
//
//	logger := config.NewLogger(settings.LogLevel, settings.LogFormat, os.Stderr)
package config
