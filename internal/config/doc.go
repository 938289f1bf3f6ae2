// Package config loads settings for the navcore command.
//
// Settings live in navcore.yaml next to the route configuration:
//
//	addr: ":8080"
//	logLevel: info
//	routes: routes.yaml          # or s3://bucket/key
//	metrics: true
//	ws:
//	  readTimeout: 60s
//	  writeTimeout: 10s
//	  heartbeatInterval: 30s
//	  maxMessageSize: 16384
//
// After the file is read, an optional .env file is loaded and the
// NAVCORE_ADDR, NAVCORE_LOG_LEVEL and NAVCORE_ROUTES variables override
// the matching fields.
package config
