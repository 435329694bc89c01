// Package config loads clinic deployment settings.
//
// Settings come from an optional receptionist.yaml file (working directory or
// ./config) overlaid with RECEPTIONIST_* environment variables, so different
// clinics can change their slot grid, hours and calendar without code
// changes. Values that configure the process itself (listen addresses,
// transports) stay on the CLI flags in cmd.
package config
