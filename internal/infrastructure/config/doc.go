// Package config handles loading and validating sensora configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (SENSORA_*)
//   - Validation of required fields
//   - Default value handling
//
// The defaults describe the stock sensor stack: a query server on
// ws://localhost:8765, an MQTT-over-WebSocket broker on ws://localhost:9001,
// the sensors/data topic and the four sensors/power/* command topics.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Query.URL)
package config
