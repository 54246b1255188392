package mqtt

import "fmt"

// TopicPrefixSensors is the base for all sensor topics.
const TopicPrefixSensors = "sensors"

// Topics provides builders for the sensor stack's MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.SensorData()        // "sensors/data"
//	topics.SensorPower("ldr")  // "sensors/power/ldr"
type Topics struct{}

// SensorData returns the topic carrying realtime readings.
//
// Example: sensors/data
func (Topics) SensorData() string {
	return TopicPrefixSensors + "/data"
}

// SensorPower returns the command topic for a sensor device.
//
// Example: sensors/power/dht22
func (Topics) SensorPower(device string) string {
	return fmt.Sprintf("%s/power/%s", TopicPrefixSensors, device)
}
