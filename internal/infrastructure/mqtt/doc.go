// Package mqtt provides MQTT client connectivity for the sensor broker.
//
// This package manages:
//   - Connection over tcp, ssl, ws or wss (the sensor stack serves MQTT over
//     WebSocket on port 9001)
//   - Message publishing with QoS levels
//   - Topic subscriptions with wildcard support
//   - Optional auto-reconnect with subscription restore
//
// # Topics
//
//	sensors/data            realtime readings (JSON)
//	sensors/power/{device}  power commands, payload ON or OFF
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.SensorData(), 0,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
//
//	client.PublishString(mqtt.Topics{}.SensorPower("ldr"), "OFF")
//
// Tests run against an in-process broker from the mqtttest package.
package mqtt
