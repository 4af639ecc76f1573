// Package redis wires the Redis layer: a retrying go-redis connector and a
// health probe. The client backs the authstate session cache.
package redis
