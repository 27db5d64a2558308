// File: config/config.go
package config

import "time"

// Config holds every recognized configuration key from the wire and
// session protocol. It is frozen once built: nothing in the server or
// client mutates a Config after startup, only local copies.
type Config struct {
	// Transport
	WebsocketHost string `json:"websocket.host"`
	WebsocketPort int    `json:"websocket.port"`

	// Broadcast scheduler
	BroadcastIntervalMs int `json:"broadcastIntervalMs"`

	// Spawn allocator
	SpawnMaxCount     int    `json:"spawnPoints.maxCount"`
	SpawnClearRadius  int    `json:"spawnPoints.clearRadius"`
	SpawnWaitMessage  string `json:"spawnPoints.waitMessage"`

	// Session registry
	DisconnectGraceTicks int `json:"disconnectGraceTicks"`

	// Client reconnection
	ReconnectionEnabled     bool          `json:"reconnection.enabled"`
	ReconnectionMaxAttempts int           `json:"reconnection.maxAttempts"`
	ReconnectionRetryDelay  time.Duration `json:"reconnection.retryDelay"`

	// Client prediction
	PredictionEnabled              bool          `json:"prediction.enabled"`
	PredictionReconciliationPeriod time.Duration `json:"prediction.reconciliationInterval"`

	// Board-level overrides. server.NewHub uses BoardSpawnClearRadius in
	// place of SpawnClearRadius when it is positive; BoardMaxSpawnPoints
	// is not read anywhere.
	BoardMaxSpawnPoints  int `json:"board.maxSpawnPoints"`
	BoardSpawnClearRadius int `json:"board.spawnClearRadius"`

	// Client status bar
	StatusBarThreshold int `json:"statusBar.threshold"`

	// Renderer driver
	FallbackThreshold int `json:"render.fallbackThreshold"`

	// Broadcast scheduler backpressure: consecutive dropped STATE_UPDATE
	// sends (buffer over high-water mark) before a connection is closed
	// with SLOW_CONSUMER.
	SlowConsumerDropLimit int `json:"broadcast.slowConsumerDropLimit"`

	// Broadcast scheduler per-connection outbound buffer size (the
	// high-water mark itself).
	SendBufferSize int `json:"broadcast.sendBufferSize"`
}

// Default mirrors the documented defaults from the wire protocol spec.
func Default() Config {
	return Config{
		WebsocketHost: "0.0.0.0",
		WebsocketPort: 8080,

		BroadcastIntervalMs: 250,

		SpawnMaxCount:    25,
		SpawnClearRadius: 3,
		SpawnWaitMessage: "Waiting for a free spawn point...",

		DisconnectGraceTicks: 20,

		ReconnectionEnabled:     true,
		ReconnectionMaxAttempts: 10,
		ReconnectionRetryDelay:  time.Second,

		PredictionEnabled:              true,
		PredictionReconciliationPeriod: 5 * time.Second,

		BoardMaxSpawnPoints:   25,
		BoardSpawnClearRadius: 3,

		StatusBarThreshold: 25,

		FallbackThreshold: 10,

		SlowConsumerDropLimit: 5,
		SendBufferSize:        8,
	}
}

// Fast returns a configuration tuned for quick-running tests: short
// ticks, short grace, short reconnect and reconciliation periods.
func Fast() Config {
	cfg := Default()
	cfg.BroadcastIntervalMs = 10
	cfg.DisconnectGraceTicks = 3
	cfg.ReconnectionRetryDelay = 5 * time.Millisecond
	cfg.PredictionReconciliationPeriod = 20 * time.Millisecond
	return cfg
}

// BroadcastInterval converts the millisecond config field to a
// time.Duration for the ticker.
func (c Config) BroadcastInterval() time.Duration {
	return time.Duration(c.BroadcastIntervalMs) * time.Millisecond
}
