// Package ws implements the live notification feed. Connected WebSocket
// clients receive every user-facing event as it is produced; keepalive events
// are not broadcast. Slow clients are disconnected rather than allowed to
// back-pressure the monitoring loop.
package ws
