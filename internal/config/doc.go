// Package config loads the farmsentry configuration from config.yaml.
//
// Config fields:
//   - monitor.log_path        — path to the node's debug log (required)
//   - monitor.from_beginning  — read the whole file instead of seeking to end
//   - monitor.batch_interval  — how often buffered log lines are flushed to
//     the handlers (default 5s)
//   - keepalive.enabled       — liveness watchdog on/off (default true)
//   - keepalive.threshold     — silence duration that counts as offline
//     (default 5m)
//   - stats.enabled           — periodic farm summary on/off (default true)
//   - stats.interval          — summary period (default 24h)
//   - notify.min_priority     — lowest priority delivered to sinks
//     (low|normal|high, default low)
//   - notify.webhooks         — delivery targets [type: slack|teams|http,
//     url_env: ENV_VAR]
//   - notify.script_path      — optional script run once per delivered event
//   - server.http_port        — port for /metrics, /healthz and /ws
//     (default 8080)
//
// Load(path) applies defaults before unmarshalling, then validates. Webhook
// URLs are resolved from the environment at send time, never stored in the
// file. Watch(ctx, path, onChange) hot-reloads the file on write.
package config
