package version

type Info struct {
	AgentID         string `json:"agent_id"`
	AgentVersion    string `json:"agent_version"`
	Platform        string `json:"platform"`
	NativeTelemetry bool   `json:"native_telemetry"`
	ProbeListenAddr string `json:"probe_listen_addr"`
	CheckedAtUnix   int64  `json:"checked_at_unix"`
}
