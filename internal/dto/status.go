package dto

type StatusDTO struct {
	App     AppStatusDTO     `json:"app"`
	Storage StorageStatusDTO `json:"storage"`
	Sim     SimStatusDTO     `json:"sim"`
}

type AppStatusDTO struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	StartedAt string `json:"started_at"`
	UptimeSec int64  `json:"uptime_sec"`
	SafeMode  bool   `json:"safe_mode"`
}

type StorageStatusDTO struct {
	DBPath         string `json:"db_path"`
	SchemaVersion  int    `json:"schema_version"`
	SafeModeReason string `json:"safe_mode_reason,omitempty"`
}

type SimStatusDTO struct {
	CharacterID    string `json:"character_id"`
	TickIntervalMs int64  `json:"tick_interval_ms"`
	LastTickAt     int64  `json:"last_tick_at"`
	ActiveAction   string `json:"active_action,omitempty"`
	PendingResume  string `json:"pending_resume,omitempty"`
	Subscribers    int    `json:"subscribers"`
	DroppedEvents  int64  `json:"dropped_events,omitempty"`
	OfflineSteps   int    `json:"offline_steps"`
}
