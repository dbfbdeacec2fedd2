package model

// LogRecord is an emitted event in EVM log shape: topic0 plus indexed
// topics and ABI-encoded data, keyed by pool and sequence number.
type LogRecord struct {
	Pool       string   `json:"pool"`
	Seq        uint64   `json:"seq"`
	EventID    string   `json:"event_id"`
	Address    string   `json:"address"`
	Topics     []string `json:"topics"`
	Data       string   `json:"data"`
	Timestamp  int64    `json:"timestamp"`
	IngestedAt string   `json:"ingested_at"`
}
