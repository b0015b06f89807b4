package ir

// JournalEntry is one applied actor event as recorded in the journal.
type JournalEntry struct {
	Session       string        `json:"session"`
	Seq           int64         `json:"seq"`
	Event         string        `json:"event"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	Payload       LoadStatusMap `json:"payload,omitempty"`
	Progress      float64       `json:"progress"`
	DocumentHash  string        `json:"document_hash"`
	EngineVersion string        `json:"engine_version"`
	IRVersion     string        `json:"ir_version"`
}
