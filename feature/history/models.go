package history

import "time"

// RunRecord is one applied mirror run.
type RunRecord struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SourceItems int `json:"source_items"`
	StoreItems  int `json:"store_items"`
	Withdrawn   int `json:"withdrawn"`
	Changed     int `json:"changed"`
	New         int `json:"new"`
	Unchanged   int `json:"unchanged"`
	Anomalies   int `json:"anomalies"`

	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Converged bool `json:"converged"`

	IndexKey string `gorm:"size:1024" json:"index_key,omitempty"`

	Items []ItemRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName overrides the table name used by RunRecord.
func (RunRecord) TableName() string {
	return "mirror_runs"
}

// ItemRecord is one attempted action of a run, in plan order.
type ItemRecord struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	RunID    string `gorm:"size:36;index" json:"-"`
	Position int    `json:"position"`
	Key      string `gorm:"size:1024" json:"key"`
	Action   string `gorm:"size:16" json:"action"`
	Outcome  string `gorm:"size:16" json:"outcome"`
	Stage    string `gorm:"size:16" json:"stage,omitempty"`
	Reason   string `gorm:"type:text" json:"reason,omitempty"`
}

// TableName overrides the table name used by ItemRecord.
func (ItemRecord) TableName() string {
	return "mirror_run_items"
}
