package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	TickRateHz      int            `json:"tick_rate_hz"`
	FrameRateHz     int            `json:"frame_rate_hz"`
	ActiveCharacter string         `json:"active_character,omitempty"`
	Zones           []ZoneInfo     `json:"zones"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type ZoneInfo struct {
	ID   [2]int   `json:"id"`
	Name string   `json:"name"`
	W    int      `json:"w"`
	H    int      `json:"h"`
	Rows []string `json:"rows"`
}

type CatalogDigests struct {
	Monsters  string `json:"monsters"`
	Resources string `json:"resources"`
	Items     string `json:"items"`
	Upgrades  string `json:"upgrades"`
}

// INTENT (client -> server)
type IntentMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	ReqID           string  `json:"req_id"`
	Intent          string  `json:"intent"`
	CharacterID     string  `json:"character_id,omitempty"`
	Tile            *[2]int `json:"tile,omitempty"`
	Task            string  `json:"task,omitempty"`
	Resource        string  `json:"resource,omitempty"`
	UpgradeID       string  `json:"upgrade_id,omitempty"`
}

// FRAME (server -> client): the read-only per-frame snapshot.
type FrameMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	Tick            uint64           `json:"tick"`
	ActiveCharacter string           `json:"active_character,omitempty"`
	Team            TeamState        `json:"team"`
	Characters      []CharacterState `json:"characters"`
	Monsters        []MonsterState   `json:"monsters"`
	Marks           []MarkState      `json:"marks"`
	Combat          []CombatState    `json:"combat"`
}

type TeamState struct {
	Gold      int64          `json:"gold"`
	Gems      int64          `json:"gems"`
	Inventory map[string]int `json:"inventory,omitempty"`
	Upgrades  map[string]int `json:"upgrades,omitempty"`
	Damage    float64        `json:"damage"`
	Defense   float64        `json:"defense"`
	SpeedPct  float64        `json:"speed_pct"`
	MaxHP     float64        `json:"max_hp"`
	MarkCap   int            `json:"mark_capacity"`
}

type CharacterState struct {
	ID     string         `json:"id"`
	Name   string         `json:"name,omitempty"`
	Zone   [2]int         `json:"zone"`
	Pos    [2]int         `json:"pos"`
	Visual [2]float64     `json:"visual"`
	HP     float64        `json:"hp"`
	MaxHP  float64        `json:"max_hp"`
	Dead   bool           `json:"dead,omitempty"`
	Task   string         `json:"task,omitempty"`
	Phase  string         `json:"phase,omitempty"`
	Status string         `json:"status,omitempty"`
	Skills map[string]int `json:"skills,omitempty"`
}

type MonsterState struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Zone  [2]int  `json:"zone"`
	Pos   [2]int  `json:"pos"`
	Size  [2]int  `json:"size"`
	HP    float64 `json:"hp"`
	MaxHP float64 `json:"max_hp"`
	Boss  bool    `json:"boss,omitempty"`
}

type MarkState struct {
	CharacterID string `json:"character_id"`
	MonsterID   string `json:"monster_id"`
	Zone        [2]int `json:"zone"`
	Approach    [2]int `json:"approach"`
}

type CombatState struct {
	CharacterID string `json:"character_id"`
	MonsterID   string `json:"monster_id"`
	Turn        string `json:"turn"`
}

// ACK (server -> client)
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	ServerTick      uint64 `json:"server_tick,omitempty"`
}
