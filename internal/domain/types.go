package domain

// SessionState tracks the lifecycle of a single transformation session.
type SessionState string

const (
	SessionStateIdle       SessionState = "idle"
	SessionStateRunning    SessionState = "running"
	SessionStateFinalizing SessionState = "finalizing"
	SessionStateCompleted  SessionState = "completed"
	SessionStateFailed     SessionState = "failed"
)

// TransformKind selects which batch operation the external service performs.
type TransformKind string

const (
	TransformKindTranslate TransformKind = "translate"
	TransformKindEnhance   TransformKind = "enhance"
	TransformKindGenerate  TransformKind = "generate"
)

// Item is one text record submitted for transformation. Items are owned by
// the caller and immutable once a session starts.
type Item struct {
	ID       string            `json:"id"`
	Author   string            `json:"author,omitempty"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ItemResult is the per-item outcome for one item in a batch.
type ItemResult struct {
	ID                 string `json:"id"`
	Success            bool   `json:"success"`
	TransformedContent string `json:"transformedContent,omitempty"`
	Error              string `json:"error,omitempty"`
}

// BatchStats summarizes one batch attempt.
type BatchStats struct {
	SuccessCount int `json:"success"`
	ErrorCount   int `json:"errors"`
	Total        int `json:"total"`
}

// Add merges another batch's counts into this one.
func (s *BatchStats) Add(other BatchStats) {
	s.SuccessCount += other.SuccessCount
	s.ErrorCount += other.ErrorCount
	s.Total += other.Total
}

// SessionStats is the running sum of all batch stats seen so far.
// SuccessCount + ErrorCount always equals Total.
type SessionStats = BatchStats

// Options carries per-session transformation parameters. Kind, language,
// and style are routed through to the external service unmodified.
type Options struct {
	Kind           TransformKind `json:"kind"`
	TargetLanguage string        `json:"targetLanguage,omitempty"`
	Style          string        `json:"style,omitempty"`
}

// StoreKind selects which record store backend persists transformed
// content.
type StoreKind string

const (
	// StoreKindSQLite writes into the dashboard's hosted review table.
	StoreKindSQLite StoreKind = "sqlite"
	// StoreKindRedis writes into the storefront cache tier.
	StoreKindRedis StoreKind = "redis"
)

// ValidStoreKind reports whether kind names a known backend.
func ValidStoreKind(kind StoreKind) bool {
	switch kind {
	case StoreKindSQLite, StoreKindRedis:
		return true
	default:
		return false
	}
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	ServiceURL        string    `json:"serviceUrl"`
	ListenAddr        string    `json:"listenAddr"`
	StoreKind         StoreKind `json:"storeKind"`
	StorePath         string    `json:"storePath"`
	RedisAddr         string    `json:"redisAddr"`
	MaxBatchSize      int       `json:"maxBatchSize"`
	MaxBatchTokens    int       `json:"maxBatchTokens"`
	InterBatchDelayMs int       `json:"interBatchDelayMs"`
	RequestTimeoutMs  int       `json:"requestTimeoutMs"`
	TargetLanguage    string    `json:"targetLanguage"`
	Style             string    `json:"style"`
}

// Session stores the current session identity, lifecycle state, and stats.
type Session struct {
	ID    string       `json:"id"`
	State SessionState `json:"state"`
	Stats SessionStats `json:"stats"`
}
