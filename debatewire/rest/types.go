package rest

import (
	"bytes"
	"encoding/json"
	"time"
)

// Timestamp accepts RFC3339 and the backend's naive isoformat() output,
// which is UTC without an offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// Dashboard counters

// Stats holds the platform-wide counters.
type Stats struct {
	Agents struct {
		Total int `json:"total"`
		Tier1 int `json:"tier1"`
		Tier2 int `json:"tier2"`
		Tier3 int `json:"tier3"`
	} `json:"agents"`
	Debates struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Active    int `json:"active"`
	} `json:"debates"`
	Knowledge struct {
		TotalFacts        int `json:"total_facts"`
		SeedFacts         int `json:"seed_facts"`
		ValidatedTheories int `json:"validated_theories"`
		PendingTheories   int `json:"pending_theories"`
	} `json:"knowledge"`
	Predictions struct {
		Total         int `json:"total"`
		ValidatedTrue int `json:"validated_true"`
	} `json:"predictions"`
	NewsEvents struct {
		Total       int `json:"total"`
		Unprocessed int `json:"unprocessed"`
	} `json:"news_events"`
}

// Debate types

// DebateInfo is one row of the debate listing.
type DebateInfo struct {
	ID           int64      `json:"id"`
	Topic        string     `json:"topic"`
	Domain       string     `json:"domain"`
	Status       string     `json:"status"`
	Participants []string   `json:"participants"`
	Summary      *string    `json:"summary,omitempty"`
	StartedAt    Timestamp  `json:"started_at"`
	EndedAt      *Timestamp `json:"ended_at,omitempty"`
}

// DebateMessage is one stored message of a debate.
type DebateMessage struct {
	ID        int64     `json:"id"`
	Agent     string    `json:"agent"`
	Content   string    `json:"content"`
	MsgType   string    `json:"msg_type"`
	Round     int       `json:"round"`
	Timestamp Timestamp `json:"timestamp"`
}

// DebateDetail is a debate with its stored messages.
type DebateDetail struct {
	DebateInfo
	Messages []DebateMessage `json:"messages"`
}

// TriggerRequest starts a debate. An empty topic uses the latest news event.
type TriggerRequest struct {
	Topic        string   `json:"topic,omitempty"`
	Participants []string `json:"participants,omitempty"`
}

// ActionResponse is the acknowledgement returned by action endpoints.
type ActionResponse struct {
	Message string `json:"message"`
	Topic   string `json:"topic,omitempty"`
}

// Loop types

// LoopStatus is the polled state of the autonomous loop.
type LoopStatus struct {
	Message         string  `json:"message,omitempty"`
	Running         bool    `json:"running"`
	DebatesRun      int     `json:"debates_run"`
	CurrentTopic    *string `json:"current_topic"`
	CurrentCategory *string `json:"current_category"`
}

// Knowledge types

// Fact is a knowledge base entry.
type Fact struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Confidence     float64   `json:"confidence"`
	IsSeed         bool      `json:"is_seed"`
	SourceTheoryID *int64    `json:"source_theory_id,omitempty"`
	CreatedAt      Timestamp `json:"created_at"`
}

// Theory is an agent-submitted claim awaiting or past validation.
type Theory struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Evidence   string    `json:"evidence"`
	Confidence float64   `json:"confidence"`
	Status     string    `json:"status"`
	Agent      string    `json:"agent"`
	DebateID   *int64    `json:"debate_id,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
}

// ValidationResult is returned by a manual theory validation.
type ValidationResult struct {
	TheoryID          int64  `json:"theory_id"`
	Verdict           string `json:"verdict"`
	ValidatorResponse string `json:"validator_response"`
	Status            string `json:"status,omitempty"`
	Message           string `json:"message,omitempty"`
}

// NewsEvent is an ingested headline.
type NewsEvent struct {
	ID          int64     `json:"id"`
	Headline    string    `json:"headline"`
	Content     string    `json:"content"`
	EventType   string    `json:"event_type"`
	PublishedAt Timestamp `json:"published_at"`
	Processed   bool      `json:"processed"`
}

// Agent is a debating agent.
type Agent struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Tier      int       `json:"tier"`
	Domain    string    `json:"domain"`
	Specialty string    `json:"specialty"`
	ModelID   string    `json:"model_id"`
	Bio       string    `json:"bio"`
	Wins      int       `json:"wins"`
	CreatedAt Timestamp `json:"created_at"`
}

// Season award

// AwardStanding is one agent's prediction record across seasons.
type AwardStanding struct {
	AgentID          int64   `json:"agent_id"`
	AgentName        string  `json:"agent_name"`
	TotalPredictions int     `json:"total_predictions"`
	Correct          int     `json:"correct"`
	Accuracy         float64 `json:"accuracy"`
	ApexAwards       int     `json:"apex_awards"`
}

// SeasonPrediction is an agent's claim for the current season.
type SeasonPrediction struct {
	ID               int64      `json:"id"`
	Agent            string     `json:"agent"`
	Claim            string     `json:"claim"`
	Status           string     `json:"status"`
	AccuracyScore    *float64   `json:"accuracy_score"`
	PredictionDate   Timestamp  `json:"prediction_date"`
	ValidationDate   *Timestamp `json:"validation_date"`
	ValidationSource *string    `json:"validation_source"`
}

// AwardOverview is the leaderboard plus the current season's predictions.
type AwardOverview struct {
	CurrentSeason     string             `json:"current_season"`
	Leaderboard       []AwardStanding    `json:"leaderboard"`
	SeasonPredictions []SeasonPrediction `json:"season_predictions"`
}

// GeneratedPredictions is returned when agents are asked for season claims.
type GeneratedPredictions struct {
	Message     string             `json:"message"`
	Predictions []SeasonPrediction `json:"predictions"`
}

// PredictionCheck is the outcome of checking one claim against the news.
type PredictionCheck struct {
	PredictionID int64   `json:"prediction_id"`
	Agent        string  `json:"agent"`
	Claim        string  `json:"claim"`
	Verdict      string  `json:"verdict"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// PredictionChecks lists the claims checked in one validation pass.
type PredictionChecks struct {
	Validated int               `json:"validated"`
	Results   []PredictionCheck `json:"results"`
}

// AwardResult names a season winner. Winner is empty and Message set when
// the season has no validated predictions.
type AwardResult struct {
	Season    string             `json:"season"`
	Winner    string             `json:"winner"`
	Score     float64            `json:"score"`
	AllScores map[string]float64 `json:"all_scores"`
	Message   string             `json:"message"`
}

// AwardWinner is an agent that has won at least one award.
type AwardWinner struct {
	Name      string `json:"name"`
	Tier      int    `json:"tier"`
	Wins      int    `json:"wins"`
	Specialty string `json:"specialty"`
}

// ErrorResponse is FastAPI's error body.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
