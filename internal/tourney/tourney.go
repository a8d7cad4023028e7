package tourney

import (
	"errors"
	"time"

	"github.com/DAYGoodTime/nogu/internal/osu"
	"github.com/DAYGoodTime/nogu/internal/rules"
	"github.com/DAYGoodTime/nogu/pkg/id"
)

var (
	// ErrNotFound reports a missing entity of any kind in this package.
	ErrNotFound = errors.New("tourney: not found")
	// ErrUsernameTaken reports a username uniqueness violation.
	ErrUsernameTaken = errors.New("tourney: username already taken")
	// ErrEmailTaken reports an email uniqueness violation.
	ErrEmailTaken = errors.New("tourney: email already registered")
	// ErrConditionNotMet reports a score rejected by its map condition.
	ErrConditionNotMet = errors.New("tourney: score does not meet map condition")
	// ErrBadCondition reports a map condition expression that does not compile.
	ErrBadCondition = errors.New("tourney: invalid map condition")
)

// Privacy controls who may see a team or pool.
type Privacy int

const (
	PrivacyPublic Privacy = iota
	PrivacyProtected
	PrivacyPrivate
)

func (p Privacy) String() string {
	switch p {
	case PrivacyPublic:
		return "public"
	case PrivacyProtected:
		return "protected"
	case PrivacyPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// MemberPosition is a user's role inside a team. Empty means "not a member"
// and is never stored.
type MemberPosition int

const (
	PositionEmpty MemberPosition = iota
	PositionMember
	PositionCaptain
)

func (p MemberPosition) String() string {
	switch p {
	case PositionMember:
		return "member"
	case PositionCaptain:
		return "captain"
	default:
		return "empty"
	}
}

// User is a registered player. Passwords are stored only as bcrypt hashes;
// the HTTP layer never echoes the hash back to clients.
type User struct {
	ID             id.ID     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password,omitempty"`
	Privileges     int       `json:"privileges"`
	Country        string    `json:"country"`
	ActiveTeamID   id.ID     `json:"active_team_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserAccount links a user to an identity on an osu! server.
type UserAccount struct {
	ID             id.ID      `json:"id"`
	UserID         id.ID      `json:"user_id"`
	ServerID       osu.Server `json:"server_id"`
	ServerUserID   int64      `json:"server_user_id"`
	ServerUserName string     `json:"server_user_name"`
	CheckedAt      time.Time  `json:"checked_at"`
}

// Team is a group of users progressing through stages together.
type Team struct {
	ID            id.ID      `json:"id"`
	Name          string     `json:"name"`
	Privacy       Privacy    `json:"privacy"`
	Achieved      bool       `json:"achieved"`
	ActiveStageID id.ID      `json:"active_stage_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// TeamMember is one user's membership in one team.
type TeamMember struct {
	ID       id.ID          `json:"id"`
	TeamID   id.ID          `json:"team_id"`
	UserID   id.ID          `json:"user_id"`
	Position MemberPosition `json:"position"`
}

// Pool is a reusable collection of beatmaps with play conditions attached.
type Pool struct {
	ID          id.ID     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Mode        osu.Mode  `json:"mode"`
	Privacy     Privacy   `json:"privacy"`
	CreatorID   id.ID     `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapEntry is the condition block shared by pool and stage maps: which map,
// what counts as passing it, and how that condition is shown to players.
type MapEntry struct {
	MapMD5                 string   `json:"map_md5"`
	Description            string   `json:"description,omitempty"`
	ConditionAST           string   `json:"condition_ast"`
	ConditionName          string   `json:"condition_name"`
	ConditionRepresentMods osu.Mods `json:"condition_represent_mods"`
}

// PoolMap is one beatmap slot of a pool.
type PoolMap struct {
	ID     id.ID `json:"id"`
	PoolID id.ID `json:"pool_id"`
	MapEntry
}

// Stage is one team's run through a pool: maps are copied from the pool at
// creation so later pool edits cannot change an ongoing stage.
type Stage struct {
	ID        id.ID     `json:"id"`
	Name      string    `json:"name"`
	Mode      osu.Mode  `json:"mode"`
	Formula   int       `json:"formula"`
	PoolID    id.ID     `json:"pool_id"`
	TeamID    id.ID     `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StageMap is one beatmap slot of a stage.
type StageMap struct {
	ID      id.ID `json:"id"`
	StageID id.ID `json:"stage_id"`
	MapEntry
}

// Score is one play submitted against a stage map.
type Score struct {
	ID                id.ID      `json:"id"`
	UserID            id.ID      `json:"user_id"`
	StageID           id.ID      `json:"stage_id"`
	BeatmapMD5        string     `json:"beatmap_md5"`
	Score             int64      `json:"score"`
	PerformancePoints float64    `json:"performance_points"`
	Accuracy          float64    `json:"accuracy"`
	HighestCombo      int        `json:"highest_combo"`
	FullCombo         bool       `json:"full_combo"`
	Mods              osu.Mods   `json:"mods"`
	Num300s           int        `json:"num_300s"`
	Num100s           int        `json:"num_100s"`
	Num50s            int        `json:"num_50s"`
	NumMisses         int        `json:"num_misses"`
	NumGekis          int        `json:"num_gekis"`
	NumKatus          int        `json:"num_katus"`
	Grade             string     `json:"grade"`
	Mode              osu.Mode   `json:"mode"`
	ServerID          osu.Server `json:"server_id"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ConditionVariables exposes the score fields a map condition may test.
func (s Score) ConditionVariables() rules.Variables {
	return rules.Variables{
		Acc:      s.Accuracy,
		MaxCombo: int64(s.HighestCombo),
		Mods:     s.Mods,
		Score:    s.Score,
	}
}
