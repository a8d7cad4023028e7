package controllers

import "time"

// Request bodies. Responses reuse the entity types directly; users pass
// through sanitizeUser first.

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Country  string `json:"country"`
}

type loginReq struct {
	// Login accepts the username or the registered email.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      any       `json:"user"`
}

type accountReq struct {
	ServerID       int    `json:"server_id"`
	ServerUserID   int64  `json:"server_user_id"`
	ServerUserName string `json:"server_user_name"`
}

type teamReq struct {
	Name    string `json:"name"`
	Privacy int    `json:"privacy"`
}

type memberReq struct {
	// UserID defaults to the authenticated user when empty.
	UserID string `json:"user_id"`
}

type activateReq struct {
	TeamID string `json:"team_id"`
}

type poolReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Mode        int    `json:"mode"`
	Privacy     int    `json:"privacy"`
}

type poolMapReq struct {
	MapMD5                 string `json:"map_md5"`
	Description            string `json:"description"`
	ConditionAST           string `json:"condition_ast"`
	ConditionName          string `json:"condition_name"`
	ConditionRepresentMods int64  `json:"condition_represent_mods"`
}

type stageReq struct {
	Name    string `json:"name"`
	TeamID  string `json:"team_id"`
	PoolID  string `json:"pool_id"`
	Formula int    `json:"formula"`
}

type scoreReq struct {
	BeatmapMD5   string  `json:"beatmap_md5"`
	Score        int64   `json:"score"`
	Accuracy     float64 `json:"accuracy"`
	HighestCombo int     `json:"highest_combo"`
	FullCombo    bool    `json:"full_combo"`
	Mods         int64   `json:"mods"`
	Num300s      int     `json:"num_300s"`
	Num100s      int     `json:"num_100s"`
	Num50s       int     `json:"num_50s"`
	NumMisses    int     `json:"num_misses"`
	NumGekis     int     `json:"num_gekis"`
	NumKatus     int     `json:"num_katus"`
	Grade        string  `json:"grade"`
	ServerID     int     `json:"server_id"`
}

type streamReq struct {
	Idents []string `json:"idents"`
}
