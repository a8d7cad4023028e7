package tourneysvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/DAYGoodTime/nogu/internal/auth"
	"github.com/DAYGoodTime/nogu/internal/osu"
	"github.com/DAYGoodTime/nogu/internal/rules"
	"github.com/DAYGoodTime/nogu/internal/runtime"
	"github.com/DAYGoodTime/nogu/internal/tourney"
	"github.com/DAYGoodTime/nogu/pkg/id"
	"github.com/DAYGoodTime/nogu/pkg/log"
)

var (
	// ErrBadCredentials reports a failed login. It never distinguishes an
	// unknown user from a wrong password.
	ErrBadCredentials = errors.New("tourney: bad credentials")
	// ErrForbidden reports an operation the acting user may not perform.
	ErrForbidden = errors.New("tourney: forbidden")
)

// Service orchestrates accounts, teams, pools, stages, and score submission
// on top of the tournament store.
type Service struct {
	rt     *runtime.Runtime
	store  *tourney.Store
	tokens *auth.Store
	logger log.Logger
}

func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, rt.Logger())
}

func NewWithLogger(rt *runtime.Runtime, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{
		rt:     rt,
		store:  rt.Tourney(),
		tokens: rt.Tokens(),
		logger: logger.WithComponent("tourney"),
	}
}

// RegisterParams carries a new user registration.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	Country  string
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, p RegisterParams) (tourney.User, error) {
	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return tourney.User{}, err
	}
	u, err := s.store.CreateUser(ctx, tourney.User{
		Username:       p.Username,
		Email:          p.Email,
		HashedPassword: hash,
		Country:        p.Country,
	})
	if err != nil {
		return tourney.User{}, err
	}
	s.logger.Info("user registered", log.Str("user_id", u.ID.String()), log.Str("username", u.Username))
	return u, nil
}

// Login verifies credentials and issues a bearer token. The login name may be
// either the username or the registered email.
func (s *Service) Login(ctx context.Context, login, password string) (auth.Token, tourney.User, error) {
	u, err := s.store.UserByName(login)
	if errors.Is(err, tourney.ErrNotFound) {
		u, err = s.store.UserByEmail(login)
	}
	if err != nil {
		if errors.Is(err, tourney.ErrNotFound) {
			return auth.Token{}, tourney.User{}, ErrBadCredentials
		}
		return auth.Token{}, tourney.User{}, err
	}
	if !auth.CheckPassword(u.HashedPassword, password) {
		return auth.Token{}, tourney.User{}, ErrBadCredentials
	}
	tok, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return auth.Token{}, tourney.User{}, err
	}
	s.logger.Info("user logged in", log.Str("user_id", u.ID.String()))
	return tok, u, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(token string) (tourney.User, error) {
	t, err := s.tokens.Resolve(token)
	if err != nil {
		return tourney.User{}, err
	}
	return s.store.UserByID(t.UserID)
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// UserByID loads one user.
func (s *Service) UserByID(uid id.ID) (tourney.User, error) {
	return s.store.UserByID(uid)
}

// Users lists all users in registration order.
func (s *Service) Users() ([]tourney.User, error) {
	return s.store.ListUsers()
}

// LinkAccount attaches an osu! server identity to a user.
func (s *Service) LinkAccount(ctx context.Context, a tourney.UserAccount) (tourney.UserAccount, error) {
	return s.store.AddAccount(ctx, a)
}

// AccountsOf lists a user's linked osu! server identities.
func (s *Service) AccountsOf(uid id.ID) ([]tourney.UserAccount, error) {
	return s.store.AccountsByUser(uid)
}

// CreateTeam creates a team with the acting user as captain.
func (s *Service) CreateTeam(ctx context.Context, name string, privacy tourney.Privacy, creator id.ID) (tourney.Team, error) {
	t, err := s.store.CreateTeam(ctx, tourney.Team{Name: name, Privacy: privacy}, creator)
	if err != nil {
		return tourney.Team{}, err
	}
	s.logger.Info("team created", log.Str("team_id", t.ID.String()), log.Str("name", t.Name))
	return t, nil
}

// TeamByID loads one team.
func (s *Service) TeamByID(tid id.ID) (tourney.Team, error) {
	return s.store.TeamByID(tid)
}

// Teams lists all teams in creation order.
func (s *Service) Teams() ([]tourney.Team, error) {
	return s.store.ListTeams()
}

// JoinTeam adds uid to a team. Anyone may join a public or protected team
// themselves; private teams, and adding someone else, go through the captain.
func (s *Service) JoinTeam(ctx context.Context, tid, uid, actor id.ID) (tourney.TeamMember, error) {
	t, err := s.store.TeamByID(tid)
	if err != nil {
		return tourney.TeamMember{}, err
	}
	if uid != actor || t.Privacy == tourney.PrivacyPrivate {
		pos, err := s.store.PositionOf(tid, actor)
		if err != nil {
			return tourney.TeamMember{}, err
		}
		if pos != tourney.PositionCaptain {
			return tourney.TeamMember{}, ErrForbidden
		}
	}
	return s.store.AddMember(ctx, tid, uid, tourney.PositionMember)
}

// LeaveTeam removes uid from a team. Members remove themselves; the captain
// may remove anyone.
func (s *Service) LeaveTeam(ctx context.Context, tid, uid, actor id.ID) error {
	if uid != actor {
		pos, err := s.store.PositionOf(tid, actor)
		if err != nil {
			return err
		}
		if pos != tourney.PositionCaptain {
			return ErrForbidden
		}
	}
	return s.store.RemoveMember(ctx, tid, uid)
}

// TeamMembers lists a team's roster.
func (s *Service) TeamMembers(tid id.ID) ([]tourney.TeamMember, error) {
	return s.store.MembersByTeam(tid)
}

// TeamsOf lists the teams a user belongs to.
func (s *Service) TeamsOf(uid id.ID) ([]tourney.Team, error) {
	return s.store.TeamsByUser(uid)
}

// SetActiveTeam marks one of the user's teams as the active one.
func (s *Service) SetActiveTeam(ctx context.Context, uid, tid id.ID) (tourney.User, error) {
	u, err := s.store.UserByID(uid)
	if err != nil {
		return tourney.User{}, err
	}
	if _, err := s.store.MemberOf(tid, uid); err != nil {
		return tourney.User{}, err
	}
	u.ActiveTeamID = tid
	return s.store.UpdateUser(ctx, u)
}

// CreatePool creates a map pool owned by the acting user.
func (s *Service) CreatePool(ctx context.Context, p tourney.Pool, creator id.ID) (tourney.Pool, error) {
	return s.store.CreatePool(ctx, p, creator)
}

// PoolByID loads one pool.
func (s *Service) PoolByID(pid id.ID) (tourney.Pool, error) {
	return s.store.PoolByID(pid)
}

// Pools lists all pools in creation order.
func (s *Service) Pools() ([]tourney.Pool, error) {
	return s.store.ListPools()
}

// AddPoolMap adds a slot to a pool. Only the pool's creator may edit it.
func (s *Service) AddPoolMap(ctx context.Context, pm tourney.PoolMap, actor id.ID) (tourney.PoolMap, error) {
	p, err := s.store.PoolByID(pm.PoolID)
	if err != nil {
		return tourney.PoolMap{}, err
	}
	if p.CreatorID != actor {
		return tourney.PoolMap{}, ErrForbidden
	}
	return s.store.AddPoolMap(ctx, pm)
}

// RemovePoolMap removes a slot from a pool. Only the pool's creator may
// edit it.
func (s *Service) RemovePoolMap(ctx context.Context, pid, mid, actor id.ID) error {
	p, err := s.store.PoolByID(pid)
	if err != nil {
		return err
	}
	if p.CreatorID != actor {
		return ErrForbidden
	}
	return s.store.RemovePoolMap(ctx, pid, mid)
}

// PoolMaps lists a pool's slots.
func (s *Service) PoolMaps(pid id.ID) ([]tourney.PoolMap, error) {
	return s.store.PoolMaps(pid)
}

// StartStage begins a team's run through a pool. Only the team captain may
// start a stage.
func (s *Service) StartStage(ctx context.Context, st tourney.Stage, actor id.ID) (tourney.Stage, error) {
	pos, err := s.store.PositionOf(st.TeamID, actor)
	if err != nil {
		return tourney.Stage{}, err
	}
	if pos != tourney.PositionCaptain {
		return tourney.Stage{}, ErrForbidden
	}
	created, err := s.store.CreateStage(ctx, st)
	if err != nil {
		return tourney.Stage{}, err
	}
	s.logger.Info("stage started",
		log.Str("stage_id", created.ID.String()),
		log.Str("team_id", created.TeamID.String()),
		log.Str("pool_id", created.PoolID.String()))
	return created, nil
}

// StageByID loads one stage.
func (s *Service) StageByID(sid id.ID) (tourney.Stage, error) {
	return s.store.StageByID(sid)
}

// StagesOf lists a team's stages in creation order.
func (s *Service) StagesOf(tid id.ID) ([]tourney.Stage, error) {
	return s.store.StagesByTeam(tid)
}

// StageMaps lists a stage's slots.
func (s *Service) StageMaps(sid id.ID) ([]tourney.StageMap, error) {
	return s.store.StageMaps(sid)
}

// ScoreSubmission carries one play to be judged against a stage map.
type ScoreSubmission struct {
	UserID       id.ID
	StageID      id.ID
	BeatmapMD5   string
	Score        int64
	Accuracy     float64
	HighestCombo int
	FullCombo    bool
	Mods         osu.Mods
	Num300s      int
	Num100s      int
	Num50s       int
	NumMisses    int
	NumGekis     int
	NumKatus     int
	Grade        string
	ServerID     osu.Server
}

// SubmitScore judges a play against the stage map's condition and, when it
// passes, grades it with the stage's formula and records it. Scores failing
// the condition are rejected with ErrConditionNotMet.
func (s *Service) SubmitScore(ctx context.Context, sub ScoreSubmission) (tourney.Score, error) {
	stage, err := s.store.StageByID(sub.StageID)
	if err != nil {
		return tourney.Score{}, err
	}
	pos, err := s.store.PositionOf(stage.TeamID, sub.UserID)
	if err != nil {
		return tourney.Score{}, err
	}
	if pos == tourney.PositionEmpty {
		return tourney.Score{}, ErrForbidden
	}
	sm, err := s.store.StageMapByMD5(stage.ID, sub.BeatmapMD5)
	if err != nil {
		return tourney.Score{}, err
	}

	score := tourney.Score{
		UserID:       sub.UserID,
		StageID:      stage.ID,
		BeatmapMD5:   sub.BeatmapMD5,
		Score:        sub.Score,
		Accuracy:     sub.Accuracy,
		HighestCombo: sub.HighestCombo,
		FullCombo:    sub.FullCombo,
		Mods:         sub.Mods,
		Num300s:      sub.Num300s,
		Num100s:      sub.Num100s,
		Num50s:       sub.Num50s,
		NumMisses:    sub.NumMisses,
		NumGekis:     sub.NumGekis,
		NumKatus:     sub.NumKatus,
		Grade:        sub.Grade,
		Mode:         stage.Mode,
		ServerID:     sub.ServerID,
	}

	cond, err := rules.Compile(sm.ConditionAST)
	if err != nil {
		return tourney.Score{}, fmt.Errorf("stage map condition: %w", err)
	}
	ok, err := cond.Check(score.ConditionVariables())
	if err != nil {
		return tourney.Score{}, fmt.Errorf("stage map condition: %w", err)
	}
	if !ok {
		s.logger.Debug("score rejected by condition",
			log.Str("user_id", sub.UserID.String()),
			log.Str("stage_id", stage.ID.String()),
			log.Str("map_md5", sub.BeatmapMD5),
			log.Str("condition", cond.String()))
		return tourney.Score{}, tourney.ErrConditionNotMet
	}

	formula, found := tourney.FormulaByID(stage.Formula)
	if !found {
		return tourney.Score{}, fmt.Errorf("tourney: unknown formula %d", stage.Formula)
	}
	score.PerformancePoints = formula.Calculate(score)

	inserted, err := s.store.InsertScore(ctx, score)
	if err != nil {
		return tourney.Score{}, err
	}
	s.logger.Info("score accepted",
		log.Str("score_id", inserted.ID.String()),
		log.Str("user_id", inserted.UserID.String()),
		log.Str("stage_id", inserted.StageID.String()),
		log.Float64("pp", inserted.PerformancePoints))
	return inserted, nil
}

// ScoreByID loads one score.
func (s *Service) ScoreByID(scid id.ID) (tourney.Score, error) {
	return s.store.ScoreByID(scid)
}

// ScoresByStage lists a stage's scores in submission order.
func (s *Service) ScoresByStage(sid id.ID) ([]tourney.Score, error) {
	return s.store.ScoresByStage(sid)
}

// ScoresByUser lists a user's scores in submission order.
func (s *Service) ScoresByUser(uid id.ID) ([]tourney.Score, error) {
	return s.store.ScoresByUser(uid)
}
