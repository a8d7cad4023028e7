package tourney

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DAYGoodTime/nogu/pkg/id"
)

// CreateTeam persists a team and enrolls the creator as its captain.
func (s *Store) CreateTeam(ctx context.Context, t Team, creatorID id.ID) (Team, error) {
	if t.Name == "" {
		return Team{}, errors.New("tourney: team name required")
	}
	if _, err := s.UserByID(creatorID); err != nil {
		return Team{}, err
	}

	t.ID = s.ids.Next()
	t.CreatedAt = s.now().UTC()
	t.FinishedAt = nil
	t.Achieved = false

	captain := TeamMember{
		ID:       s.ids.Next(),
		TeamID:   t.ID,
		UserID:   creatorID,
		Position: PositionCaptain,
	}

	teamRaw, err := json.Marshal(t)
	if err != nil {
		return Team{}, err
	}
	memberRaw, err := json.Marshal(captain)
	if err != nil {
		return Team{}, err
	}

	b := s.db.NewBatch()
	if err := b.Set(teamKey(t.ID), teamRaw, nil); err != nil {
		return Team{}, err
	}
	if err := b.Set(memberKey(t.ID, creatorID), memberRaw, nil); err != nil {
		return Team{}, err
	}
	if err := b.Set(userTeamKey(creatorID, t.ID), t.ID.Bytes(), nil); err != nil {
		return Team{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return Team{}, err
	}
	return t, nil
}

// TeamByID loads one team.
func (s *Store) TeamByID(tid id.ID) (Team, error) {
	var t Team
	if err := s.getJSON(teamKey(tid), &t); err != nil {
		return Team{}, err
	}
	return t, nil
}

// UpdateTeam rewrites a team row, keeping its creation timestamp.
func (s *Store) UpdateTeam(ctx context.Context, t Team) (Team, error) {
	prev, err := s.TeamByID(t.ID)
	if err != nil {
		return Team{}, err
	}
	t.CreatedAt = prev.CreatedAt
	if err := s.setJSON(teamKey(t.ID), t); err != nil {
		return Team{}, err
	}
	return t, nil
}

// ListTeams returns every team in creation order.
func (s *Store) ListTeams() ([]Team, error) {
	var out []Team
	err := s.scan(teamPrefix(), func(_, val []byte) error {
		var t Team
		if err := json.Unmarshal(val, &t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	return out, err
}

// AddMember enrolls a user into a team.
func (s *Store) AddMember(ctx context.Context, tid, uid id.ID, pos MemberPosition) (TeamMember, error) {
	if _, err := s.TeamByID(tid); err != nil {
		return TeamMember{}, err
	}
	if _, err := s.UserByID(uid); err != nil {
		return TeamMember{}, err
	}
	if pos == PositionEmpty {
		pos = PositionMember
	}

	m := TeamMember{
		ID:       s.ids.Next(),
		TeamID:   tid,
		UserID:   uid,
		Position: pos,
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return TeamMember{}, err
	}
	b := s.db.NewBatch()
	if err := b.Set(memberKey(tid, uid), raw, nil); err != nil {
		return TeamMember{}, err
	}
	if err := b.Set(userTeamKey(uid, tid), tid.Bytes(), nil); err != nil {
		return TeamMember{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return TeamMember{}, err
	}
	return m, nil
}

// RemoveMember drops a user from a team.
func (s *Store) RemoveMember(ctx context.Context, tid, uid id.ID) error {
	if _, err := s.MemberOf(tid, uid); err != nil {
		return err
	}
	b := s.db.NewBatch()
	if err := b.Delete(memberKey(tid, uid), nil); err != nil {
		return err
	}
	if err := b.Delete(userTeamKey(uid, tid), nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, b)
}

// MemberOf loads one membership row.
func (s *Store) MemberOf(tid, uid id.ID) (TeamMember, error) {
	var m TeamMember
	if err := s.getJSON(memberKey(tid, uid), &m); err != nil {
		return TeamMember{}, err
	}
	return m, nil
}

// PositionOf reports a user's role in a team; PositionEmpty when the user
// is not a member.
func (s *Store) PositionOf(tid, uid id.ID) (MemberPosition, error) {
	m, err := s.MemberOf(tid, uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PositionEmpty, nil
		}
		return PositionEmpty, err
	}
	return m.Position, nil
}

// MembersByTeam lists a team's roster.
func (s *Store) MembersByTeam(tid id.ID) ([]TeamMember, error) {
	var out []TeamMember
	err := s.scan(memberPrefix(tid), func(_, val []byte) error {
		var m TeamMember
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// TeamsByUser lists every team a user belongs to.
func (s *Store) TeamsByUser(uid id.ID) ([]Team, error) {
	var out []Team
	err := s.scan(userTeamPrefix(uid), func(_, val []byte) error {
		var t Team
		if err := s.resolve(val, teamKey, &t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	return out, err
}
