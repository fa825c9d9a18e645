package service

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"zappy/internal/shared/actor/messages"
	"zappy/internal/shared/gameconfig/rules"
	"zappy/internal/world/entity"
	"zappy/modules/kit/errx"
	"zappy/modules/kit/logx"
)

const (
	CodeInvalidTeamName errx.Code = "WORLD_INVALID_TEAM_NAME"

	MaxTeamNameLen = rules.MaxTeamNameLen
)

var ErrInvalidTeamName = errx.NewBiz(CodeInvalidTeamName, "invalid team name")

// WorldService 在一个 World 上执行用例并构建视图。只在 WorldActor 的 goroutine 上调用。
type WorldService struct {
	log logx.Logger
}

func NewWorldService(l logx.Logger) *WorldService {
	if l == nil {
		l = logx.Nop()
	}
	return &WorldService{log: l}
}

func (s *WorldService) Map(w *entity.World) messages.WHWorldMap {
	out := messages.WHWorldMap{
		Width:  w.X(),
		Height: w.Y(),
		Tiles:  make([]messages.WorldCell, 0, w.X()*w.Y()),
	}
	for pos, tile := range w.Tiles() {
		cell := messages.WorldCell{X: pos.X, Y: pos.Y}
		if item, ok := tile.Content(); ok {
			cell.Item = item.String()
		}
		out.Tiles = append(out.Tiles, cell)
	}
	return out
}

func (s *WorldService) Players(w *entity.World) messages.WHWorldPlayers {
	return messages.WHWorldPlayers{Cells: occupancy(w)}
}

func (s *WorldService) Stats(w *entity.World) messages.WHWorldStats {
	return messages.WHWorldStats{Stats: stats(w)}
}

func (s *WorldService) Frame(w *entity.World, seq uint64) messages.WHFrame {
	return messages.WHFrame{
		Seq:     seq,
		Map:     s.Map(w),
		Players: occupancy(w),
		Stats:   stats(w),
	}
}

func (s *WorldService) Teams(w *entity.World) messages.WHTeams {
	names := w.Teams()
	out := messages.WHTeams{Teams: make([]messages.WorldTeam, 0, len(names))}
	for _, name := range names {
		t, err := w.Team(name)
		if err != nil {
			continue
		}
		out.Teams = append(out.Teams, teamView(t))
	}
	return out
}

func (s *WorldService) AddTeam(w *entity.World, req messages.HWAddTeam) (messages.WHAddTeam, error) {
	name, err := normalizeTeamName(req.Name)
	if err != nil {
		return messages.WHAddTeam{}, err
	}
	if err = w.AddTeam(name); err != nil {
		return messages.WHAddTeam{}, err
	}
	t, err := w.Team(name)
	if err != nil {
		return messages.WHAddTeam{}, err
	}
	s.log.Info("team added", zap.String("team", name), zap.Int("capacity", t.Capacity()))
	return messages.WHAddTeam{Team: teamView(t)}, nil
}

func (s *WorldService) RemoveTeam(w *entity.World, req messages.HWRemoveTeam) (messages.WHRemoveTeam, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := w.RemoveTeam(req.Name); err != nil {
		return messages.WHRemoveTeam{}, err
	}
	s.log.Info("team removed", zap.String("team", req.Name))
	return messages.WHRemoveTeam{Name: req.Name}, nil
}

func (s *WorldService) AddPlayer(w *entity.World, req messages.HWAddPlayer) (messages.WHAddPlayer, error) {
	req.Team = strings.TrimSpace(req.Team)
	id, err := w.AddPlayer(req.Team)
	if err != nil {
		return messages.WHAddPlayer{}, err
	}
	view, err := playerView(w, req.Team, id)
	if err != nil {
		return messages.WHAddPlayer{}, err
	}
	s.log.Info("player added",
		zap.String("team", req.Team),
		zap.Int("id", id),
		zap.Int("x", view.X),
		zap.Int("y", view.Y),
	)
	return messages.WHAddPlayer{Player: view}, nil
}

func (s *WorldService) RemovePlayer(w *entity.World, req messages.HWRemovePlayer) (messages.WHRemovePlayer, error) {
	req.Team = strings.TrimSpace(req.Team)
	if err := w.RemovePlayer(req.Team, req.ID); err != nil {
		return messages.WHRemovePlayer{}, err
	}
	s.log.Info("player removed", zap.String("team", req.Team), zap.Int("id", req.ID))
	return messages.WHRemovePlayer{Team: req.Team, ID: req.ID}, nil
}

func (s *WorldService) GetPlayer(w *entity.World, req messages.HWGetPlayer) (messages.WHGetPlayer, error) {
	req.Team = strings.TrimSpace(req.Team)
	view, err := playerView(w, req.Team, req.ID)
	if err != nil {
		return messages.WHGetPlayer{}, err
	}
	return messages.WHGetPlayer{Player: view}, nil
}

func (s *WorldService) MovePlayer(w *entity.World, req messages.HWMovePlayer) (messages.WHMovePlayer, error) {
	req.Team = strings.TrimSpace(req.Team)
	if err := w.MovePlayer(req.Team, req.ID, req.X, req.Y); err != nil {
		return messages.WHMovePlayer{}, err
	}
	view, err := playerView(w, req.Team, req.ID)
	if err != nil {
		return messages.WHMovePlayer{}, err
	}
	s.log.Debug("player moved",
		zap.String("team", req.Team),
		zap.Int("id", req.ID),
		zap.Int("x", req.X),
		zap.Int("y", req.Y),
	)
	return messages.WHMovePlayer{Player: view}, nil
}

func (s *WorldService) PickUp(w *entity.World, req messages.HWPickUp) (messages.WHPickUp, error) {
	req.Team = strings.TrimSpace(req.Team)
	item, err := w.PickUp(req.Team, req.ID)
	if err != nil {
		return messages.WHPickUp{}, err
	}
	view, err := playerView(w, req.Team, req.ID)
	if err != nil {
		return messages.WHPickUp{}, err
	}
	s.log.Debug("item picked up",
		zap.String("team", req.Team),
		zap.Int("id", req.ID),
		zap.String("item", item.String()),
	)
	return messages.WHPickUp{Item: item.String(), Player: view}, nil
}

func normalizeTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidTeamName.WithMsg("team name is empty")
	}
	if utf8.RuneCountInString(name) > MaxTeamNameLen {
		return "", ErrInvalidTeamName.
			WithMsgf("team name longer than %d characters", MaxTeamNameLen).
			WithData("team", name)
	}
	return name, nil
}

func teamView(t *entity.Team) messages.WorldTeam {
	return messages.WorldTeam{Name: t.Name(), Capacity: t.Capacity(), Players: t.IDs()}
}

func playerView(w *entity.World, team string, id int) (messages.WorldPlayer, error) {
	p, err := w.Player(team, id)
	if err != nil {
		return messages.WorldPlayer{}, err
	}
	pos, err := w.PlayerPosition(team, id)
	if err != nil {
		return messages.WorldPlayer{}, err
	}
	inv := make(map[string]int)
	for item, n := range p.Inventory() {
		inv[item.String()] = n
	}
	return messages.WorldPlayer{
		Team:      team,
		ID:        id,
		Level:     p.Level(),
		X:         pos.X,
		Y:         pos.Y,
		Inventory: inv,
	}, nil
}

func occupancy(w *entity.World) []messages.WorldOccupancy {
	out := make([]messages.WorldOccupancy, 0)
	for pos, list := range w.Positions() {
		cell := messages.WorldOccupancy{X: pos.X, Y: pos.Y, Occupants: make([]messages.WorldOccupant, 0, len(list))}
		for _, occ := range list {
			cell.Occupants = append(cell.Occupants, messages.WorldOccupant{Team: occ.Team, ID: occ.ID})
		}
		out = append(out, cell)
	}
	return out
}

func stats(w *entity.World) messages.WorldStats {
	st := w.Stats()
	return messages.WorldStats{
		Width:   st.Width,
		Height:  st.Height,
		Tiles:   st.Tiles,
		Filled:  st.Filled,
		Items:   st.Items,
		Teams:   st.Teams,
		Players: st.Players,
	}
}
