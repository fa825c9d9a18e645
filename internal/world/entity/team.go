package entity

// Team 是定长的玩家名册，槽位号即玩家 id。
type Team struct {
	name    string
	players []*Player
}

func NewTeam(name string, capacity int) *Team {
	if capacity < 0 {
		capacity = 0
	}
	return &Team{
		name:    name,
		players: make([]*Player, capacity),
	}
}

func (t *Team) Name() string {
	return t.name
}

func (t *Team) Capacity() int {
	return len(t.players)
}

// Len 返回已占用的槽位数。
func (t *Team) Len() int {
	n := 0
	for _, p := range t.players {
		if p != nil {
			n++
		}
	}
	return n
}

// AddPlayer 按升序扫描，总是占用最小的空闲槽位。
func (t *Team) AddPlayer() (int, error) {
	for i, p := range t.players {
		if p == nil {
			t.players[i] = NewPlayer()
			return i, nil
		}
	}
	return 0, teamIsFull(t.name)
}

func (t *Team) RemovePlayer(id int) error {
	if _, err := t.Player(id); err != nil {
		return err
	}
	t.players[id] = nil
	return nil
}

// Player 与 RemovePlayer 使用同样的失败语义：越界 / 槽位为空。
func (t *Team) Player(id int) (*Player, error) {
	if id < 0 || id >= len(t.players) {
		return nil, playerOutOfBounds(t.name, id)
	}
	p := t.players[id]
	if p == nil {
		return nil, playerNotFound(t.name, id)
	}
	return p, nil
}

// IDs 按升序返回已占用的槽位号。
func (t *Team) IDs() []int {
	ids := make([]int, 0, len(t.players))
	for i, p := range t.players {
		if p != nil {
			ids = append(ids, i)
		}
	}
	return ids
}

func (t *Team) occupied(id int) bool {
	return id >= 0 && id < len(t.players) && t.players[id] != nil
}
