package entity

import (
	"cmp"
	"iter"
	"slices"
)

// DefaultTeamSize 是未配置时每支队伍的槽位数。
const DefaultTeamSize = 6

type WorldID int

// Position 是格子坐标，线性下标为 Y*width + X。
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Occupant 是位置索引里的反向引用：按 (队伍名, 槽位号) 取值引用，不持有玩家指针。
type Occupant struct {
	Team string `json:"team"`
	ID   int    `json:"id"`
}

// SpawnPolicy 决定新玩家出生的格子。
type SpawnPolicy func(width, height int) Position

// OriginSpawn 把所有新玩家放在 (0,0)。
func OriginSpawn() SpawnPolicy {
	return func(int, int) Position { return Position{} }
}

// RandomSpawn 在整个地图上均匀选择出生点。
func RandomSpawn(rng Rand) SpawnPolicy {
	return func(width, height int) Position {
		if width <= 0 || height <= 0 {
			return Position{}
		}
		return Position{X: rng.IntN(width), Y: rng.IntN(height)}
	}
}

type Option func(*World)

func WithID(id WorldID) Option {
	return func(w *World) { w.id = id }
}

// WithTeamSize 设置该世界所有队伍的容量，世界创建后不可修改。
func WithTeamSize(n int) Option {
	return func(w *World) {
		if n >= 0 {
			w.teamSize = n
		}
	}
}

func WithSpawnPolicy(p SpawnPolicy) Option {
	return func(w *World) {
		if p != nil {
			w.spawn = p
		}
	}
}

// World 聚合地图格子、队伍与位置索引。非并发安全，由唯一持有者串行访问。
//
// 不变量：
//   - positions 与 where 互为索引，且只引用当前已占用的槽位
//   - 队伍名唯一，每支队伍容量都等于 teamSize
type World struct {
	id        WorldID
	width     int
	height    int
	teamSize  int
	tiles     []Tile
	teams     map[string]*Team
	positions map[Position][]Occupant
	where     map[Occupant]Position
	spawn     SpawnPolicy
	dirty     bool
}

// NewWorld 创建全空的世界。负数尺寸按 0 处理。
func NewWorld(x, y int, opts ...Option) *World {
	x, y = max(x, 0), max(y, 0)
	w := &World{
		width:     x,
		height:    y,
		teamSize:  DefaultTeamSize,
		tiles:     make([]Tile, x*y),
		teams:     make(map[string]*Team),
		positions: make(map[Position][]Occupant),
		where:     make(map[Occupant]Position),
		spawn:     OriginSpawn(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) ID() WorldID {
	return w.id
}

func (w *World) X() int {
	return w.width
}

func (w *World) Y() int {
	return w.height
}

func (w *World) TeamSize() int {
	return w.teamSize
}

func (w *World) Dirty() bool {
	return w.dirty
}

func (w *World) ClearDirty() {
	w.dirty = false
}

func (w *World) MarkDirty() {
	w.dirty = true
}

// Index 把坐标换算为线性下标，越界 ok=false。
func (w *World) Index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return 0, false
	}
	return y*w.width + x, true
}

func (w *World) positionOf(i int) Position {
	return Position{X: i % w.width, Y: i / w.width}
}

func (w *World) TileAt(x, y int) (Tile, bool) {
	i, ok := w.Index(x, y)
	if !ok {
		return Tile{}, false
	}
	return w.tiles[i], true
}

func (w *World) TileAtIndex(i int) (Tile, bool) {
	if i < 0 || i >= len(w.tiles) {
		return Tile{}, false
	}
	return w.tiles[i], true
}

// TileAtMut 返回可修改的格子，并把世界标记为脏。
func (w *World) TileAtMut(x, y int) (*Tile, bool) {
	i, ok := w.Index(x, y)
	if !ok {
		return nil, false
	}
	return w.TileAtIndexMut(i)
}

func (w *World) TileAtIndexMut(i int) (*Tile, bool) {
	if i < 0 || i >= len(w.tiles) {
		return nil, false
	}
	w.dirty = true
	return &w.tiles[i], true
}

// Tiles 按行优先顺序惰性遍历所有格子。
func (w *World) Tiles() iter.Seq2[Position, Tile] {
	return func(yield func(Position, Tile) bool) {
		for i, t := range w.tiles {
			if !yield(w.positionOf(i), t) {
				return
			}
		}
	}
}

func (w *World) Team(name string) (*Team, error) {
	t, ok := w.teams[name]
	if !ok {
		return nil, teamDoesntExist(name)
	}
	return t, nil
}

// Teams 返回按名字排序的队伍名。
func (w *World) Teams() []string {
	names := make([]string, 0, len(w.teams))
	for name := range w.teams {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (w *World) AddTeam(name string) error {
	if _, ok := w.teams[name]; ok {
		return teamExists(name)
	}
	w.teams[name] = NewTeam(name, w.teamSize)
	w.dirty = true
	return nil
}

// RemoveTeam 删除队伍，并同步清理该队伍在位置索引里的全部条目。
func (w *World) RemoveTeam(name string) error {
	t, ok := w.teams[name]
	if !ok {
		return teamDoesntExist(name)
	}
	for _, id := range t.IDs() {
		w.unplace(Occupant{Team: name, ID: id})
	}
	delete(w.teams, name)
	w.dirty = true
	return nil
}

// AddPlayer 先校验队伍存在，再分配槽位，并按出生策略写入位置索引。
func (w *World) AddPlayer(teamName string) (int, error) {
	t, ok := w.teams[teamName]
	if !ok {
		return 0, teamDoesntExist(teamName)
	}
	id, err := t.AddPlayer()
	if err != nil {
		return 0, err
	}
	w.place(w.spawn(w.width, w.height), Occupant{Team: teamName, ID: id})
	w.dirty = true
	return id, nil
}

// RemovePlayer 释放槽位，并在同一步里清理位置索引。
func (w *World) RemovePlayer(teamName string, id int) error {
	t, ok := w.teams[teamName]
	if !ok {
		return teamDoesntExist(teamName)
	}
	if err := t.RemovePlayer(id); err != nil {
		return err
	}
	w.unplace(Occupant{Team: teamName, ID: id})
	w.dirty = true
	return nil
}

// Player 返回玩家数据的拷贝；失败语义与 RemovePlayer 相同。
func (w *World) Player(teamName string, id int) (Player, error) {
	p, err := w.lookup(teamName, id)
	if err != nil {
		return Player{}, err
	}
	return *p.clone(), nil
}

// PlayerMut 返回可修改的玩家，并把世界标记为脏。
func (w *World) PlayerMut(teamName string, id int) (*Player, error) {
	p, err := w.lookup(teamName, id)
	if err != nil {
		return nil, err
	}
	w.dirty = true
	return p, nil
}

func (w *World) lookup(teamName string, id int) (*Player, error) {
	t, ok := w.teams[teamName]
	if !ok {
		return nil, teamDoesntExist(teamName)
	}
	return t.Player(id)
}

func (w *World) PlayerPosition(teamName string, id int) (Position, error) {
	if _, err := w.lookup(teamName, id); err != nil {
		return Position{}, err
	}
	return w.where[Occupant{Team: teamName, ID: id}], nil
}

// MovePlayer 把玩家移到 (x,y)，在新格子的玩家列表末尾追加。
func (w *World) MovePlayer(teamName string, id, x, y int) error {
	if _, err := w.lookup(teamName, id); err != nil {
		return err
	}
	if _, ok := w.Index(x, y); !ok {
		return positionOutOfBounds(x, y)
	}
	occ := Occupant{Team: teamName, ID: id}
	w.unplace(occ)
	w.place(Position{X: x, Y: y}, occ)
	w.dirty = true
	return nil
}

// PickUp 把玩家所在格子的物品放进背包。
func (w *World) PickUp(teamName string, id int) (Item, error) {
	p, err := w.lookup(teamName, id)
	if err != nil {
		return Item{}, err
	}
	pos := w.where[Occupant{Team: teamName, ID: id}]
	i, ok := w.Index(pos.X, pos.Y)
	if !ok {
		return Item{}, positionOutOfBounds(pos.X, pos.Y)
	}
	item, ok := w.tiles[i].Take()
	if !ok {
		return Item{}, ErrTileEmpty.WithDataMap(map[string]any{"x": pos.X, "y": pos.Y})
	}
	p.AddItem(item, 1)
	w.dirty = true
	return item, nil
}

// PlayersAt 返回某格子上的玩家（按进入顺序），查询时重新校验槽位。
func (w *World) PlayersAt(x, y int) []Occupant {
	return w.validOccupants(w.positions[Position{X: x, Y: y}])
}

// Positions 按行优先顺序惰性遍历所有有玩家的格子。
func (w *World) Positions() iter.Seq2[Position, []Occupant] {
	return func(yield func(Position, []Occupant) bool) {
		keys := make([]Position, 0, len(w.positions))
		for pos := range w.positions {
			keys = append(keys, pos)
		}
		slices.SortFunc(keys, func(a, b Position) int {
			if c := cmp.Compare(a.Y, b.Y); c != 0 {
				return c
			}
			return cmp.Compare(a.X, b.X)
		})
		for _, pos := range keys {
			occ := w.validOccupants(w.positions[pos])
			if len(occ) == 0 {
				continue
			}
			if !yield(pos, occ) {
				return
			}
		}
	}
}

func (w *World) validOccupants(list []Occupant) []Occupant {
	out := make([]Occupant, 0, len(list))
	for _, occ := range list {
		if t, ok := w.teams[occ.Team]; ok && t.occupied(occ.ID) {
			out = append(out, occ)
		}
	}
	return out
}

func (w *World) place(pos Position, occ Occupant) {
	w.positions[pos] = append(w.positions[pos], occ)
	w.where[occ] = pos
}

func (w *World) unplace(occ Occupant) {
	pos, ok := w.where[occ]
	if !ok {
		return
	}
	delete(w.where, occ)
	list := slices.DeleteFunc(w.positions[pos], func(o Occupant) bool { return o == occ })
	if len(list) == 0 {
		delete(w.positions, pos)
		return
	}
	w.positions[pos] = list
}

// Stats 是世界的汇总计数。
type Stats struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Tiles   int            `json:"tiles"`
	Filled  int            `json:"filled"`
	Items   map[string]int `json:"items"`
	Teams   int            `json:"teams"`
	Players int            `json:"players"`
}

func (w *World) Stats() Stats {
	s := Stats{
		Width:  w.width,
		Height: w.height,
		Tiles:  len(w.tiles),
		Items:  make(map[string]int, ItemKinds),
		Teams:  len(w.teams),
	}
	for _, t := range w.tiles {
		if item, ok := t.Content(); ok {
			s.Filled++
			s.Items[item.String()]++
		}
	}
	for _, t := range w.teams {
		s.Players += t.Len()
	}
	return s
}
