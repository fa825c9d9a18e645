package messages

// WorldMessage 是所有发给世界 actor 的请求；WorldID 为 0 时由 manager 路由到默认世界。
type WorldMessage interface {
	WorldID() int
}

type WorldBaseMessage struct {
	WorldId int
}

func (w WorldBaseMessage) WorldID() int {
	return w.WorldId
}

type HWWorldMap struct {
	WorldBaseMessage
}

type WHWorldMap struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Tiles  []WorldCell `json:"tiles"`
}

type HWWorldPlayers struct {
	WorldBaseMessage
}

type WHWorldPlayers struct {
	Cells []WorldOccupancy `json:"cells"`
}

type HWWorldStats struct {
	WorldBaseMessage
}

type WHWorldStats struct {
	Stats WorldStats `json:"stats"`
}

// HWFrame 请求一帧完整观察数据，供 ws 定时推送和 gRPC Snapshot 使用。
type HWFrame struct {
	WorldBaseMessage
}

type WHFrame struct {
	Seq     uint64           `json:"seq"`
	Map     WHWorldMap       `json:"map"`
	Players []WorldOccupancy `json:"players"`
	Stats   WorldStats       `json:"stats"`
}

type HWTeams struct {
	WorldBaseMessage
}

type WHTeams struct {
	Teams []WorldTeam `json:"teams"`
}

type HWAddTeam struct {
	WorldBaseMessage
	Name string
}

type WHAddTeam struct {
	Team WorldTeam `json:"team"`
}

type HWRemoveTeam struct {
	WorldBaseMessage
	Name string
}

type WHRemoveTeam struct {
	Name string `json:"name"`
}

type HWAddPlayer struct {
	WorldBaseMessage
	Team string
}

type WHAddPlayer struct {
	Player WorldPlayer `json:"player"`
}

type HWRemovePlayer struct {
	WorldBaseMessage
	Team string
	ID   int
}

type WHRemovePlayer struct {
	Team string `json:"team"`
	ID   int    `json:"id"`
}

type HWGetPlayer struct {
	WorldBaseMessage
	Team string
	ID   int
}

type WHGetPlayer struct {
	Player WorldPlayer `json:"player"`
}

type HWMovePlayer struct {
	WorldBaseMessage
	Team string
	ID   int
	X, Y int
}

type WHMovePlayer struct {
	Player WorldPlayer `json:"player"`
}

type HWPickUp struct {
	WorldBaseMessage
	Team string
	ID   int
}

type WHPickUp struct {
	Item   string      `json:"item"`
	Player WorldPlayer `json:"player"`
}
