package messages

// WorldCell 是一个格子的观察视图，Item 为空表示空格子。
type WorldCell struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Item string `json:"item,omitempty"`
}

type WorldOccupant struct {
	Team string `json:"team"`
	ID   int    `json:"id"`
}

// WorldOccupancy 是一个坐标上按进入顺序排列的玩家。
type WorldOccupancy struct {
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Occupants []WorldOccupant `json:"occupants"`
}

type WorldPlayer struct {
	Team      string         `json:"team"`
	ID        int            `json:"id"`
	Level     int            `json:"level"`
	X         int            `json:"x"`
	Y         int            `json:"y"`
	Inventory map[string]int `json:"inventory"`
}

type WorldTeam struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Players  []int  `json:"players"`
}

type WorldStats struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Tiles   int            `json:"tiles"`
	Filled  int            `json:"filled"`
	Items   map[string]int `json:"items"`
	Teams   int            `json:"teams"`
	Players int            `json:"players"`
}
