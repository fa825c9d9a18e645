package messages

// WorldReply 是 WorldActor 对每个请求的统一回复；Err 非空时 Body 无意义。
// 进程内 actor 之间直接传递 error，不做序列化。
type WorldReply struct {
	Body any
	Err  error
}

// HWPing 用于启动探活和健康检查，回复 WHPing。
type HWPing struct {
	WorldBaseMessage
}

type WHPing struct {
	WorldID int    `json:"world_id"`
	State   string `json:"state"`
	Version uint64 `json:"version"`
}
