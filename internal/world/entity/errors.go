package entity

import "zappy/modules/kit/errx"

// Code 表示世界领域错误码。全部是调用方可纠正的前置条件违例。
type Code = errx.Code

const (
	CodeInvalidOreNumber    Code = "WORLD_INVALID_ORE_NUMBER"
	CodeInvalidItem         Code = "WORLD_INVALID_ITEM"
	CodeTeamExists          Code = "WORLD_TEAM_EXISTS"
	CodeTeamDoesntExist     Code = "WORLD_TEAM_DOESNT_EXIST"
	CodeTeamIsFull          Code = "WORLD_TEAM_IS_FULL"
	CodePlayerOutOfBounds   Code = "WORLD_PLAYER_OUT_OF_BOUNDS"
	CodePlayerNotFound      Code = "WORLD_PLAYER_NOT_FOUND"
	CodePositionOutOfBounds Code = "WORLD_POSITION_OUT_OF_BOUNDS"
	CodeMaxLevel            Code = "WORLD_PLAYER_MAX_LEVEL"
	CodeTileEmpty           Code = "WORLD_TILE_EMPTY"
)

// 哨兵错误：errors.Is 只比较 code，实际返回的错误会带上 team/id 等上下文。
var (
	ErrInvalidOreNumber    = errx.NewBiz(CodeInvalidOreNumber, "invalid ore number")
	ErrInvalidItem         = errx.NewBiz(CodeInvalidItem, "invalid item")
	ErrTeamExists          = errx.NewBiz(CodeTeamExists, "team already exists")
	ErrTeamDoesntExist     = errx.NewBiz(CodeTeamDoesntExist, "team doesn't exist")
	ErrTeamIsFull          = errx.NewBiz(CodeTeamIsFull, "team is full")
	ErrPlayerOutOfBounds   = errx.NewBiz(CodePlayerOutOfBounds, "player id out of bounds")
	ErrPlayerNotFound      = errx.NewBiz(CodePlayerNotFound, "player not found")
	ErrPositionOutOfBounds = errx.NewBiz(CodePositionOutOfBounds, "position out of bounds")
	ErrMaxLevel            = errx.NewBiz(CodeMaxLevel, "player already at max level")
	ErrTileEmpty           = errx.NewBiz(CodeTileEmpty, "tile is empty")
)

func invalidOreNumber(n int) error {
	return ErrInvalidOreNumber.WithMsgf("invalid ore number %d", n).WithData("n", n)
}

func teamExists(name string) error {
	return ErrTeamExists.WithMsgf("team '%s' already exists", name).WithData("team", name)
}

func teamDoesntExist(name string) error {
	return ErrTeamDoesntExist.WithMsgf("team '%s' doesn't exist", name).WithData("team", name)
}

func teamIsFull(name string) error {
	return ErrTeamIsFull.WithMsgf("team '%s' is full", name).WithData("team", name)
}

func playerOutOfBounds(name string, id int) error {
	return ErrPlayerOutOfBounds.
		WithMsgf("player id %d out of bounds for team '%s'", id, name).
		WithDataMap(map[string]any{"team": name, "id": id})
}

func playerNotFound(name string, id int) error {
	return ErrPlayerNotFound.
		WithMsgf("no player with id %d found in team '%s'", id, name).
		WithDataMap(map[string]any{"team": name, "id": id})
}

func positionOutOfBounds(x, y int) error {
	return ErrPositionOutOfBounds.
		WithMsgf("position (%d, %d) is outside the map", x, y).
		WithDataMap(map[string]any{"x": x, "y": y})
}
