package utils

import (
	"fmt"
	"sync"
	"time"
)

const (
	// 2026-01-01 00:00:00 UTC，单位毫秒
	snowflakeEpochMilli int64 = 1767225600000

	nodeBits uint8 = 10
	seqBits  uint8 = 12

	maxNodeID int64 = -1 ^ (-1 << nodeBits)
	maxSeq    int64 = -1 ^ (-1 << seqBits)

	nodeShift uint8 = seqBits
	timeShift uint8 = nodeBits + seqBits
)

// Snowflake 生成按时间单调递增的 64 位 id：41 位毫秒 | 10 位节点 | 12 位序号。
type Snowflake struct {
	mu     sync.Mutex
	nodeID int64
	lastTS int64
	seq    int64
	now    func() int64
}

func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, fmt.Errorf("snowflake node id out of range: %d", nodeID)
	}
	return &Snowflake{nodeID: nodeID, now: func() int64 { return time.Now().UnixMilli() }}, nil
}

func (s *Snowflake) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	if ts < s.lastTS {
		// 时钟回拨时不回退，保持单调递增。
		ts = s.lastTS
	}

	if ts == s.lastTS {
		s.seq = (s.seq + 1) & maxSeq
		if s.seq == 0 {
			for ts <= s.lastTS {
				ts = s.now()
			}
		}
	} else {
		s.seq = 0
	}

	s.lastTS = ts
	return ((ts - snowflakeEpochMilli) << timeShift) | (s.nodeID << nodeShift) | s.seq
}

// SplitSnowflake 拆出 id 的各段，主要用于排查日志。
func SplitSnowflake(id int64) (at time.Time, nodeID, seq int64) {
	ms := (id >> timeShift) + snowflakeEpochMilli
	return time.UnixMilli(ms), (id >> nodeShift) & maxNodeID, id & maxSeq
}

var (
	defaultMu        sync.Mutex
	defaultSnowflake *Snowflake
)

// InitSnowflake 用 server_id 作为节点号初始化全局生成器，需在启动时调用一次。
func InitSnowflake(nodeID int64) error {
	gen, err := NewSnowflake(nodeID)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defaultSnowflake = gen
	defaultMu.Unlock()
	return nil
}

// NextSnowflakeID 使用全局生成器；未初始化时按节点 0 惰性创建。
func NextSnowflakeID() int64 {
	defaultMu.Lock()
	if defaultSnowflake == nil {
		defaultSnowflake, _ = NewSnowflake(0)
	}
	gen := defaultSnowflake
	defaultMu.Unlock()
	return gen.NextID()
}
