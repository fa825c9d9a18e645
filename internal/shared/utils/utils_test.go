package utils

import (
	"testing"
)

func TestSnowflake_单调递增且可拆分(t *testing.T) {
	gen, err := NewSnowflake(7)
	if err != nil {
		t.Fatalf("NewSnowflake err=%v", err)
	}
	prev := int64(-1)
	for i := 0; i < 10000; i++ {
		id := gen.NextID()
		if id <= prev {
			t.Fatalf("id 不递增: %d <= %d", id, prev)
		}
		prev = id
	}
	_, node, _ := SplitSnowflake(prev)
	if node != 7 {
		t.Fatalf("node=%d, want 7", node)
	}
}

func TestSnowflake_时钟回拨不回退(t *testing.T) {
	gen, _ := NewSnowflake(1)
	clock := []int64{snowflakeEpochMilli + 100, snowflakeEpochMilli + 50, snowflakeEpochMilli + 101}
	i := 0
	gen.now = func() int64 {
		v := clock[min(i, len(clock)-1)]
		i++
		return v
	}
	a := gen.NextID()
	b := gen.NextID()
	if b <= a {
		t.Fatalf("回拨后 id 回退: %d <= %d", b, a)
	}
}

func TestNewSnowflake_节点越界(t *testing.T) {
	if _, err := NewSnowflake(maxNodeID + 1); err == nil {
		t.Fatalf("期望节点越界报错")
	}
}

func TestNewRand_同种子同序列(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 100; i++ {
		if a.IntN(1000) != b.IntN(1000) {
			t.Fatalf("第 %d 次结果不同", i)
		}
	}
	if s := RandSeq(16); len(s) != 16 {
		t.Fatalf("RandSeq 长度=%d", len(s))
	}
}
