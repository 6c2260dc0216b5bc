package idgen

import (
	"fmt"
	"sync"
	"time"
)

// 雪花算法 64 位结构
//
//	0 - 41位时间戳 - 10位机器ID - 12位序列号
//
// 用于生成金币流水号，不依赖数据库自增
const (
	epoch          = int64(1704067200000) // 2024-01-01 00:00:00 UTC
	workerIDBits   = 10
	sequenceBits   = 12
	maxWorkerID    = -1 ^ (-1 << workerIDBits)
	maxSequence    = -1 ^ (-1 << sequenceBits)
	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

// Snowflake 雪花算法ID生成器，并发安全
type Snowflake struct {
	mu        sync.Mutex
	timestamp int64
	workerID  int64
	sequence  int64
	now       func() time.Time
}

// New 创建生成器，workerID 范围 0-1023
func New(workerID int64) (*Snowflake, error) {
	if workerID < 0 || workerID > maxWorkerID {
		return nil, fmt.Errorf("workerID 必须在 0-%d 之间", maxWorkerID)
	}
	return &Snowflake{workerID: workerID, now: time.Now}, nil
}

// Generate 生成ID
func (s *Snowflake) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()

	if now <= s.timestamp {
		// 同一毫秒或时钟回拨，沿用上次时间戳递增序列号
		now = s.timestamp
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// 序列号用完，等待下一毫秒
			for now <= s.timestamp {
				now = s.now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}

	s.timestamp = now

	return ((now - epoch) << timestampShift) |
		(s.workerID << workerIDShift) |
		s.sequence
}

// TransactionNo 生成金币流水号
// 格式：GLD + 年月日时分秒 + 雪花ID，例如 GLD20240115143052123456789012345
func (s *Snowflake) TransactionNo() string {
	id := s.Generate()
	return fmt.Sprintf("GLD%s%d", time.Now().Format("20060102150405"), id)
}
