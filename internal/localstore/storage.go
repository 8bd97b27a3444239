package localstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Storage 字符串键值存储
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage 内存实现，用于测试
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage 创建内存存储
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

const (
	// ChunkSize 单个 cookie 保存的最大字节数，签名和两次 base64 编码后仍低于浏览器 4KB 上限
	ChunkSize = 2000
	// HistorySession 搜索历史所在的 cookie
	HistorySession = "cinema"
	// FollowedSessionPrefix 关注列表分片 cookie 的前缀
	FollowedSessionPrefix = "cinema-f"
	// FollowedChunks 关注列表最多使用的 cookie 数
	FollowedChunks = 24
)

// ErrValueTooLarge 值超出全部分片的容量
var ErrValueTooLarge = errors.New("localstore: value exceeds cookie capacity")

// SessionStorage 基于 cookie session 的存储，数据保存在浏览器端。
// 较长的值按 ChunkSize 拆分，第 i 片保存在第 i 个 session 中。
type SessionStorage struct {
	sessions []sessions.Session
}

// NewSessionStorage 包装当前请求的 session，按顺序作为分片使用
func NewSessionStorage(ss ...sessions.Session) *SessionStorage {
	return &SessionStorage{sessions: ss}
}

// SessionNames 需要注册到 sessions.SessionsMany 的全部 cookie 名
func SessionNames() []string {
	return append([]string{HistorySession}, followedSessionNames()...)
}

// HistoryStorage 当前浏览器的搜索历史存储
func HistoryStorage(c *gin.Context) *SessionStorage {
	return NewSessionStorage(sessions.DefaultMany(c, HistorySession))
}

// FollowedStorage 当前浏览器的关注列表存储
func FollowedStorage(c *gin.Context) *SessionStorage {
	names := followedSessionNames()
	ss := make([]sessions.Session, len(names))
	for i, name := range names {
		ss[i] = sessions.DefaultMany(c, name)
	}
	return NewSessionStorage(ss...)
}

func followedSessionNames() []string {
	names := make([]string, FollowedChunks)
	for i := range names {
		names[i] = FollowedSessionPrefix + strconv.Itoa(i)
	}
	return names
}

func (s *SessionStorage) Get(key string) (string, bool) {
	var b strings.Builder
	found := false
	for _, sess := range s.sessions {
		v, ok := sess.Get(key).(string)
		if !ok {
			break
		}
		found = true
		b.WriteString(v)
	}
	return b.String(), found
}

// Set 写入全部分片，只保存内容有变化的 session
func (s *SessionStorage) Set(key, value string) error {
	chunks := splitChunks(value, ChunkSize)
	if len(chunks) > len(s.sessions) {
		return fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(value))
	}
	for i, sess := range s.sessions {
		old, had := sess.Get(key).(string)
		switch {
		case i < len(chunks):
			if had && old == chunks[i] {
				continue
			}
			sess.Set(key, chunks[i])
		case had:
			sess.Delete(key)
		default:
			continue
		}
		if err := sess.Save(); err != nil {
			return err
		}
	}
	return nil
}

func (s *SessionStorage) Remove(key string) error {
	for _, sess := range s.sessions {
		if sess.Get(key) == nil {
			continue
		}
		sess.Delete(key)
		if err := sess.Save(); err != nil {
			return err
		}
	}
	return nil
}

// splitChunks 按字节切分，空串也占一片
func splitChunks(value string, size int) []string {
	chunks := make([]string, 0, len(value)/size+1)
	for len(value) > size {
		chunks = append(chunks, value[:size])
		value = value[size:]
	}
	return append(chunks, value)
}
