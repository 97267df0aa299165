package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

// downloadTTL 下载链接有效期
const downloadTTL = 10 * time.Minute

var errTokenNotFound = errors.New("download link expired or not found")

type download struct {
	filename    string
	contentType string
	data        []byte
	expiresAt   time.Time
}

// downloadStore 一次性下载令牌，内容保存在内存
type downloadStore struct {
	mu    sync.Mutex
	items map[string]download
	now   func() time.Time
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]download),
		now:   time.Now,
	}
}

func (s *downloadStore) put(filename, contentType string, data []byte, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token = newRandomToken(24)
	s.items[token] = download{
		filename:    filename,
		contentType: contentType,
		data:        data,
		expiresAt:   now.Add(ttl),
	}
	return token
}

// take 取出并删除令牌对应的内容
func (s *downloadStore) take(token string) (download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	if !ok {
		return download{}, errTokenNotFound
	}
	delete(s.items, token)
	return v, nil
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
