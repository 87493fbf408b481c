package blobstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound     = errors.New("object not found")
	ErrBadSignature = errors.New("invalid or expired signature")
)

// Object is a stored blob and a URL it can be fetched from.
type Object struct {
	Path string
	URL  string
}

type ObjectInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps objects in process memory. It backs local runs without
// S3 credentials and the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
	Now     func() time.Time

	// set by NewServedMemoryStore
	baseURL string
	secret  []byte
}

// NewMemoryStore returns a store whose URLs use the memory:// scheme and
// cannot be fetched.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: map[string]memoryObject{}, Now: time.Now}
}

// NewServedMemoryStore returns a store whose signed URLs point at
// {baseURL}/files/{path}, checked with VerifySignature.
func NewServedMemoryStore(baseURL string, secret []byte) *MemoryStore {
	m := NewMemoryStore("local")
	m.baseURL = strings.TrimRight(baseURL, "/")
	m.secret = secret
	return m
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (*Object, error) {
	if key == "" {
		return nil, fmt.Errorf("memory put: empty key")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = memoryObject{data: buf, contentType: contentType, modified: m.Now()}
	m.mu.Unlock()

	return &Object{Path: key, URL: m.url(key, 0)}, nil
}

func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return ErrNotFound
	}
	delete(m.objects, path)
	return nil
}

func (m *MemoryStore) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[path]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return m.url(path, ttl), nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ObjectInfo, 0, len(m.objects))
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Path: k, Size: int64(len(o.data)), LastModified: o.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Get returns a copy of the stored bytes.
func (m *MemoryStore) Get(path string) ([]byte, bool) {
	data, _, ok := m.Read(path)
	return data, ok
}

// Read returns a copy of the object's bytes and its content type.
func (m *MemoryStore) Read(path string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[path]
	if !ok {
		return nil, "", false
	}
	buf := make([]byte, len(o.data))
	copy(buf, o.data)
	return buf, o.contentType, true
}

// VerifySignature checks the expires and signature query values of a URL
// issued by a served store.
func (m *MemoryStore) VerifySignature(path, expires, signature string) error {
	if len(m.secret) == 0 {
		return ErrBadSignature
	}
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || m.Now().Unix() > unix {
		return ErrBadSignature
	}
	got, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(got, m.sign(path, expires)) {
		return ErrBadSignature
	}
	return nil
}

func (m *MemoryStore) sign(path, expires string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(path + "\n" + expires))
	return mac.Sum(nil)
}

func (m *MemoryStore) url(path string, ttl time.Duration) string {
	if m.baseURL != "" {
		if ttl <= 0 {
			return m.baseURL + "/files/" + path
		}
		expires := strconv.FormatInt(m.Now().Add(ttl).Unix(), 10)
		q := url.Values{"expires": {expires}, "signature": {hex.EncodeToString(m.sign(path, expires))}}
		return m.baseURL + "/files/" + path + "?" + q.Encode()
	}
	u := url.URL{Scheme: "memory", Host: m.bucket, Path: "/" + path}
	if ttl > 0 {
		u.RawQuery = url.Values{"expires": {m.Now().Add(ttl).UTC().Format(time.RFC3339)}}.Encode()
	}
	return u.String()
}
