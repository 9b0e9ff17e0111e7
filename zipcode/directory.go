package zipcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNotLoaded 目录尚未加载（Uninitialized 状态）
	ErrNotLoaded = errors.New("zipcode: directory not loaded")
	// ErrNotFound 没有与邮编完全匹配的记录
	ErrNotFound = errors.New("zipcode: no matching place")
)

// Place 一条邮编记录，字段名与静态资源 places.json 一致
type Place struct {
	Zipcode string `json:"zipcode"`
	Place   string `json:"place"`
}

// Form 表单中参与自动填充的两个字段
type Form struct {
	Zip  string
	City string
}

// Directory 有序的邮编列表。状态：Uninitialized → Loaded，加载成功后才可查询
type Directory struct {
	mu     sync.RWMutex
	places []Place
	loaded bool
	log    *zap.SugaredLogger
}

// NewDirectory 创建未加载的目录；log 为 nil 时不输出诊断
func NewDirectory(log *zap.SugaredLogger) *Directory {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Directory{log: log}
}

// Load 从 JSON 数组读取记录并保持原有顺序。失败时不改变当前状态
func (d *Directory) Load(r io.Reader) error {
	var places []Place
	if err := json.NewDecoder(r).Decode(&places); err != nil {
		return fmt.Errorf("decode places: %w", err)
	}
	d.mu.Lock()
	d.places = places
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// LoadFile 从静态资源文件加载
func (d *Directory) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open places: %w", err)
	}
	defer f.Close()
	if err := d.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	d.log.Infof("loaded %d places from %s", d.Len(), path)
	return nil
}

// Loaded 是否已进入 Loaded 状态
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Len 记录条数
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.places)
}

// Lookup 线性扫描，返回第一条邮编完全相等的记录
func (d *Directory) Lookup(zip string) (Place, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.loaded {
		return Place{}, ErrNotLoaded
	}
	for _, p := range d.places {
		if p.Zipcode == zip {
			return p, nil
		}
	}
	return Place{}, ErrNotFound
}

// PopulateCity 按邮编填充城市字段。未命中时保留原值并输出诊断
func (d *Directory) PopulateCity(form *Form) bool {
	p, err := d.Lookup(form.Zip)
	switch {
	case err == nil:
		form.City = p.Place
		return true
	case errors.Is(err, ErrNotLoaded):
		d.log.Warnf("Places not loaded yet, cannot look up %s", form.Zip)
	default:
		d.log.Infof("No city found for %s", form.Zip)
	}
	return false
}
