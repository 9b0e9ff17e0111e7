package arena

import "encoding/json"

// Document 竞技场服务返回的 JSON 文档，结构由服务端决定，客户端不做解释。
// 数字以 json.Number 保存
type Document struct {
	Value any
}

// Object 文档为 JSON 对象时返回其字段
func (d Document) Object() (map[string]any, bool) {
	m, ok := d.Value.(map[string]any)
	return m, ok
}

// MarshalJSON 原样重新编码，便于日志与转发
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value)
}

// String 紧凑 JSON 形式，编码失败时返回空串
func (d Document) String() string {
	b, err := json.Marshal(d.Value)
	if err != nil {
		return ""
	}
	return string(b)
}
