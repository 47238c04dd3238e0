package schema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// JSONMap 以 JSON 文本列存储的摘要字段，读取时数字一律为 float64
type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("编码 JSONMap 失败: %w", err)
	}
	return string(b), nil
}

// Scan NULL 与空串读为空 map
func (j *JSONMap) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("JSONMap 不支持的列类型 %T", value)
	}

	out := make(JSONMap)
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("解析 JSONMap 失败: %w", err)
		}
	}
	*j = out
	return nil
}

func GetString(meta JSONMap, key string) string {
	s, _ := meta[key].(string)
	return strings.TrimSpace(s)
}

// GetInt 兼容写入前的 int 与读回后的 float64
func GetInt(meta JSONMap, key string) int {
	switch n := meta[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
