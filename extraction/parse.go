package extraction

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/BaSui01/onboardflow/types"
)

// ParseResponse 从模型输出中解析候选记录。
// 容忍 markdown 代码块、前后多余文字、数组包裹以及 {"employee": {...}} 嵌套；
// 键名大小写与常见别名都可识别。
func ParseResponse(content string) (types.CandidateRecord, error) {
	body := extractJSON(content)
	if body == "" {
		return types.CandidateRecord{}, &Error{Kind: KindUnparsableResponse, Message: "response contains no JSON object"}
	}

	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return types.CandidateRecord{}, &Error{Kind: KindUnparsableResponse, Message: "response is not valid JSON", Cause: err}
	}

	obj, ok := firstObject(raw)
	if !ok {
		return types.CandidateRecord{}, &Error{Kind: KindUnparsableResponse, Message: "response is not a JSON object"}
	}

	var rec types.CandidateRecord
	found := false
	for k, v := range obj {
		f, ok := types.ParseField(strings.ReplaceAll(k, "_", " "))
		if !ok {
			f, ok = types.ParseField(k)
		}
		if !ok {
			continue
		}
		s, ok := scalarString(v)
		if !ok {
			continue
		}
		// 规范键名优先于别名
		if _, set := rec.Get(f); set && !strings.EqualFold(k, string(f)) {
			continue
		}
		rec.Set(f, s)
		found = true
	}
	if !found {
		return types.CandidateRecord{}, &Error{Kind: KindUnparsableResponse, Message: "response has none of the expected fields"}
	}
	return rec, nil
}

// extractJSON 截取第一个 '{' 或 '[' 到与之匹配类型的最后一个括号
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closing := "}"
	if s[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(s, closing)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

func firstObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		for _, wrapper := range []string{"employee", "record", "data"} {
			if inner, ok := t[wrapper].(map[string]any); ok {
				return inner, true
			}
		}
		return t, true
	case []any:
		for _, item := range t {
			if obj, ok := firstObject(item); ok {
				return obj, true
			}
		}
	}
	return nil, false
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}
