package luascript

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// toGo converts a Lua value to its Go form. Numbers always become float64 so
// values match those decoded from HCL definitions. hint is the Go value the
// table replaces, if any; it decides whether an empty table is a list or a
// map.
func toGo(lv lua.LValue, hint any) any {
	return toGoVisited(lv, hint, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, hint any, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case nil:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, hint, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a sequence to []any and anything else to
// map[string]any.
func tableToGo(t *lua.LTable, hint any, visited map[*lua.LTable]bool) any {
	isArray := true
	count, maxN := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				maxN = max(maxN, n)
				return
			}
		}
		isArray = false
	})

	if count == 0 {
		if _, ok := hint.([]any); ok {
			return []any{}
		}
		return map[string]any{}
	}

	if isArray && count == maxN {
		hints, _ := hint.([]any)
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			var h any
			if i <= len(hints) {
				h = hints[i-1]
			}
			arr[i-1] = toGoVisited(t.RawGetInt(i), h, visited)
		}
		return arr
	}

	hints, _ := hint.(map[string]any)
	return tableToMap(t, hints, visited)
}

// toGoMap converts a table that stands for a state mapping. Integer keys
// become string keys instead of turning the table into a list.
func toGoMap(t *lua.LTable, hint map[string]any) map[string]any {
	visited := map[*lua.LTable]bool{t: true}
	return tableToMap(t, hint, visited)
}

func tableToMap(t *lua.LTable, hints map[string]any, visited map[*lua.LTable]bool) map[string]any {
	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = toGoVisited(v, hints[key], visited)
	})
	return m
}

// toLua converts a Go value into a Lua value owned by L. Values without a
// Lua counterpart travel as userdata and come back unchanged.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []any:
		t := L.CreateTable(len(val), 0)
		for i, item := range val {
			t.RawSetInt(i+1, toLua(L, item))
		}
		return t
	case []string:
		t := L.CreateTable(len(val), 0)
		for i, item := range val {
			t.RawSetInt(i+1, lua.LString(item))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(val))
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}
