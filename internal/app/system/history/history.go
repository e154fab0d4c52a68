// internal/app/system/history/history.go
package history

// Field-level change tracking for member documents. Diff walks two
// JSON-shaped documents and emits one ChangeRecord per changed leaf,
// skipping volatile/internal keys. The member's historico is the
// concatenation of all past change-sets and is never rewritten.

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ibbtech/memberhub/internal/domain/models"
)

// skipKeys are key segments that never enter the audit trail.
var skipKeys = map[string]bool{
	"autenticacao": true,
	"_id":          true,
	"historico":    true,
	"createdAt":    true,
	"updatedAt":    true,
	"id":           true,
	"is_member":    true,
}

// Doc converts any bson/json-tagged value into the canonical JSON-shaped
// map Diff operates on. Equality inside Diff is JSON value equality, so
// both sides must go through the same conversion.
func Doc(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Diff compares two documents and returns the change records, depth-first
// with sorted keys at each level. now stamps every record.
func Diff(oldDoc, newDoc map[string]any, now time.Time) []models.ChangeRecord {
	var changes []models.ChangeRecord
	compare("", oldDoc, newDoc, now, &changes)
	return changes
}

func compare(prefix string, oldVal, newVal any, now time.Time, out *[]models.ChangeRecord) {
	if prefix != "" {
		seg := prefix
		if i := strings.LastIndex(prefix, "."); i >= 0 {
			seg = prefix[i+1:]
		}
		if skipKeys[seg] {
			return
		}
	}

	oldMap, oldIsMap := oldVal.(map[string]any)
	newMap, newIsMap := newVal.(map[string]any)
	if oldIsMap && newIsMap {
		for _, key := range unionKeys(oldMap, newMap) {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			compare(path, oldMap[key], newMap[key], now, out)
		}
		return
	}

	oldArr, oldIsArr := oldVal.([]any)
	newArr, newIsArr := newVal.([]any)
	if oldIsArr && newIsArr {
		if isRefList(oldArr) || isRefList(newArr) {
			compareRefLists(prefix, oldArr, newArr, now, out)
			return
		}
		// plain value list (e.g. ministry ids): leaf comparison
	}

	if jsonEqual(oldVal, newVal) {
		return
	}
	*out = append(*out, models.ChangeRecord{
		Chave:     prefix,
		Antigo:    FormatValue(oldVal),
		Novo:      FormatValue(newVal),
		UpdatedAt: now,
	})
}

// compareRefLists compares two member-reference lists (the children list)
// positionally on the display fields. Partial identity changes are not
// meaningful one by one, so any difference collapses into a single record
// carrying both full lists.
func compareRefLists(prefix string, oldArr, newArr []any, now time.Time, out *[]models.ChangeRecord) {
	changed := len(oldArr) != len(newArr)
	if !changed {
		for i := range oldArr {
			if refChanged(oldArr[i], newArr[i]) {
				changed = true
				break
			}
		}
	}
	if !changed {
		return
	}
	*out = append(*out, models.ChangeRecord{
		Chave:     prefix,
		Antigo:    formatRefList(oldArr),
		Novo:      formatRefList(newArr),
		UpdatedAt: now,
	})
}

func refChanged(oldRef, newRef any) bool {
	o, okOld := oldRef.(map[string]any)
	n, okNew := newRef.(map[string]any)
	if !okOld || !okNew {
		return !jsonEqual(oldRef, newRef)
	}
	for _, field := range []string{"nome", "isMember", "isDiacono"} {
		if !jsonEqual(o[field], n[field]) {
			return true
		}
	}
	return false
}

func formatRefList(arr []any) string {
	parts := make([]string, 0, len(arr))
	for _, item := range arr {
		ref, ok := item.(map[string]any)
		if !ok {
			parts = append(parts, FormatValue(item))
			continue
		}
		nome, _ := ref["nome"].(string)
		if nome == "" {
			nome = "não especificado"
		}
		parts = append(parts, fmt.Sprintf("nome: %s, membro: %s, diác. %s",
			nome, simNao(ref["isMember"]), simNao(ref["isDiacono"])))
	}
	return strings.Join(parts, "; ")
}

func simNao(v any) string {
	if b, ok := v.(bool); ok && b {
		return "Sim"
	}
	return "Não"
}

// isRefList reports whether arr looks like a list of embedded member
// references (maps carrying the ref display fields).
func isRefList(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	m, ok := arr[0].(map[string]any)
	if !ok {
		return false
	}
	_, hasNome := m["nome"]
	_, hasMember := m["isMember"]
	return hasNome && hasMember
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// jsonEqual is deep JSON value equality. Key order cannot differ here
// (both sides come from Doc), but float formatting quirks make this an
// approximation, not a canonical comparison.
func jsonEqual(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ra) == string(rb)
}

// FormatValue renders a leaf value for display in a change record.
// nil renders empty, booleans render Sim/Não, composites render as
// indented JSON, everything else coerces to its string form.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "Sim"
		}
		return "Não"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			raw, err := json.MarshalIndent(item, "", "  ")
			if err != nil {
				parts = append(parts, fmt.Sprint(item))
				continue
			}
			parts = append(parts, string(raw))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		raw, err := json.MarshalIndent(val, "", "    ")
		if err != nil {
			return "[Unserializable Object]"
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}
