package ingredient

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// ErrEmptyInput 輸入在正規化後沒有任何可用食材
var ErrEmptyInput = errors.New("no usable ingredients in input")

const (
	// fuzzyThreshold 模糊比對的最低相似度（1 - 編輯距離/最長長度）
	fuzzyThreshold = 0.8
	// fuzzyMinRunes 太短的字不做模糊比對，避免 "egg" 對上 "fig"
	fuzzyMinRunes = 4
)

// DefaultStaples 預設視為永遠可用的基本調味
var DefaultStaples = []string{"salt", "water"}

var (
	separatorPattern = regexp.MustCompile(`[,;\n\r]+`)
	spacePattern     = regexp.MustCompile(`\s+`)
	quantityPattern  = regexp.MustCompile(`^(?:\d+(?:[.,/]\d+)?\s*(?:kg|g|mg|ml|l|cups?|tbsps?|tsps?|tablespoons?|teaspoons?|oz|lbs?|pcs|x)?\s+(?:of\s+)?)+`)
	numericPattern   = regexp.MustCompile(`^[\d.,/x\s]*\d[\d.,/x\s]*$`)
)

// Normalizer 將使用者自由輸入映射到標準食材詞彙。
// 建立後不可變，可在多個 goroutine 間共用。
type Normalizer struct {
	table   map[string]string // 表面形式 -> 標準名稱
	surface []string          // 排序後的表面形式，模糊比對用
	staples map[string]struct{}
}

// NewNormalizer 以別名表（標準名稱 -> 別名）、額外詞彙與基本調味清單建立正規化器。
// 詞彙會先嘗試以單複數對應到既有標準名稱，找不到才自成一個標準名稱。
func NewNormalizer(aliases map[string][]string, vocabulary []string, staples []string) *Normalizer {
	n := &Normalizer{
		table:   make(map[string]string),
		staples: make(map[string]struct{}),
	}

	canonicals := make([]string, 0, len(aliases))
	for canonical := range aliases {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		c := clean(canonical)
		if c == "" {
			continue
		}
		for _, alias := range aliases[canonical] {
			if a := clean(alias); a != "" {
				n.table[a] = c
			}
		}
	}
	// 標準名稱最後寫入，確保 table[c] == c
	for _, canonical := range canonicals {
		if c := clean(canonical); c != "" {
			n.table[c] = c
		}
	}

	words := make([]string, 0, len(vocabulary)+len(staples))
	words = append(words, vocabulary...)
	words = append(words, staples...)
	sort.Strings(words)
	for _, w := range words {
		c := clean(w)
		if c == "" {
			continue
		}
		if _, ok := n.lookup(c); !ok {
			n.table[c] = c
		}
	}

	for _, s := range staples {
		if c := n.Canonical(s); c != "" {
			n.staples[c] = struct{}{}
		}
	}

	// 基本調味不參與模糊比對，避免 "salty" 被吃成 "salt" 後丟棄
	n.surface = make([]string, 0, len(n.table))
	for k, c := range n.table {
		if n.IsStaple(c) {
			continue
		}
		n.surface = append(n.surface, k)
	}
	sort.Strings(n.surface)

	return n
}

// Canonical 正規化單一食材名稱。
// 順序：別名/標準名稱 -> 單複數 -> 模糊比對 -> 保留清理後的原字。
// 對標準名稱再次呼叫會回傳自己。
func (n *Normalizer) Canonical(raw string) string {
	cleaned := clean(raw)
	if cleaned == "" {
		return ""
	}
	if c, ok := n.lookup(cleaned); ok {
		return c
	}
	if c, ok := n.fuzzy(cleaned); ok {
		return c
	}
	return cleaned
}

// Parse 將逗號、分號或換行分隔的輸入轉為食材集合。
// 基本調味會被移除（永遠視為可用）；無法辨識的字保留原樣參與比對。
func (n *Normalizer) Parse(raw string) (Set, error) {
	if strings.TrimSpace(raw) == "" {
		return Set{}, ErrEmptyInput
	}

	set := NewSet()
	for _, part := range separatorPattern.Split(raw, -1) {
		c := n.Canonical(part)
		if c == "" || n.IsStaple(c) {
			continue
		}
		set.add(c)
	}

	if set.Len() == 0 {
		return Set{}, ErrEmptyInput
	}
	return set, nil
}

// CanonicalAll 正規化一組名稱並去重，保留順序（語料庫載入時使用）
func (n *Normalizer) CanonicalAll(raw []string) Set {
	set := NewSet()
	for _, r := range raw {
		set.add(n.Canonical(r))
	}
	return set
}

// IsStaple 是否為永遠可用的基本調味
func (n *Normalizer) IsStaple(canonical string) bool {
	_, ok := n.staples[canonical]
	return ok
}

// Staples 基本調味清單（排序）
func (n *Normalizer) Staples() []string {
	out := make([]string, 0, len(n.staples))
	for s := range n.staples {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// lookup 精確比對，再嘗試單複數變化
func (n *Normalizer) lookup(cleaned string) (string, bool) {
	if c, ok := n.table[cleaned]; ok {
		return c, true
	}
	for _, form := range pluralForms(cleaned) {
		if c, ok := n.table[form]; ok {
			return c, true
		}
	}
	return "", false
}

// fuzzy 以 Levenshtein 相似度找最接近的表面形式，同分取字母序較前者
func (n *Normalizer) fuzzy(cleaned string) (string, bool) {
	if utf8.RuneCountInString(cleaned) < fuzzyMinRunes {
		return "", false
	}

	best, bestScore := "", 0.0
	for _, candidate := range n.surface {
		if s := similarity(cleaned, candidate); s > bestScore {
			best, bestScore = candidate, s
		}
	}
	if best == "" || bestScore < fuzzyThreshold {
		return "", false
	}
	return n.table[best], true
}

// similarity 回傳 0.0–1.0：1 - 編輯距離/最長長度
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// pluralForms 產生可能的單數（與複數）形式
func pluralForms(word string) []string {
	forms := make([]string, 0, 5)
	if strings.HasSuffix(word, "ies") && len(word) > 3 {
		forms = append(forms, strings.TrimSuffix(word, "ies")+"y")
	}
	if strings.HasSuffix(word, "es") && len(word) > 2 {
		forms = append(forms, strings.TrimSuffix(word, "es"))
	}
	if strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word) > 1 {
		forms = append(forms, strings.TrimSuffix(word, "s"))
	}
	if strings.HasSuffix(word, "y") {
		forms = append(forms, strings.TrimSuffix(word, "y")+"ies")
	}
	forms = append(forms, word+"s", word+"es")
	return forms
}

const trimCutset = " \t.!-*•"

// clean 去除前後空白、項目符號與數量前綴並轉小寫，內部空白合併為一格。
// 只剩數字（如 "2 x 3"）視為空白。
// 重複處理到不再變化，確保 clean(clean(x)) == clean(x)。
func clean(raw string) string {
	s := strings.ToLower(raw)
	for {
		next := strings.Trim(s, trimCutset)
		next = quantityPattern.ReplaceAllString(next, "")
		next = spacePattern.ReplaceAllString(next, " ")
		if numericPattern.MatchString(next) {
			next = ""
		}
		if next == s {
			return s
		}
		s = next
	}
}
