package ingredient

import "sort"

// Set 正規化後的食材集合。保留首次出現順序供顯示，比對時視為集合。
type Set struct {
	order   []string
	members map[string]struct{}
}

// NewSet 以已正規化的食材建立集合，重複與空字串會被忽略
func NewSet(items ...string) Set {
	s := Set{members: make(map[string]struct{}, len(items))}
	for _, it := range items {
		s.add(it)
	}
	return s
}

func (s *Set) add(item string) bool {
	if item == "" {
		return false
	}
	if s.members == nil {
		s.members = make(map[string]struct{})
	}
	if _, ok := s.members[item]; ok {
		return false
	}
	s.members[item] = struct{}{}
	s.order = append(s.order, item)
	return true
}

// Has 是否包含該食材
func (s Set) Has(item string) bool {
	_, ok := s.members[item]
	return ok
}

// Len 集合大小
func (s Set) Len() int {
	return len(s.order)
}

// Items 依輸入順序回傳複本
func (s Set) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Sorted 依字母排序回傳複本
func (s Set) Sorted() []string {
	out := s.Items()
	sort.Strings(out)
	return out
}

// Equal 兩集合成員相同（忽略順序）
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, it := range s.order {
		if !other.Has(it) {
			return false
		}
	}
	return true
}
