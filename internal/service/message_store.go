package service

import (
	"sort"
	"strings"
	"time"

	"whatsappmgr/internal/models"
)

// MessageFilter selects messages from a session's store. Zero-valued
// fields are ignored; set fields compose with logical AND.
type MessageFilter struct {
	From       string `json:"from,omitempty"`
	LastHours  int    `json:"lastHours,omitempty"`
	Type       string `json:"type,omitempty"`
	OnlyGroups *bool  `json:"onlyGroups,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// QueryResult is the outcome of a filtered message query. Filtered is
// the number of messages actually returned, after limit truncation.
type QueryResult struct {
	Total    int               `json:"total"`
	Filtered int               `json:"filtered"`
	Messages []*models.Message `json:"messages"`
}

// StoreStats aggregates a session's message store at a point in time
type StoreStats struct {
	Total      int        `json:"total"`
	Last24h    int        `json:"last24h"`
	LastHour   int        `json:"lastHour"`
	Groups     int        `json:"groups"`
	Individual int        `json:"individual"`
	WithMedia  int        `json:"withMedia"`
	Oldest     *time.Time `json:"oldest,omitempty"`
	Newest     *time.Time `json:"newest,omitempty"`
}

// messageStore is a capacity-bounded, insertion-ordered message
// sequence. It is not safe for concurrent use; the owning session's
// mutex serializes access.
type messageStore struct {
	capacity int
	messages []*models.Message
}

func newMessageStore(capacity int) *messageStore {
	return &messageStore{
		capacity: capacity,
		messages: make([]*models.Message, 0),
	}
}

// append pushes msg to the tail, evicting from the head once the
// capacity is exceeded
func (st *messageStore) append(msg *models.Message) {
	st.messages = append(st.messages, msg)
	if st.capacity > 0 && len(st.messages) > st.capacity {
		overflow := len(st.messages) - st.capacity
		st.messages = append(st.messages[:0], st.messages[overflow:]...)
	}
}

func (st *messageStore) len() int {
	return len(st.messages)
}

// clear empties the store and returns the number of messages removed
func (st *messageStore) clear() int {
	removed := len(st.messages)
	st.messages = st.messages[:0]
	return removed
}

// query filters, sorts most-recent-first, and truncates to the limit
func (st *messageStore) query(filter MessageFilter, now time.Time, defaultLimit int) QueryResult {
	matched := make([]*models.Message, 0, len(st.messages))
	for _, msg := range st.messages {
		if matchesFilter(msg, filter, now) {
			matched = append(matched, msg)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return QueryResult{
		Total:    len(st.messages),
		Filtered: len(matched),
		Messages: matched,
	}
}

func matchesFilter(msg *models.Message, filter MessageFilter, now time.Time) bool {
	if filter.From != "" && !matchesSender(msg, filter.From) {
		return false
	}
	if filter.LastHours > 0 {
		cutoff := now.Add(-time.Duration(filter.LastHours) * time.Hour)
		if msg.Timestamp.Before(cutoff) {
			return false
		}
	}
	if filter.Type != "" && msg.Type != filter.Type {
		return false
	}
	if filter.OnlyGroups != nil && msg.IsGroup != *filter.OnlyGroups {
		return false
	}
	return true
}

// matchesSender matches the needle as a substring of the sender id, the
// contact display name (case-insensitively), or the contact number
func matchesSender(msg *models.Message, needle string) bool {
	if strings.Contains(msg.Sender, needle) {
		return true
	}
	if strings.Contains(strings.ToLower(msg.Contact.GetDisplayName()), strings.ToLower(needle)) {
		return true
	}
	return strings.Contains(msg.Contact.Number, needle)
}

// stats computes aggregate counts; the 24h and 1h windows are inclusive
// of their boundary
func (st *messageStore) stats(now time.Time) StoreStats {
	stats := StoreStats{Total: len(st.messages)}
	if len(st.messages) == 0 {
		return stats
	}

	dayCutoff := now.Add(-24 * time.Hour)
	hourCutoff := now.Add(-time.Hour)

	oldest := st.messages[0].Timestamp
	newest := st.messages[0].Timestamp

	for _, msg := range st.messages {
		if !msg.Timestamp.Before(dayCutoff) {
			stats.Last24h++
		}
		if !msg.Timestamp.Before(hourCutoff) {
			stats.LastHour++
		}
		if msg.IsGroup {
			stats.Groups++
		} else {
			stats.Individual++
		}
		if msg.HasMedia {
			stats.WithMedia++
		}
		if msg.Timestamp.Before(oldest) {
			oldest = msg.Timestamp
		}
		if msg.Timestamp.After(newest) {
			newest = msg.Timestamp
		}
	}

	stats.Oldest = &oldest
	stats.Newest = &newest
	return stats
}
