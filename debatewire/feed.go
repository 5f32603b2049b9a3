package debatewire

import (
	"maps"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

// conclusionRound is the only round whose finished messages reach the feed.
const conclusionRound = 3

// FeedKind classifies feed items.
type FeedKind int

const (
	FeedRoomOpened FeedKind = iota
	FeedConclusion
	FeedVerdict
)

// String returns the string representation of a FeedKind.
func (k FeedKind) String() string {
	switch k {
	case FeedRoomOpened:
		return "room_opened"
	case FeedConclusion:
		return "conclusion"
	case FeedVerdict:
		return "verdict"
	default:
		return "unknown"
	}
}

// FeedItem is one entry of the global activity list. Topic and Category are
// what was known at insertion; projections prefer the room metadata cache.
type FeedItem struct {
	ID           ulid.ULID // render key, kept across in-place replacement
	Kind         FeedKind
	RoomID       RoomID
	Topic        string
	Category     string
	Participants []string
	Participant  string // author of a conclusion
	Content      string
	Verdict      *Verdict
	Timestamp    time.Time
}

// RoomMeta is the best topic and category known for a room.
type RoomMeta struct {
	Topic        string
	Category     string
	Explicit     bool // Category came from the backend, not from inference
	Participants []string
}

func (m RoomMeta) merge(topic, category string) RoomMeta {
	if topic != "" && len(NormalizeTopic(topic)) > len(NormalizeTopic(m.Topic)) {
		m.Topic = topic
	}
	switch {
	case category != "":
		m.Category = category
		m.Explicit = true
	case !m.Explicit && m.Topic != "":
		m.Category = InferCategory(m.Topic)
	}
	return m
}

func (m RoomMeta) withParticipants(names ...string) RoomMeta {
	for _, n := range names {
		if n == "" || n == "system" || slices.Contains(m.Participants, n) {
			continue
		}
		m.Participants = append(slices.Clone(m.Participants), n)
	}
	return m
}

// FeedState is the bounded, categorized, deduplicated activity list.
type FeedState struct {
	Items []FeedItem

	capacity     int
	meta         map[RoomID]RoomMeta
	metaOrder    []RoomID
	loopTopic    string
	loopCategory string
}

// NewFeedState returns an empty feed holding at most capacity items.
func NewFeedState(capacity int) FeedState {
	if capacity <= 0 {
		capacity = DefaultConfig().FeedCapacity
	}
	return FeedState{capacity: capacity, meta: map[RoomID]RoomMeta{}}
}

// Capacity returns the item bound.
func (f FeedState) Capacity() int { return f.capacity }

// Meta returns the cached metadata for a room.
func (f FeedState) Meta(id RoomID) (RoomMeta, bool) {
	m, ok := f.meta[id]
	return m, ok
}

// MetaLen returns how many rooms have cached metadata.
func (f FeedState) MetaLen() int { return len(f.meta) }

// Apply folds one global-feed event into the feed and returns the result. f
// is not modified. arrived stamps items whose event carries no timestamp.
func (f FeedState) Apply(ev Event, arrived time.Time) FeedState {
	if f.capacity <= 0 {
		f = NewFeedState(0)
	}
	switch e := ev.(type) {
	case LoopStatus:
		return f.applyLoopStatus(e)
	case RoomOpened:
		f = f.cow()
		f = f.updateMeta(e.RoomID, func(m RoomMeta) RoomMeta {
			var category string
			if f.loopCategory != "" && SameTopic(e.Topic, f.loopTopic) {
				category = f.loopCategory
			}
			return m.merge(e.Topic, category)
		})
		if i := f.find(e.RoomID, FeedVerdict, ""); i >= 0 {
			return f
		}
		item := f.newItem(FeedRoomOpened, e.RoomID, stamp(e.Timestamp, arrived))
		item.Content = e.Topic
		return f.upsert(item, f.find(e.RoomID, FeedRoomOpened, ""))
	case MessageComplete:
		if e.Round != conclusionRound {
			return f
		}
		f = f.cow()
		f = f.updateMeta(e.RoomID, func(m RoomMeta) RoomMeta { return m.withParticipants(e.Participant) })
		item := f.newItem(FeedConclusion, e.RoomID, stamp(e.Timestamp, arrived))
		item.Participant = e.Participant
		item.Content = e.Text
		return f.upsert(item, f.find(e.RoomID, FeedConclusion, e.Participant))
	case RoomClosed:
		f = f.cow()
		f = f.updateMeta(e.RoomID, func(m RoomMeta) RoomMeta {
			return m.withParticipants(slices.Sorted(maps.Keys(e.Scores))...)
		})
		item := f.newItem(FeedVerdict, e.RoomID, stamp(e.Timestamp, arrived))
		item.Content = e.Summary
		item.Verdict = verdictFrom(e)
		i := f.find(e.RoomID, FeedVerdict, "")
		if i < 0 {
			i = f.find(e.RoomID, FeedRoomOpened, "")
		}
		return f.upsert(item, i)
	default:
		return f
	}
}

func (f FeedState) applyLoopStatus(e LoopStatus) FeedState {
	if e.Phase != PhaseActive || e.Topic == "" {
		return f
	}
	f = f.cow()
	f.loopTopic = e.Topic
	f.loopCategory = e.Category
	if f.loopCategory == "" {
		f.loopCategory = InferCategory(e.Topic)
	}
	// a room opened before its loop status arrived inherits the category late
	for _, id := range f.metaOrder {
		m := f.meta[id]
		if !m.Explicit && SameTopic(m.Topic, e.Topic) {
			f.meta[id] = m.merge("", f.loopCategory)
		}
	}
	return f
}

// cow copies the mutable containers so the receiver's caller keeps its view.
func (f FeedState) cow() FeedState {
	f.Items = slices.Clone(f.Items)
	f.meta = maps.Clone(f.meta)
	if f.meta == nil {
		f.meta = map[RoomID]RoomMeta{}
	}
	f.metaOrder = slices.Clone(f.metaOrder)
	return f
}

func (f FeedState) updateMeta(id RoomID, fn func(RoomMeta) RoomMeta) FeedState {
	m, ok := f.meta[id]
	f.meta[id] = fn(m)
	if ok {
		return f
	}
	f.metaOrder = append(f.metaOrder, id)
	for len(f.metaOrder) > f.capacity {
		delete(f.meta, f.metaOrder[0])
		f.metaOrder = f.metaOrder[1:]
	}
	return f
}

func (f FeedState) newItem(kind FeedKind, id RoomID, ts time.Time) FeedItem {
	m := f.meta[id]
	return FeedItem{
		ID:           ulid.Make(),
		Kind:         kind,
		RoomID:       id,
		Topic:        m.Topic,
		Category:     m.Category,
		Participants: slices.Clone(m.Participants),
		Timestamp:    ts,
	}
}

// find returns the index of the room's item of the given kind, or -1.
// participant narrows conclusions.
func (f FeedState) find(id RoomID, kind FeedKind, participant string) int {
	return slices.IndexFunc(f.Items, func(it FeedItem) bool {
		return it.RoomID == id && it.Kind == kind && (participant == "" || it.Participant == participant)
	})
}

// upsert replaces Items[at] in place, keeping its ID, or appends when at < 0.
func (f FeedState) upsert(item FeedItem, at int) FeedState {
	if at >= 0 {
		item.ID = f.Items[at].ID
		f.Items[at] = item
		return f
	}
	f.Items = append(f.Items, item)
	for len(f.Items) > f.capacity {
		i := f.oldest()
		f.Items = slices.Delete(f.Items, i, i+1)
	}
	return f
}

func (f FeedState) oldest() int {
	idx := 0
	for i, it := range f.Items {
		if it.Timestamp.Before(f.Items[idx].Timestamp) {
			idx = i
		}
	}
	return idx
}

func stamp(ts, arrived time.Time) time.Time {
	if ts.IsZero() {
		return arrived
	}
	return ts
}
