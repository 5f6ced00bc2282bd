package logging

import (
	"context"
	"time"
)

type EventType string

const (
	EventSessionJoined    EventType = "session_joined"
	EventSessionLeft      EventType = "session_left"
	EventSceneAssigned    EventType = "scene_assigned"
	EventLabelFallback    EventType = "label_fallback"
	EventAssetResolved    EventType = "asset_resolved"
	EventAssetPlaceholder EventType = "asset_placeholder"
	EventModalShown       EventType = "modal_shown"
	EventAssetCollected   EventType = "asset_collected"
	EventCompletion       EventType = "completion"
	EventProxyRelay       EventType = "proxy_relay"
)

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

type EntityKind string

const (
	EntityKindUnknown EntityKind = "unknown"
	EntityKindSession EntityKind = "session"
	EntityKindAsset   EntityKind = "asset"
	EntityKindScene   EntityKind = "scene"
	EntityKindWorld   EntityKind = "world"
)

// Event is one structured record emitted by the simulation or the
// asset pipeline. Payloads are event-specific plain structs.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

// NopPublisher drops every event. Used by tests and by callers that
// have no router wired yet.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

func SessionRef(id string) EntityRef {
	return EntityRef{ID: id, Kind: EntityKindSession}
}

func AssetRef(id string) EntityRef {
	return EntityRef{ID: id, Kind: EntityKindAsset}
}

func WorldRef() EntityRef {
	return EntityRef{Kind: EntityKindWorld}
}
