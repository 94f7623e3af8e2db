package compliance

// DefaultServerManagedKeys are the top-level keys observed on graphs fetched
// from the platform that must never be re-submitted.
var DefaultServerManagedKeys = []string{
	"id",
	"createdAt",
	"updatedAt",
	"active",
	"tags",
	"isArchived",
	"triggerCount",
	"shared",
	"versionId",
	"pinData",
	"meta",
}

// DefaultContestedKeys are top-level keys the platform's own diagnostics
// disagree about: some builds accept them, others reject. They are stripped
// like server-managed keys but their removal is additionally surfaced as a
// suggestion so the caller sees the discrepancy.
var DefaultContestedKeys = []string{
	"description",
}

// PositionPolicy decides how a missing or malformed node position is
// handled. Whether to invent a position is a visual-UX decision, so it is
// policy, not a hardcoded default.
type PositionPolicy string

const (
	// PositionStrict reports missing positions as errors.
	PositionStrict PositionPolicy = "strict"

	// PositionAutoFix assigns the anchor position and logs a fix.
	PositionAutoFix PositionPolicy = "autofix"
)

// DefaultPositionAnchor is where auto-fixed nodes land on the canvas.
var DefaultPositionAnchor = [2]float64{240, 300}

// Options configures the pipeline's policy decisions. The zero value uses
// the defaults above with strict position handling.
type Options struct {
	// ServerManagedKeys overrides DefaultServerManagedKeys when non-nil.
	ServerManagedKeys []string

	// ContestedKeys overrides DefaultContestedKeys when non-nil.
	ContestedKeys []string

	// PositionPolicy defaults to PositionStrict.
	PositionPolicy PositionPolicy

	// PositionAnchor overrides DefaultPositionAnchor when non-nil.
	PositionAnchor *[2]float64
}

func (o Options) serverManagedKeys() map[string]bool {
	keys := o.ServerManagedKeys
	if keys == nil {
		keys = DefaultServerManagedKeys
	}
	return toSet(keys)
}

func (o Options) contestedKeys() map[string]bool {
	keys := o.ContestedKeys
	if keys == nil {
		keys = DefaultContestedKeys
	}
	return toSet(keys)
}

func (o Options) positionPolicy() PositionPolicy {
	if o.PositionPolicy == "" {
		return PositionStrict
	}
	return o.PositionPolicy
}

func (o Options) positionAnchor() [2]float64 {
	if o.PositionAnchor != nil {
		return *o.PositionAnchor
	}
	return DefaultPositionAnchor
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
